package store

import (
	"context"
	"database/sql"

	"github.com/safar/cart-service/internal/database"
	"github.com/safar/cart-service/internal/repository"
	"go.uber.org/zap"
)

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

type UnitOfWorkOptions struct {
	Tx database.TxOptions
	// LockNoWait makes stock reservation fail fast with ErrLockTimeout
	// instead of queueing behind another transaction's row lock.
	LockNoWait bool
	Logger     *zap.Logger
}

type UnitOfWork struct {
	db   *sql.DB
	opts UnitOfWorkOptions
}

func NewUnitOfWork(db *sql.DB, opts UnitOfWorkOptions) *UnitOfWork {
	if opts.Logger != nil && opts.Tx.OnRetry == nil {
		logger := opts.Logger.Named("uow")
		opts.Tx.OnRetry = func(attempt int, err error) {
			logger.Warn("retrying transaction",
				zap.Int("attempt", attempt),
				zap.Stringer("class", database.ClassifyError(err)),
				zap.Error(err),
			)
		}
	}
	return &UnitOfWork{db: db, opts: opts}
}

func (u *UnitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context, repos repository.Set) error) error {
	return database.WithRetry(ctx, u.db, u.opts.Tx, func(tx *sql.Tx) error {
		return fn(ctx, u.bind(tx, true))
	})
}

func (u *UnitOfWork) Reader() repository.Set {
	return u.bind(u.db, false)
}

func (u *UnitOfWork) bind(q Querier, inTx bool) repository.Set {
	return repository.Set{
		Products:  NewProductRepo(q),
		Stock:     &StockRepo{q: q, lockReads: inTx, noWait: u.opts.LockNoWait},
		Discounts: NewDiscountRepo(q),
		Cart:      NewCartRepo(q),
	}
}
