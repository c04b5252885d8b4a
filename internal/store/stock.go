package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safar/cart-service/internal/database"
	"github.com/safar/cart-service/internal/models"
)

// StockRepo is the stock ledger. Inside a transaction reads take the row
// lock, so a check followed by Reserve cannot lose an update to a
// concurrent batch.
type StockRepo struct {
	q         Querier
	lockReads bool
	noWait    bool
}

func NewStockRepo(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

func (r *StockRepo) lockClause() string {
	if r.noWait {
		return " FOR UPDATE NOWAIT"
	}
	return " FOR UPDATE"
}

func (r *StockRepo) selectQuantity(ctx context.Context, productID int64, lock bool) (int, error) {
	query := `SELECT quantity FROM stock WHERE product_id = $1`
	if lock {
		query += r.lockClause()
	}

	var quantity int
	err := r.q.QueryRowContext(ctx, query, productID).Scan(&quantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, database.ErrStockNotFound
		}
		if database.SQLState(err) == "55P03" {
			return 0, database.ErrLockTimeout
		}
		return 0, fmt.Errorf("select stock %d: %w", productID, err)
	}

	return quantity, nil
}

func (r *StockRepo) GetAvailable(ctx context.Context, productID int64) (int, error) {
	return r.selectQuantity(ctx, productID, r.lockReads)
}

func (r *StockRepo) Reserve(ctx context.Context, productID int64, quantity int) (int, error) {
	available, err := r.selectQuantity(ctx, productID, true)
	if err != nil {
		return 0, err
	}

	if available < quantity {
		return 0, database.ErrInsufficientStock
	}

	var remaining int
	err = r.q.QueryRowContext(ctx,
		`UPDATE stock
		 SET quantity = quantity - $1,
		     version = version + 1,
		     updated_at = NOW()
		 WHERE product_id = $2
		   AND quantity >= $1
		 RETURNING quantity`,
		quantity, productID).Scan(&remaining)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, database.ErrInsufficientStock
		}
		return 0, fmt.Errorf("decrement stock %d: %w", productID, err)
	}

	return remaining, nil
}

func (r *StockRepo) Release(ctx context.Context, productID int64, quantity int) (int, error) {
	var updated int
	err := r.q.QueryRowContext(ctx,
		`UPDATE stock
		 SET quantity = quantity + $1,
		     version = version + 1,
		     updated_at = NOW()
		 WHERE product_id = $2
		 RETURNING quantity`,
		quantity, productID).Scan(&updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, database.ErrStockNotFound
		}
		return 0, fmt.Errorf("release stock %d: %w", productID, err)
	}

	return updated, nil
}

func GetStock(ctx context.Context, db Querier, productID int64) (*models.StockEntry, error) {
	entry := &models.StockEntry{}

	err := db.QueryRowContext(ctx,
		`SELECT product_id, quantity, version, updated_at
		 FROM stock
		 WHERE product_id = $1`,
		productID).Scan(&entry.ProductID, &entry.Quantity, &entry.Version, &entry.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrStockNotFound
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}

	return entry, nil
}

func ListStock(ctx context.Context, db Querier) ([]models.StockEntry, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT product_id, quantity, version, updated_at
		 FROM stock
		 ORDER BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()

	entries := []models.StockEntry{}
	for rows.Next() {
		var entry models.StockEntry
		if err := rows.Scan(&entry.ProductID, &entry.Quantity, &entry.Version, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return entries, nil
}

// SetStockOptimistic overwrites the quantity only if version still matches.
func SetStockOptimistic(ctx context.Context, db Querier, productID int64, quantity int, version int) (*models.StockEntry, error) {
	entry := &models.StockEntry{}

	err := db.QueryRowContext(ctx,
		`UPDATE stock
		 SET quantity = $1, version = version + 1, updated_at = NOW()
		 WHERE product_id = $2 AND version = $3
		 RETURNING product_id, quantity, version, updated_at`,
		quantity, productID, version).Scan(&entry.ProductID, &entry.Quantity, &entry.Version, &entry.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, getErr := GetStock(ctx, db, productID); getErr != nil {
				return nil, getErr
			}
			return nil, database.ErrOptimisticLockFailed
		}
		return nil, fmt.Errorf("update stock: %w", err)
	}

	return entry, nil
}
