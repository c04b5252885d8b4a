// Package cart is the add-to-cart pipeline: product lookup, stock
// reservation, discount resolution, pricing and cart line upsert, run for a
// whole batch inside one transaction.
package cart

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/safar/cart-service/internal/database"
	"github.com/safar/cart-service/internal/models"
	"github.com/safar/cart-service/internal/pricing"
	"github.com/safar/cart-service/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const DefaultBatchTimeout = 5 * time.Second

type Item struct {
	ProductName string
	Quantity    int
}

type ItemResult struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

type Options struct {
	BatchTimeout time.Duration
	Logger       *zap.Logger
}

type Service struct {
	uow     repository.UnitOfWork
	timeout time.Duration
	logger  *zap.Logger
}

func NewService(uow repository.UnitOfWork, opts Options) *Service {
	if opts.BatchTimeout <= 0 {
		opts.BatchTimeout = DefaultBatchTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{
		uow:     uow,
		timeout: opts.BatchTimeout,
		logger:  opts.Logger.Named("cart"),
	}
}

// ValidateItems checks the batch shape: at least one item, each with a
// non-empty name and a positive quantity.
func ValidateItems(items []Item) error {
	if len(items) == 0 {
		return &ValidationError{Index: -1, Err: ErrEmptyBatch}
	}
	for i, item := range items {
		if strings.TrimSpace(item.ProductName) == "" {
			return &ValidationError{Index: i, Err: ErrInvalidName}
		}
		if item.Quantity <= 0 {
			return &ValidationError{Index: i, Err: ErrInvalidQuantity}
		}
	}
	return nil
}

// AddToCart prices and reserves every item in order and upserts one cart
// line per item for the actor. The batch is all or nothing: on any error
// no stock reservation or cart line from it is committed.
func (s *Service) AddToCart(ctx context.Context, actor models.Actor, items []Item) ([]ItemResult, error) {
	if err := ValidateItems(items); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	logger := s.logger.With(zap.Int64("actor_id", actor.ID), zap.String("role", string(actor.Role)))
	logger.Debug("add to cart started", zap.Int("items", len(items)))

	var results []ItemResult
	err := s.uow.RunInTx(ctx, func(ctx context.Context, repos repository.Set) error {
		results = make([]ItemResult, 0, len(items))
		for i, item := range items {
			res, err := s.addItem(ctx, repos, actor, i, item)
			if err != nil {
				return err
			}
			results = append(results, res)
		}
		return nil
	})
	if err != nil {
		return nil, s.report(ctx, logger, err)
	}

	logger.Debug("add to cart committed", zap.Int("items", len(results)))
	return results, nil
}

func (s *Service) addItem(ctx context.Context, repos repository.Set, actor models.Actor, index int, item Item) (ItemResult, error) {
	stage := StageLookup
	fail := func(err error) error {
		return &ItemError{Index: index, Product: item.ProductName, Stage: stage, Err: err}
	}

	product, err := repos.Products.FindByName(ctx, item.ProductName)
	if err != nil {
		return ItemResult{}, fail(err)
	}

	stage = StageReserve
	available, err := repos.Stock.GetAvailable(ctx, product.ID)
	if err != nil {
		return ItemResult{}, fail(err)
	}
	if available < item.Quantity {
		return ItemResult{}, fail(database.ErrInsufficientStock)
	}
	if _, err := repos.Stock.Reserve(ctx, product.ID, item.Quantity); err != nil {
		return ItemResult{}, fail(err)
	}

	stage = StagePrice
	discount, err := repos.Discounts.FindActiveDiscount(ctx, product.ID)
	if err != nil {
		return ItemResult{}, fail(err)
	}
	priced := pricing.Compute(product.Price, item.Quantity, discount)

	stage = StageCommitLine
	line := &models.CartLine{
		ProductID:      product.ID,
		ProductName:    product.Name,
		UnitPrice:      product.Price,
		Quantity:       item.Quantity,
		DiscountKind:   priced.Kind,
		DiscountValue:  priced.Value,
		DiscountAmount: priced.Discount,
		Subtotal:       priced.Subtotal,
		FinalTotal:     priced.FinalTotal,
	}
	line.SetOwner(actor)
	if err := repos.Cart.Upsert(ctx, line); err != nil {
		return ItemResult{}, fail(err)
	}

	return ItemResult{
		ProductName: product.Name,
		Quantity:    item.Quantity,
		Subtotal:    priced.Subtotal,
		Discount:    priced.Discount,
		TotalPrice:  priced.FinalTotal,
	}, nil
}

// report decides what the caller sees. Domain errors pass through with the
// offending item; everything else is logged and replaced.
func (s *Service) report(ctx context.Context, logger *zap.Logger, err error) error {
	fields := []zap.Field{zap.Error(err)}
	var itemErr *ItemError
	if errors.As(err, &itemErr) {
		fields = append(fields,
			zap.Int("item_index", itemErr.Index),
			zap.String("product", itemErr.Product),
			zap.Stringer("stage", itemErr.Stage),
		)
	}

	switch {
	case IsDomainError(err):
		logger.Info("add to cart rejected", fields...)
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		logger.Warn("add to cart timed out", fields...)
		return ErrTimeout
	case errors.Is(err, context.Canceled), errors.Is(ctx.Err(), context.Canceled):
		logger.Info("add to cart canceled", fields...)
		return context.Canceled
	default:
		logger.Error("add to cart failed", fields...)
		return ErrUnavailable
	}
}

// ListCart returns the actor's lines, or every line when actor is nil.
func (s *Service) ListCart(ctx context.Context, actor *models.Actor) ([]models.CartLine, error) {
	repos := s.uow.Reader()

	var (
		lines []models.CartLine
		err   error
	)
	if actor == nil {
		lines, err = repos.Cart.ListAll(ctx)
	} else {
		lines, err = repos.Cart.ListForActor(ctx, *actor)
	}
	if err != nil {
		s.logger.Error("list cart failed", zap.Error(err))
		return nil, ErrUnavailable
	}

	return lines, nil
}

// ClearCart deletes every cart line of every actor.
func (s *Service) ClearCart(ctx context.Context) (int64, error) {
	var deleted int64
	err := s.uow.RunInTx(ctx, func(ctx context.Context, repos repository.Set) error {
		n, err := repos.Cart.ClearAll(ctx)
		deleted = n
		return err
	})
	if err != nil {
		s.logger.Error("clear cart failed", zap.Error(err))
		return 0, ErrUnavailable
	}

	s.logger.Info("cart cleared", zap.Int64("deleted", deleted))
	return deleted, nil
}

// Restock adds quantity back to a product's stock.
func (s *Service) Restock(ctx context.Context, productID int64, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, &ValidationError{Index: -1, Err: ErrInvalidQuantity}
	}

	var updated int
	err := s.uow.RunInTx(ctx, func(ctx context.Context, repos repository.Set) error {
		n, err := repos.Stock.Release(ctx, productID, quantity)
		updated = n
		return err
	})
	if err != nil {
		if errors.Is(err, database.ErrStockNotFound) {
			return 0, err
		}
		s.logger.Error("restock failed", zap.Int64("product_id", productID), zap.Error(err))
		return 0, ErrUnavailable
	}

	return updated, nil
}
