// Package repository declares the per-entity persistence contracts used by
// the cart pipeline. Implementations live in store (PostgreSQL) and
// store/memstore (in-memory).
package repository

import (
	"context"

	"github.com/safar/cart-service/internal/models"
	"github.com/safar/cart-service/internal/pricing"
)

type Products interface {
	// FindByName returns database.ErrProductNotFound when no product has
	// exactly this name.
	FindByName(ctx context.Context, name string) (*models.Product, error)
}

type Stock interface {
	// GetAvailable returns database.ErrStockNotFound when the product has
	// no stock row.
	GetAvailable(ctx context.Context, productID int64) (int, error)
	// Reserve locks the stock row, checks and decrements it, returning the
	// new quantity. It fails with ErrStockNotFound or ErrInsufficientStock
	// and never leaves the quantity negative.
	Reserve(ctx context.Context, productID int64, quantity int) (int, error)
	// Release adds quantity back and returns the new quantity.
	Release(ctx context.Context, productID int64, quantity int) (int, error)
}

type Discounts interface {
	// FindActiveDiscount reports pricing.NoDiscount when the assignment or
	// its value record is missing.
	FindActiveDiscount(ctx context.Context, productID int64) (pricing.Discount, error)
}

type CartLines interface {
	// Upsert inserts the line or replaces the existing one for the same
	// (owner, product) pair. ID and timestamps are filled in on return.
	Upsert(ctx context.Context, line *models.CartLine) error
	ListAll(ctx context.Context) ([]models.CartLine, error)
	ListForActor(ctx context.Context, actor models.Actor) ([]models.CartLine, error)
	ClearAll(ctx context.Context) (int64, error)
}

// Set is the group of repository handles bound to one transaction.
type Set struct {
	Products  Products
	Stock     Stock
	Discounts Discounts
	Cart      CartLines
}

// UnitOfWork runs fn inside a transaction. The handles in Set share that
// transaction; it commits when fn returns nil and rolls back otherwise.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, repos Set) error) error
	// Reader returns handles for single-statement reads outside a transaction.
	Reader() Set
}
