package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/safar/cart-service/internal/database"
	"github.com/safar/cart-service/internal/models"
	"github.com/safar/cart-service/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollbackDiscardsWrites(t *testing.T) {
	s := New()
	p := s.AddProduct("Widget", decimal.NewFromInt(50), 5)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.RunInTx(ctx, func(ctx context.Context, repos repository.Set) error {
		_, err := repos.Stock.Reserve(ctx, p.ID, 2)
		require.NoError(t, err)

		line := &models.CartLine{ProductID: p.ID, ProductName: p.Name, Quantity: 2}
		line.SetOwner(models.Actor{ID: 1, Role: models.RoleUser})
		require.NoError(t, repos.Cart.Upsert(ctx, line))
		return boom
	})
	require.ErrorIs(t, err, boom)

	q, _ := s.StockOf(p.ID)
	assert.Equal(t, 5, q)

	lines, err := s.Reader().Cart.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestUpsertReplacesPerOwnerAndProduct(t *testing.T) {
	s := New()
	p := s.AddProduct("Widget", decimal.NewFromInt(50), 5)
	ctx := context.Background()
	user := models.Actor{ID: 7, Role: models.RoleUser}
	admin := models.Actor{ID: 7, Role: models.RoleAdmin}

	for _, qty := range []int{1, 3} {
		line := &models.CartLine{ProductID: p.ID, Quantity: qty}
		line.SetOwner(user)
		require.NoError(t, s.Reader().Cart.Upsert(ctx, line))
	}
	adminLine := &models.CartLine{ProductID: p.ID, Quantity: 2}
	adminLine.SetOwner(admin)
	require.NoError(t, s.Reader().Cart.Upsert(ctx, adminLine))

	userLines, err := s.Reader().Cart.ListForActor(ctx, user)
	require.NoError(t, err)
	require.Len(t, userLines, 1)
	assert.Equal(t, 3, userLines[0].Quantity)

	all, err := s.Reader().Cart.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	n, err := s.Reader().Cart.ClearAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestReserveNeverGoesNegative(t *testing.T) {
	s := New()
	p := s.AddProduct("Widget", decimal.NewFromInt(1), 10)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.RunInTx(ctx, func(ctx context.Context, repos repository.Set) error {
				_, err := repos.Stock.Reserve(ctx, p.ID, 3)
				return err
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, database.ErrInsufficientStock)
		}()
	}
	wg.Wait()

	q, _ := s.StockOf(p.ID)
	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 1, q)
}

func TestDiscountWithoutValueResolvesToNone(t *testing.T) {
	s := New()
	p := s.AddProduct("Widget", decimal.NewFromInt(1), 1)
	s.SetDiscount(p.ID, models.DiscountFlat, nil)

	d, err := s.Reader().Discounts.FindActiveDiscount(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DiscountNone, d.Kind)
}

func TestMissingStockRow(t *testing.T) {
	s := New()
	p := s.AddProduct("Ghost", decimal.NewFromInt(1), -1)

	_, err := s.Reader().Stock.GetAvailable(context.Background(), p.ID)
	assert.ErrorIs(t, err, database.ErrStockNotFound)
}
