package cart_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/cucumber/godog"
	"github.com/safar/cart-service/internal/cart"
	"github.com/safar/cart-service/internal/models"
	"github.com/safar/cart-service/internal/store/memstore"
	"github.com/shopspring/decimal"
)

type cartTestContext struct {
	store    *memstore.Store
	service  *cart.Service
	products map[string]models.Product
	results  []cart.ItemResult
	err      error
}

func (c *cartTestContext) reset() {
	c.store = memstore.New()
	c.service = cart.NewService(c.store, cart.Options{})
	c.products = make(map[string]models.Product)
	c.results = nil
	c.err = nil
}

func (c *cartTestContext) anEmptyCatalog() error {
	c.reset()
	return nil
}

func (c *cartTestContext) aProductPricedWithStock(name string, price string, stock int) error {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	c.products[name] = c.store.AddProduct(name, p, stock)
	return nil
}

func (c *cartTestContext) productHasADiscountOf(name, kind, value string) error {
	p, ok := c.products[name]
	if !ok {
		return fmt.Errorf("unknown product %q", name)
	}
	k, err := models.ParseDiscountKind(kind)
	if err != nil {
		return err
	}
	v, err := decimal.NewFromString(value)
	if err != nil {
		return err
	}
	c.store.SetDiscount(p.ID, k, &v)
	return nil
}

func (c *cartTestContext) actorAddsToCart(actorID int, table *godog.Table) error {
	var items []cart.Item
	for _, row := range table.Rows[1:] {
		qty, err := strconv.Atoi(row.Cells[1].Value)
		if err != nil {
			return err
		}
		items = append(items, cart.Item{ProductName: row.Cells[0].Value, Quantity: qty})
	}
	actor := models.Actor{ID: int64(actorID), Role: models.RoleUser}
	c.results, c.err = c.service.AddToCart(context.Background(), actor, items)
	return nil
}

func (c *cartTestContext) theBatchSucceeds() error {
	if c.err != nil {
		return fmt.Errorf("expected success but got error: %v", c.err)
	}
	return nil
}

func (c *cartTestContext) theBatchFailsWith(message string) error {
	if c.err == nil {
		return errors.New("expected batch to fail but it succeeded")
	}
	if c.err.Error() != message {
		return fmt.Errorf("expected error %q, got %q", message, c.err.Error())
	}
	return nil
}

func (c *cartTestContext) theResultForHasTotalPrice(name, total string) error {
	want, err := decimal.NewFromString(total)
	if err != nil {
		return err
	}
	for _, r := range c.results {
		if r.ProductName == name {
			if !r.TotalPrice.Equal(want) {
				return fmt.Errorf("expected total price %s, got %s", want, r.TotalPrice)
			}
			return nil
		}
	}
	return fmt.Errorf("no result for %q", name)
}

func (c *cartTestContext) theStockOfIs(name string, want int) error {
	p, ok := c.products[name]
	if !ok {
		return fmt.Errorf("unknown product %q", name)
	}
	got, _ := c.store.StockOf(p.ID)
	if got != want {
		return fmt.Errorf("expected stock %d, got %d", want, got)
	}
	return nil
}

func (c *cartTestContext) actorHasCartLines(actorID, want int) error {
	actor := models.Actor{ID: int64(actorID), Role: models.RoleUser}
	lines, err := c.service.ListCart(context.Background(), &actor)
	if err != nil {
		return err
	}
	if len(lines) != want {
		return fmt.Errorf("expected %d cart lines, got %d", want, len(lines))
	}
	return nil
}

func (c *cartTestContext) thereAreNoCartLines() error {
	lines, err := c.service.ListCart(context.Background(), nil)
	if err != nil {
		return err
	}
	if len(lines) != 0 {
		return fmt.Errorf("expected no cart lines, got %d", len(lines))
	}
	return nil
}

func (c *cartTestContext) theCartLineHasTotals(name, subtotal, discount, final string) error {
	lines, err := c.service.ListCart(context.Background(), nil)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if l.ProductName != name {
			continue
		}
		for _, check := range []struct {
			field string
			want  string
			got   decimal.Decimal
		}{
			{"subtotal", subtotal, l.Subtotal},
			{"discount", discount, l.DiscountAmount},
			{"final total", final, l.FinalTotal},
		} {
			want, err := decimal.NewFromString(check.want)
			if err != nil {
				return err
			}
			if !check.got.Equal(want) {
				return fmt.Errorf("expected %s %s, got %s", check.field, want, check.got)
			}
		}
		return nil
	}
	return fmt.Errorf("no cart line for %q", name)
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^an empty catalog$`, tc.anEmptyCatalog)
	ctx.Step(`^a product "([^"]*)" priced (\d+(?:\.\d+)?) with stock (\d+)$`, tc.aProductPricedWithStock)
	ctx.Step(`^product "([^"]*)" has a (FLAT|PERCENT) discount of (\d+(?:\.\d+)?)$`, tc.productHasADiscountOf)
	ctx.Step(`^actor (\d+) adds to cart:$`, tc.actorAddsToCart)

	ctx.Step(`^the batch succeeds$`, tc.theBatchSucceeds)
	ctx.Step(`^the batch fails with "([^"]*)"$`, tc.theBatchFailsWith)
	ctx.Step(`^the result for "([^"]*)" has total price (\d+(?:\.\d+)?)$`, tc.theResultForHasTotalPrice)
	ctx.Step(`^the stock of "([^"]*)" is (\d+)$`, tc.theStockOfIs)
	ctx.Step(`^actor (\d+) has (\d+) cart lines?$`, tc.actorHasCartLines)
	ctx.Step(`^there are no cart lines$`, tc.thereAreNoCartLines)
	ctx.Step(`^the cart line for "([^"]*)" has subtotal (\d+(?:\.\d+)?), discount (\d+(?:\.\d+)?) and final total (\d+(?:\.\d+)?)$`, tc.theCartLineHasTotals)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../features/cart.feature"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
