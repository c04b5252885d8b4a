package pricing

import (
	"testing"

	"github.com/safar/cart-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name      string
		unitPrice string
		qty       int
		discount  Discount
		subtotal  string
		amount    string
		final     string
		kind      models.DiscountKind
	}{
		{"flat per unit", "100", 3, Discount{models.DiscountFlat, dec("10")}, "300", "30", "270", models.DiscountFlat},
		{"percent of subtotal", "100", 3, Discount{models.DiscountPercent, dec("20")}, "300", "60", "240", models.DiscountPercent},
		{"no discount", "100", 3, NoDiscount(), "300", "0", "300", models.DiscountNone},
		{"flat clamps at zero", "10", 1, Discount{models.DiscountFlat, dec("50")}, "10", "50", "0", models.DiscountFlat},
		{"flat covering the price exactly", "25", 2, Discount{models.DiscountFlat, dec("25")}, "50", "50", "0", models.DiscountFlat},
		{"full percent", "19.99", 1, Discount{models.DiscountPercent, dec("100")}, "19.99", "19.99", "0", models.DiscountPercent},
		{"percent rounds to cents", "9.99", 1, Discount{models.DiscountPercent, dec("15")}, "9.99", "1.5", "8.49", models.DiscountPercent},
		{"end to end widget", "50", 2, Discount{models.DiscountFlat, dec("5")}, "100", "10", "90", models.DiscountFlat},
		{"empty kind is no discount", "7", 2, Discount{}, "14", "0", "14", models.DiscountNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := Compute(dec(tt.unitPrice), tt.qty, tt.discount)

			assert.True(t, dec(tt.subtotal).Equal(line.Subtotal), "subtotal: want %s got %s", tt.subtotal, line.Subtotal)
			assert.True(t, dec(tt.amount).Equal(line.Discount), "discount: want %s got %s", tt.amount, line.Discount)
			assert.True(t, dec(tt.final).Equal(line.FinalTotal), "final: want %s got %s", tt.final, line.FinalTotal)
			assert.Equal(t, tt.kind, line.Kind)
		})
	}
}

func TestComputeInvariants(t *testing.T) {
	discounts := []Discount{
		NoDiscount(),
		{models.DiscountFlat, dec("0")},
		{models.DiscountFlat, dec("3.33")},
		{models.DiscountFlat, dec("1000")},
		{models.DiscountPercent, dec("0")},
		{models.DiscountPercent, dec("37.5")},
		{models.DiscountPercent, dec("100")},
	}

	for _, d := range discounts {
		for qty := 1; qty <= 5; qty++ {
			line := Compute(dec("12.34"), qty, d)
			assert.False(t, line.FinalTotal.IsNegative(), "final total negative for %+v qty %d", d, qty)
			assert.True(t, line.FinalTotal.LessThanOrEqual(line.Subtotal), "final above subtotal for %+v qty %d", d, qty)
		}
	}
}
