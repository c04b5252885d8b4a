// Package pricing computes cart line totals from a unit price, a quantity
// and the discount resolved for the product.
package pricing

import (
	"github.com/safar/cart-service/internal/models"
	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places kept for currency amounts.
const Scale = 2

var hundred = decimal.NewFromInt(100)

// Discount is a resolved discount. Kind DiscountNone carries a zero Value.
type Discount struct {
	Kind  models.DiscountKind
	Value decimal.Decimal
}

// NoDiscount is returned by resolvers when a product has no usable discount.
func NoDiscount() Discount {
	return Discount{Kind: models.DiscountNone, Value: decimal.Zero}
}

type Line struct {
	Kind       models.DiscountKind
	Value      decimal.Decimal
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	FinalTotal decimal.Decimal
}

// Compute prices one line.
//
// FLAT values are a per-unit amount and are multiplied by quantity. PERCENT
// values are a percentage of the subtotal. The final total is clamped at
// zero and the discount that produced it is always reported, including when
// it covers the whole subtotal.
func Compute(unitPrice decimal.Decimal, quantity int, d Discount) Line {
	qty := decimal.NewFromInt(int64(quantity))
	subtotal := unitPrice.Mul(qty).Round(Scale)

	kind := d.Kind
	if kind == "" {
		kind = models.DiscountNone
	}

	amount := decimal.Zero
	value := d.Value
	switch kind {
	case models.DiscountFlat:
		amount = value.Mul(qty)
	case models.DiscountPercent:
		amount = subtotal.Mul(value).Div(hundred)
	default:
		kind = models.DiscountNone
		value = decimal.Zero
	}
	amount = amount.Round(Scale)

	final := subtotal.Sub(amount)
	if final.IsNegative() {
		final = decimal.Zero
	}

	return Line{
		Kind:       kind,
		Value:      value,
		Subtotal:   subtotal,
		Discount:   amount,
		FinalTotal: final,
	}
}
