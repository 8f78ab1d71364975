package helpers

import (
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// Totals is the monetary snapshot written onto an order.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeCartTotals sums quantity x price snapshot over the cart. Storefront
// checkout applies no discount, shipping or tax.
func ComputeCartTotals(items []models.CartItem) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return NewTotals(subtotal, decimal.Zero, decimal.Zero, decimal.Zero)
}

// NewTotals derives total = subtotal - discount + shipping + tax, rounded to cents.
func NewTotals(subtotal, discount, shipping, tax decimal.Decimal) Totals {
	t := Totals{
		Subtotal: subtotal.Round(2),
		Discount: discount.Round(2),
		Shipping: shipping.Round(2),
		Tax:      tax.Round(2),
	}
	t.Total = t.Subtotal.Sub(t.Discount).Add(t.Shipping).Add(t.Tax)
	return t
}

// Consistent reports whether Total still matches its components.
func (t Totals) Consistent() bool {
	return t.Total.Equal(t.Subtotal.Sub(t.Discount).Add(t.Shipping).Add(t.Tax))
}

// Apply copies the totals onto the order.
func (t Totals) Apply(order *models.Order) {
	order.Subtotal = t.Subtotal
	order.DiscountAmount = t.Discount
	order.ShippingCost = t.Shipping
	order.TaxAmount = t.Tax
	order.Total = t.Total
}
