package pricing

import "github.com/shopspring/decimal"

// Money represents an exact monetary value in major currency units.
type Money = decimal.Decimal

// TaxRateBps is the default tax rate expressed in basis points (21%).
const TaxRateBps = 2100

// Item describes a line item used for pricing calculation.
type Item struct {
	Qty       int64
	UnitPrice Money
}

// Discounter maps a subtotal to the discount it earns.
type Discounter interface {
	Discount(subtotal Money) Money
}

// Summary aggregates computed pricing components.
type Summary struct {
	Subtotal Money
	Discount Money
	Taxable  Money
	Tax      Money
	Total    Money
}

// Engine computes cart totals with a fixed tax rate.
type Engine struct {
	// TaxBps overrides TaxRateBps when positive.
	TaxBps int
}

// Compute runs subtotal, discount, clamp and tax in order.
func (e Engine) Compute(items []Item, d Discounter) Summary {
	subtotal := Subtotal(items)
	discount := decimal.Zero
	if d != nil {
		discount = d.Discount(subtotal)
	}
	taxable := AfterDiscount(subtotal, discount)
	tax := Tax(taxable, e.taxBps())
	return Summary{
		Subtotal: subtotal,
		Discount: discount,
		Taxable:  taxable,
		Tax:      tax,
		Total:    taxable.Add(tax),
	}
}

func (e Engine) taxBps() int {
	if e.TaxBps <= 0 {
		return TaxRateBps
	}
	return e.TaxBps
}

// Subtotal sums price times quantity without rounding.
func Subtotal(items []Item) Money {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.UnitPrice.Mul(decimal.NewFromInt(it.Qty)))
	}
	return subtotal
}

// AfterDiscount subtracts the discount and never goes below zero.
func AfterDiscount(subtotal, discount Money) Money {
	taxable := subtotal.Sub(discount)
	if taxable.IsNegative() {
		return decimal.Zero
	}
	return taxable
}

// Tax returns the whole-unit tax owed on amount, truncated toward zero.
// The result is always an integer value of any magnitude.
func Tax(amount Money, taxBps int) Money {
	return PercentOf(amount, taxBps)
}

// PercentOf returns amount * bps / 10000 truncated toward zero to a whole unit.
func PercentOf(amount Money, bps int) Money {
	return amount.Mul(decimal.NewFromInt(int64(bps))).Shift(-4).Truncate(0)
}
