package checkout

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-checkout/internal/coupon"
	"github.com/noah-isme/toko-checkout/internal/pricing"
)

// DefaultCurrency is used when a request carries no currency.
const DefaultCurrency = "USD"

// EnsureRequired checks user_id and items are present and resolves the currency.
func EnsureRequired(userID, items, currency Field) (string, error) {
	return ensureRequired(userID, items, currency, DefaultCurrency)
}

func ensureRequired(userID, items, currency Field, fallback string) (string, error) {
	if userID.Missing() {
		return "", &MissingFieldError{Field: KeyUserID}
	}
	if items.Missing() {
		return "", &MissingFieldError{Field: KeyItems}
	}
	if currency.Missing() {
		return fallback, nil
	}
	code, ok := currency.Value.(string)
	if !ok {
		return "", &InvalidFieldError{Field: KeyCurrency, Reason: "must be a string"}
	}
	return code, nil
}

// ValidateItems checks every line item and converts them for pricing.
// The first violation is returned.
func ValidateItems(items Field) ([]pricing.Item, error) {
	list, ok := asList(items.Value)
	if !ok {
		return nil, &InvalidItemsError{Index: -1, Field: KeyItems, Reason: "items must be a list"}
	}
	if len(list) == 0 {
		return nil, &InvalidItemsError{Index: -1, Field: KeyItems, Reason: "items must not be empty"}
	}

	out := make([]pricing.Item, 0, len(list))
	for i, el := range list {
		obj, ok := el.(map[string]any)
		if !ok {
			return nil, &InvalidItemsError{Index: i, Reason: "item must be an object"}
		}
		rawPrice, hasPrice := obj[KeyPrice]
		if !hasPrice {
			return nil, &InvalidItemsError{Index: i, Field: KeyPrice, Reason: "item must have price and qty"}
		}
		rawQty, hasQty := obj[KeyQty]
		if !hasQty {
			return nil, &InvalidItemsError{Index: i, Field: KeyQty, Reason: "item must have price and qty"}
		}
		price, ok := toDecimal(rawPrice)
		if !ok || !price.IsPositive() {
			return nil, &InvalidItemsError{Index: i, Field: KeyPrice, Reason: "price must be positive"}
		}
		qty, ok := toDecimal(rawQty)
		if !ok || !qty.IsPositive() {
			return nil, &InvalidItemsError{Index: i, Field: KeyQty, Reason: "qty must be positive"}
		}
		if !qty.IsInteger() || qty.GreaterThan(maxQty) {
			return nil, &InvalidItemsError{Index: i, Field: KeyQty, Reason: "qty must be a whole number"}
		}
		out = append(out, pricing.Item{Qty: qty.IntPart(), UnitPrice: price})
	}
	return out, nil
}

// ParseCoupon maps the raw coupon field into a coupon variant. Missing and
// empty codes select no discount.
func ParseCoupon(f Field) (coupon.Coupon, error) {
	if f.Missing() {
		return coupon.None, nil
	}
	code, ok := f.Value.(string)
	if !ok {
		return coupon.None, &coupon.UnknownCouponError{Code: fmt.Sprint(f.Value)}
	}
	return coupon.Parse(code)
}

var maxQty = decimal.NewFromInt(math.MaxInt32)

func asList(v any) ([]any, bool) {
	switch list := v.(type) {
	case []any:
		return list, true
	case []map[string]any:
		out := make([]any, len(list))
		for i, m := range list {
			out[i] = m
		}
		return out, true
	default:
		return nil, false
	}
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(string(n))
		return d, err == nil
	case decimal.Decimal:
		return n, true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(n), true
	case float32:
		if math.IsNaN(float64(n)) || math.IsInf(float64(n), 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat32(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	default:
		return decimal.Zero, false
	}
}
