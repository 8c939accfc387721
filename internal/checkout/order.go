package checkout

import (
	"encoding/json"
	"fmt"

	"github.com/noah-isme/toko-checkout/internal/pricing"
)

const orderSuffix = "X"

// OrderSummary is the priced outcome of a checkout.
type OrderSummary struct {
	OrderID    string
	UserID     any
	Currency   string
	Subtotal   pricing.Money
	Discount   pricing.Money
	Tax        pricing.Money
	Total      pricing.Money
	ItemsCount int
}

// MakeOrderID derives the order label "{user_id}-{items_count}-X".
// Identical inputs yield identical ids; it is not a unique key.
func MakeOrderID(userID any, itemsCount int) string {
	return fmt.Sprintf("%v-%d-%s", userID, itemsCount, orderSuffix)
}

// Assemble packages the computed fields into an OrderSummary.
func Assemble(userID any, currency string, itemsCount int, s pricing.Summary) OrderSummary {
	return OrderSummary{
		OrderID:    MakeOrderID(userID, itemsCount),
		UserID:     userID,
		Currency:   currency,
		Subtotal:   s.Subtotal,
		Discount:   s.Discount,
		Tax:        s.Tax,
		Total:      s.Total,
		ItemsCount: itemsCount,
	}
}

type orderSummaryJSON struct {
	OrderID    string      `json:"order_id"`
	UserID     any         `json:"user_id"`
	Currency   string      `json:"currency"`
	Subtotal   json.Number `json:"subtotal"`
	Discount   json.Number `json:"discount"`
	Tax        json.Number `json:"tax"`
	Total      json.Number `json:"total"`
	ItemsCount int         `json:"items_count"`
}

// MarshalJSON renders monetary amounts as JSON numbers. Tax is whole, so it
// renders without a fraction.
func (o OrderSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(orderSummaryJSON{
		OrderID:    o.OrderID,
		UserID:     o.UserID,
		Currency:   o.Currency,
		Subtotal:   json.Number(o.Subtotal.String()),
		Discount:   json.Number(o.Discount.String()),
		Tax:        json.Number(o.Tax.String()),
		Total:      json.Number(o.Total.String()),
		ItemsCount: o.ItemsCount,
	})
}
