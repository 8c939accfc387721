package checkout

import (
	"encoding/json"
	"errors"
	"io"
)

// Request keys.
const (
	KeyUserID   = "user_id"
	KeyItems    = "items"
	KeyCoupon   = "coupon"
	KeyCurrency = "currency"
	KeyPrice    = "price"
	KeyQty      = "qty"
)

var errNotObject = errors.New("request body must be a JSON object")

// Field is a raw request value tagged with whether its key was supplied.
type Field struct {
	Value   any
	Present bool
}

// Missing reports whether the key was absent or explicitly null.
func (f Field) Missing() bool {
	return !f.Present || f.Value == nil
}

// Request holds the raw, unvalidated fields of a checkout request.
type Request struct {
	UserID   Field
	Items    Field
	Coupon   Field
	Currency Field
}

// ParseRequest extracts the checkout fields from an untyped mapping.
// Nothing is validated or defaulted here.
func ParseRequest(raw map[string]any) Request {
	return Request{
		UserID:   lookup(raw, KeyUserID),
		Items:    lookup(raw, KeyItems),
		Coupon:   lookup(raw, KeyCoupon),
		Currency: lookup(raw, KeyCurrency),
	}
}

func lookup(raw map[string]any, key string) Field {
	v, ok := raw[key]
	return Field{Value: v, Present: ok}
}

// DecodeRequest decodes a JSON object into the mapping accepted by Process.
// Numbers are kept as json.Number so identifiers and amounts stay exact.
func DecodeRequest(r io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errNotObject
	}
	return raw, nil
}
