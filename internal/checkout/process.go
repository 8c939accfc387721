package checkout

import (
	"strings"

	"github.com/noah-isme/toko-checkout/internal/coupon"
	"github.com/noah-isme/toko-checkout/internal/pricing"
)

// Pipeline prices checkout requests. The zero value uses DefaultCurrency and
// pricing.TaxRateBps.
type Pipeline struct {
	DefaultCurrency string
	TaxBps          int
}

// Process prices a request with the default pipeline.
func Process(raw map[string]any) (OrderSummary, error) {
	return Pipeline{}.Process(raw)
}

// Process runs parse, validation, pricing and assembly in order and returns
// the first error encountered. No partial summary is ever returned.
func (p Pipeline) Process(raw map[string]any) (OrderSummary, error) {
	summary, _, err := p.process(raw)
	return summary, err
}

func (p Pipeline) process(raw map[string]any) (OrderSummary, coupon.Coupon, error) {
	req := ParseRequest(raw)

	currency, err := ensureRequired(req.UserID, req.Items, req.Currency, p.defaultCurrency())
	if err != nil {
		return OrderSummary{}, coupon.None, err
	}
	items, err := ValidateItems(req.Items)
	if err != nil {
		return OrderSummary{}, coupon.None, err
	}
	c, err := ParseCoupon(req.Coupon)
	if err != nil {
		return OrderSummary{}, coupon.None, err
	}

	summary := pricing.Engine{TaxBps: p.TaxBps}.Compute(items, c)
	return Assemble(req.UserID.Value, currency, len(items), summary), c, nil
}

func (p Pipeline) defaultCurrency() string {
	if c := strings.TrimSpace(p.DefaultCurrency); c != "" {
		return c
	}
	return DefaultCurrency
}
