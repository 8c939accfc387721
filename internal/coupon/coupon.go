package coupon

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-checkout/internal/pricing"
)

// ErrUnknownCoupon is returned when a non-empty code is not one of the recognised coupons.
var ErrUnknownCoupon = errors.New("unknown coupon")

// UnknownCouponError carries the rejected code.
type UnknownCouponError struct {
	Code string
}

func (e *UnknownCouponError) Error() string {
	return fmt.Sprintf("unknown coupon %q", e.Code)
}

func (e *UnknownCouponError) Unwrap() error { return ErrUnknownCoupon }

// Coupon is the closed set of discount rules a checkout may apply.
type Coupon int

const (
	None Coupon = iota
	Save10
	Save20
	VIP
)

// Recognised coupon codes. Matching is exact.
const (
	CodeSave10 = "SAVE10"
	CodeSave20 = "SAVE20"
	CodeVIP    = "VIP"
)

const (
	save10Bps         = 1000
	save20Bps         = 2000
	save20FallbackBps = 500
)

var (
	save20MinSubtotal  = decimal.NewFromInt(200)
	vipSmallLimit      = decimal.NewFromInt(100)
	vipSmallDiscount   = decimal.NewFromInt(10)
	vipDefaultDiscount = decimal.NewFromInt(50)
)

// Parse maps a raw code into a Coupon. The empty string selects None.
func Parse(code string) (Coupon, error) {
	switch code {
	case "":
		return None, nil
	case CodeSave10:
		return Save10, nil
	case CodeSave20:
		return Save20, nil
	case CodeVIP:
		return VIP, nil
	default:
		return None, &UnknownCouponError{Code: code}
	}
}

// String returns the coupon code, or an empty string for None.
func (c Coupon) String() string {
	switch c {
	case Save10:
		return CodeSave10
	case Save20:
		return CodeSave20
	case VIP:
		return CodeVIP
	default:
		return ""
	}
}

// Discount determines the discount the coupon earns on subtotal.
// The result may exceed the subtotal; callers clamp the payable amount.
func (c Coupon) Discount(subtotal pricing.Money) pricing.Money {
	switch c {
	case Save10:
		return pricing.PercentOf(subtotal, save10Bps)
	case Save20:
		if subtotal.GreaterThanOrEqual(save20MinSubtotal) {
			return pricing.PercentOf(subtotal, save20Bps)
		}
		return pricing.PercentOf(subtotal, save20FallbackBps)
	case VIP:
		if subtotal.LessThan(vipSmallLimit) {
			return vipSmallDiscount
		}
		return vipDefaultDiscount
	default:
		return decimal.Zero
	}
}

// Tier is one branch of a coupon rule.
type Tier struct {
	Condition  string `json:"condition"`
	Kind       string `json:"kind"`
	PercentBps int    `json:"percentBps,omitempty"`
	Amount     string `json:"amount,omitempty"`
}

// Rule describes how a coupon computes its discount.
type Rule struct {
	Code  string `json:"code"`
	Tiers []Tier `json:"tiers"`
}

// Describe returns the rule table for c.
func (c Coupon) Describe() Rule {
	rule := Rule{Code: c.String()}
	switch c {
	case Save10:
		rule.Tiers = []Tier{{Condition: "always", Kind: "percent", PercentBps: save10Bps}}
	case Save20:
		rule.Tiers = []Tier{
			{Condition: "subtotal >= " + save20MinSubtotal.String(), Kind: "percent", PercentBps: save20Bps},
			{Condition: "subtotal < " + save20MinSubtotal.String(), Kind: "percent", PercentBps: save20FallbackBps},
		}
	case VIP:
		rule.Tiers = []Tier{
			{Condition: "subtotal < " + vipSmallLimit.String(), Kind: "flat", Amount: vipSmallDiscount.String()},
			{Condition: "subtotal >= " + vipSmallLimit.String(), Kind: "flat", Amount: vipDefaultDiscount.String()},
		}
	default:
		rule.Tiers = []Tier{}
	}
	return rule
}
