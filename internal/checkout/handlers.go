package checkout

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-checkout/internal/common"
	"github.com/noah-isme/toko-checkout/internal/coupon"
)

type Handler struct {
	Svc    *Service
	Logger zerolog.Logger
}

// Checkout handles POST /api/v1/checkout.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "checkout service not configured", nil)
		return
	}
	h.price(w, r, OpCheckout, h.Svc.Checkout)
}

// Quote handles POST /api/v1/checkout/quote.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "checkout service not configured", nil)
		return
	}
	h.price(w, r, OpQuote, h.Svc.Quote)
}

func (h *Handler) price(w http.ResponseWriter, r *http.Request, op string, run func(context.Context, map[string]any) (OrderSummary, error)) {
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		w.Header().Set("X-Request-ID", reqID)
	}
	raw, err := DecodeRequest(r.Body)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid payload", nil)
		return
	}
	if !common.MatchesUser(r.Context(), raw[KeyUserID]) {
		common.JSONError(w, http.StatusForbidden, common.CodeForbidden, "user_id does not match the authenticated user", nil)
		return
	}
	summary, err := run(r.Context(), raw)
	if err != nil {
		appErr := ToAppError(err)
		h.Logger.Warn().
			Str("operation", op).
			Str("code", appErr.Code).
			Interface("details", appErr.Details).
			Msg("checkout rejected")
		common.WriteError(w, appErr)
		return
	}
	h.Logger.Debug().Str("operation", op).Str("order_id", summary.OrderID).Msg("checkout priced")
	common.Data(w, http.StatusOK, summary)
}

// Coupon handles GET /api/v1/coupons/{code}.
func (h *Handler) Coupon(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	c, err := coupon.Parse(code)
	if err != nil || c == coupon.None {
		common.JSONError(w, http.StatusNotFound, common.CodeUnknownCoupon, "coupon not found", map[string]any{"coupon": code})
		return
	}
	common.Data(w, http.StatusOK, map[string]any{
		"code":  c.String(),
		"valid": true,
		"rule":  c.Describe(),
	})
}
