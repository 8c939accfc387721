package checkout

import (
	"context"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/toko-checkout/internal/common"
	"github.com/noah-isme/toko-checkout/internal/coupon"
	"github.com/noah-isme/toko-checkout/internal/obs"
)

// Operations recorded in metrics and spans.
const (
	OpCheckout = "checkout"
	OpQuote    = "quote"
)

// Service runs the pricing pipeline for the HTTP layer, adding tracing and
// metrics around the pure core.
type Service struct {
	Pipeline Pipeline
	Tracer   trace.Tracer
}

// Checkout prices a checkout request.
func (s *Service) Checkout(ctx context.Context, raw map[string]any) (OrderSummary, error) {
	return s.run(ctx, OpCheckout, raw)
}

// Quote prices a request without committing to it.
func (s *Service) Quote(ctx context.Context, raw map[string]any) (OrderSummary, error) {
	return s.run(ctx, OpQuote, raw)
}

func (s *Service) run(ctx context.Context, op string, raw map[string]any) (OrderSummary, error) {
	tracer := s.Tracer
	if tracer == nil {
		tracer = obs.Tracer()
	}
	_, span := tracer.Start(ctx, "checkout."+op)
	defer span.End()

	summary, c, err := s.Pipeline.process(raw)
	if err != nil {
		appErr := ToAppError(err)
		obs.RecordCheckout(op, appErr.Code)
		span.SetAttributes(attribute.String("checkout.error_code", appErr.Code))
		span.SetStatus(codes.Error, appErr.Message)
		return OrderSummary{}, appErr
	}

	couponCode := c.String()
	obs.RecordCheckout(op, "ok")
	obs.RecordOrder(couponCode, summary.Currency, summary.Discount.InexactFloat64(), summary.Total.InexactFloat64())
	span.SetAttributes(
		attribute.String("checkout.order_id", summary.OrderID),
		attribute.String("checkout.currency", summary.Currency),
		attribute.String("checkout.coupon", couponCode),
		attribute.Int("checkout.items_count", summary.ItemsCount),
		attribute.String("checkout.total", summary.Total.String()),
	)
	return summary, nil
}

// ToAppError maps pipeline errors onto API error codes.
func ToAppError(err error) *common.AppError {
	var (
		missing *MissingFieldError
		items   *InvalidItemsError
		field   *InvalidFieldError
		unknown *coupon.UnknownCouponError
		appErr  *common.AppError
	)
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.As(err, &missing):
		return common.BadRequest(common.CodeMissingField, err, map[string]any{"field": missing.Field})
	case errors.As(err, &items):
		details := map[string]any{"reason": items.Reason}
		if items.Index >= 0 {
			details["index"] = items.Index
		}
		if items.Field != "" {
			details["field"] = items.Field
		}
		return common.BadRequest(common.CodeInvalidItems, err, details)
	case errors.As(err, &field):
		return common.BadRequest(common.CodeInvalidField, err, map[string]any{"field": field.Field})
	case errors.As(err, &unknown):
		return common.BadRequest(common.CodeUnknownCoupon, err, map[string]any{"coupon": unknown.Code})
	default:
		return common.NewAppError(common.CodeInternal, "internal error", http.StatusInternalServerError, err)
	}
}
