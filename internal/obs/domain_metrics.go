package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CheckoutRequestsTotal counts pricing outcomes per operation (checkout, quote).
	CheckoutRequestsTotal *prometheus.CounterVec
	// CheckoutDiscountTotal accumulates granted discount amounts per coupon.
	CheckoutDiscountTotal *prometheus.CounterVec
	// CheckoutOrderTotal records the payable total of successfully priced orders.
	CheckoutOrderTotal *prometheus.HistogramVec
)

// MustRegisterDomainMetrics initialises and registers checkout Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CheckoutRequestsTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_requests_total",
			Help:      "Count of checkout pricing outcomes.",
		}, []string{"operation", "result"}))
		CheckoutDiscountTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_discount_total",
			Help:      "Sum of discounts granted, by coupon.",
		}, []string{"coupon"}))
		CheckoutOrderTotal = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_order_total",
			Help:      "Distribution of payable order totals in major units.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 10000},
		}, []string{"currency"}))
	})
}

// RecordCheckout counts one pricing attempt. It is a no-op until the domain
// metrics are registered.
func RecordCheckout(operation, result string) {
	if CheckoutRequestsTotal == nil {
		return
	}
	CheckoutRequestsTotal.WithLabelValues(operation, result).Inc()
}

// RecordOrder observes a successfully priced order.
func RecordOrder(coupon, currency string, discount, total float64) {
	if CheckoutDiscountTotal == nil || CheckoutOrderTotal == nil {
		return
	}
	if coupon == "" {
		coupon = "none"
	}
	if discount > 0 {
		CheckoutDiscountTotal.WithLabelValues(coupon).Add(discount)
	}
	CheckoutOrderTotal.WithLabelValues(currency).Observe(total)
}
