package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP responses by method, route and status code
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solarhub_http_requests_total",
		Help: "The total number of HTTP requests",
	}, []string{"method", "path", "status"})

	// RequestDuration observes handler latency per route
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "solarhub_http_request_duration_seconds",
		Help:    "The request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// OrdersTotal counts order lifecycle events by outcome
	OrdersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solarhub_orders_total",
		Help: "The total number of order operations",
	}, []string{"operation", "status"})

	// PaymentIntentsTotal counts payment gateway calls by operation and outcome
	PaymentIntentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solarhub_payment_intents_total",
		Help: "The total number of payment gateway calls",
	}, []string{"operation", "status"})

	// CompensationsTotal counts compensating actions run after a failed order
	CompensationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solarhub_order_compensations_total",
		Help: "The total number of compensating actions executed",
	}, []string{"status"})

	// MailsTotal counts outgoing mail deliveries
	MailsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solarhub_mails_total",
		Help: "The total number of mail deliveries",
	}, []string{"status"})
)

// Outcome labels a metric with "success" or "error"
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
