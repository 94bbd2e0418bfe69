package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DocumentTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certification_document_transitions_total",
			Help: "Document status changes by target status",
		},
		[]string{"status"},
	)

	ReviewDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "certification_review_duration_seconds",
			Help:    "Duration of certify/reject operations",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2},
		},
		[]string{"action", "outcome"},
	)

	CommissionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "certification_commissions_created_total",
			Help: "Commission records created on certification",
		},
	)

	CommissionAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "certification_commission_total_amount_clp",
			Help:    "Document price split into a commission, in pesos",
			Buckets: []float64{1000, 5000, 10000, 25000, 50000, 100000, 250000, 1000000},
		},
	)

	UnpaidCommissions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "certification_unpaid_commissions",
			Help: "Commissions not yet paid out, refreshed by the scheduler",
		},
	)

	NotificationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "certification_notification_failures_total",
			Help: "Notifications that could not be stored after a committed operation",
		},
	)

	EventPublishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "certification_event_publish_errors_total",
			Help: "Lifecycle events that failed to reach kafka",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certification_http_requests_total",
			Help: "HTTP requests by route pattern and status code",
		},
		[]string{"method", "route", "code"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "certification_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certification_rate_limit_exceeded_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"scope"},
	)
)
