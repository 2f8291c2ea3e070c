package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ResponseTimeHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_time_seconds",
			Help:    "Histogram of response times",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	CommissionsReleased = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_commissions_released_total",
			Help: "Commissions credited to an ambassador balance",
		},
	)

	CommissionCreditFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_commission_credit_failures_total",
			Help: "Released commissions whose credit write failed and was left to reconciliation",
		},
	)

	WithdrawalsRequested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_withdrawals_requested_total",
			Help: "Withdrawal requests by outcome",
		},
		[]string{"outcome"},
	)

	SocialStrikes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ambassador_social_strikes_total",
			Help: "Social strikes recorded, by source",
		},
		[]string{"source"},
	)

	ReconciledCredits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_reconciled_credits_total",
			Help: "Missing commission credits repaired by reconciliation",
		},
	)

	HandlerPanics = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_handler_panics_total",
			Help: "Panics recovered in HTTP handlers, by route",
		},
		[]string{"path"},
	)
)
