// Package metrics holds the Prometheus collectors for checkout.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSettled   = "settled"
	OutcomeDuplicate = "duplicate"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
	OutcomeIgnored   = "ignored"
	OutcomeInvalid   = "invalid_signature"
)

var (
	Settlements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_settlements_total",
			Help: "Settlement attempts by outcome",
		},
		[]string{"outcome"},
	)

	SettlementDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "checkout_settlement_duration_seconds",
			Help:    "Duration of settlement transactions including retries",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	SettlementRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "checkout_settlement_retries_total",
			Help: "Optimistic transaction retries caused by concurrent writes",
		},
	)

	CapacityRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_capacity_rejections_total",
			Help: "Carts rejected because a ticket type was sold out",
		},
		[]string{"ticket_type_id"},
	)

	PaymentCallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_payment_callbacks_total",
			Help: "Inbound payment confirmations by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	GatewayOrders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_gateway_orders_total",
			Help: "Payment gateway order creations by status",
		},
		[]string{"status"},
	)
)

// ObserveSettlement records how long a settlement took.
func ObserveSettlement(start time.Time) {
	SettlementDuration.Observe(time.Since(start).Seconds())
}
