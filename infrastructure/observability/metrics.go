// Package observability exposes Prometheus metrics for the ledger's
// mutation and query paths.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GrantsTotal counts pending credit grants by outcome
	GrantsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rallyledger",
		Name:      "grants_total",
		Help:      "Number of pending credit grants processed.",
	}, []string{"outcome"})

	// ConfirmationsTotal counts grant resolutions by resolution kind
	ConfirmationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rallyledger",
		Name:      "grant_resolutions_total",
		Help:      "Number of pending grants resolved, by resolution.",
	}, []string{"resolution"})

	// RedemptionsTotal counts redemption requests by outcome
	RedemptionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rallyledger",
		Name:      "redemptions_total",
		Help:      "Number of redemption requests processed, by outcome.",
	}, []string{"outcome"})

	// RedeemDuration observes end-to-end redemption latency
	RedeemDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "rallyledger",
		Name:      "redeem_duration_seconds",
		Help:      "Latency of the redeem operation.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Outcome label values shared by the counters above
const (
	OutcomeCommitted    = "committed"
	OutcomeRejected     = "rejected"
	OutcomeError        = "error"
	OutcomeGranted      = "granted"
	ResolutionConfirmed = "confirmed"
	ResolutionForfeited = "forfeited"
)
