package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Inbound
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oto_events_total",
		Help: "Inbound chat events by kind",
	}, []string{"kind"})
	EventsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oto_events_dropped_total",
		Help: "Inbound events dropped because the dispatcher was closed",
	})

	// Conversation
	SessionsStartedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oto_sessions_started_total",
		Help: "Conversations started by kind",
	}, []string{"kind"})
	RejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oto_validation_rejections_total",
		Help: "Inputs rejected by a validator, by reason",
	}, []string{"reason"})
	CommitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oto_commits_total",
		Help: "Record commits by kind and outcome",
	}, []string{"kind", "outcome"})
	UnauthorizedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oto_unauthorized_total",
		Help: "Privileged commands attempted by non-operators",
	})
	CommitLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "oto_commit_latency_seconds",
		Help:    "Latency of record store inserts",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	// Outbound
	NotifyFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oto_notify_failures_total",
		Help: "Operator channel deliveries that failed",
	})
	DeliveryErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oto_delivery_errors_total",
		Help: "Replies the chat transport failed to deliver",
	})
	HeartbeatsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oto_heartbeats_total",
		Help: "Liveness messages by outcome",
	}, []string{"outcome"})
)

// Commit outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeDuplicate = "duplicate"
	OutcomeError     = "error"
)
