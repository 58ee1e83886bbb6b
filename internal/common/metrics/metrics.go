package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_messages_processed_total",
			Help: "Total number of inbound messages processed, by route path",
		},
		[]string{"path"},
	)

	MessagesDuplicate = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "webhook_messages_duplicate_total",
			Help: "Total number of inbound messages short-circuited as duplicates",
		},
	)

	StageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_stage_failures_total",
			Help: "Total number of degraded collaborator calls, by stage",
		},
		[]string{"stage"},
	)

	HandlerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "webhook_handler_duration_seconds",
			Help: "Duration of inbound message handling in seconds",
		},
		[]string{"path"},
	)

	LeadScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "webhook_lead_score",
			Help:    "Distribution of computed lead scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)
)
