// Package metrics holds the Prometheus collectors for the API process.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teamup_recommend_requests_total",
			Help: "Recommendation requests by outcome (ok, empty, error).",
		},
		[]string{"outcome"},
	)

	RecommendPipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "teamup_recommend_pipeline_duration_seconds",
			Help:    "Time spent scoring candidates, by pipeline.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"pipeline"},
	)

	RecommendCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "teamup_recommend_candidates",
			Help:    "Number of candidates scored per request.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	ChatMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "teamup_chat_messages_total",
			Help: "Chat messages persisted.",
		},
	)

	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "teamup_ws_connections",
			Help: "Open chat WebSocket connections.",
		},
	)

	InteractionEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teamup_interaction_events_total",
			Help: "Interaction events handled by the worker pool, by result.",
		},
		[]string{"result"},
	)

	FeedCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teamup_feed_cache_lookups_total",
			Help: "Feed cache lookups by result (hit, miss).",
		},
		[]string{"result"},
	)
)
