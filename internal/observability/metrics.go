package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gifboard_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// StorePersistLatency records the latency of full-collection writes to
	// durable storage. Write amplification is proportional to collection
	// size, so this is the metric to watch as the collection grows.
	StorePersistLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gifboard_store_persist_latency_seconds",
		Help:    "Durable storage persist latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"key"})

	// SuggestionRequests counts external suggestion-service calls by kind and outcome.
	SuggestionRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gifboard_suggestion_requests_total",
		Help: "Total suggestion service requests by kind and outcome",
	}, []string{"kind", "outcome"})

	// SuggestionLatency records external suggestion-service call latency.
	SuggestionLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gifboard_suggestion_latency_seconds",
		Help:    "Suggestion service request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	// ModerationQueueDepth is the gauge of GIFs currently awaiting review.
	ModerationQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gifboard_moderation_queue_depth",
		Help: "Number of uploads currently pending moderation",
	})

	// UploadsTotal counts accepted uploads by initial moderation status.
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gifboard_uploads_total",
		Help: "Total accepted uploads by initial status",
	}, []string{"status"})
)

// TrackPersist returns a function that records persist latency when called (e.g. defer).
func TrackPersist(key string) func() {
	start := time.Now()
	return func() {
		StorePersistLatency.WithLabelValues(key).Observe(time.Since(start).Seconds())
	}
}
