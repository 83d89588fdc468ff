package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindsupport_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mindsupport_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// AIRequestLatency records outbound model API latency by outcome.
	AIRequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mindsupport_ai_request_latency_seconds",
		Help:    "Model API request latency in seconds",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 15, 30},
	}, []string{"outcome"})

	// AIFallbackTotal counts chat exchanges answered by the canned
	// responder instead of the model API, by reason.
	AIFallbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindsupport_ai_fallback_total",
		Help: "Total chat exchanges served by the fallback responder",
	}, []string{"reason"})

	// ChatExchangesTotal counts completed chat exchanges.
	ChatExchangesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mindsupport_chat_exchanges_total",
		Help: "Total completed chat exchanges",
	})

	// ReportsFiledTotal counts content reports filed against posts.
	ReportsFiledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mindsupport_reports_filed_total",
		Help: "Total content reports filed",
	})

	// ModerationActionsTotal counts report handling outcomes by action.
	ModerationActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindsupport_moderation_actions_total",
		Help: "Total moderation actions by type",
	}, []string{"action"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		ObserveQuery(operation, table, start)
	}
}

// ObserveAIRequest records the latency and outcome of a model API call.
func ObserveAIRequest(outcome string, start time.Time) {
	AIRequestLatency.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}
