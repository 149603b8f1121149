package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solace_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "solace_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ChatTurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solace_chat_turns_total",
			Help: "Total chat turns by pipeline outcome.",
		},
		[]string{"outcome"}, // completed, escalated, quota_denied, moderation_rejected, validation_failed, fallback
	)

	QuotaDenialsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solace_quota_denials_total",
			Help: "Quota denials by the window that was exceeded.",
		},
		[]string{"window", "tier"},
	)

	QuotaStoreFailOpenTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "solace_quota_store_fail_open_total",
			Help: "Requests admitted because the quota store was unavailable.",
		},
	)

	ModerationFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "solace_moderation_fallbacks_total",
			Help: "Moderation verdicts produced by the local heuristic instead of the classifier.",
		},
	)

	ModerationCacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solace_moderation_cache_total",
			Help: "Moderation cache lookups by result.",
		},
		[]string{"result"}, // hit, miss
	)

	CrisisEscalationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solace_crisis_escalations_total",
			Help: "Crisis detections by severity band.",
		},
		[]string{"band"}, // high, elevated
	)

	CompletionFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "solace_completion_failures_total",
			Help: "Completion-service calls that fell back to the canned supportive response.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ChatTurnsTotal,
		QuotaDenialsTotal,
		QuotaStoreFailOpenTotal,
		ModerationFallbacksTotal,
		ModerationCacheHitsTotal,
		CrisisEscalationsTotal,
		CompletionFailuresTotal,
	)
}
