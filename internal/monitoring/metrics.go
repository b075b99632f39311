package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	githubRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "execmeter",
		Subsystem: "github",
		Name:      "requests_total",
		Help:      "Outbound GitHub API requests by response status.",
	}, []string{"status"})

	rateLimitRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "execmeter",
		Subsystem: "github",
		Name:      "rate_limit_remaining",
		Help:      "Most recently observed GitHub rate limit remaining quota.",
	})

	syncRuns = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "execmeter",
		Subsystem: "sync",
		Name:      "runs_total",
		Help:      "Completed daily sync runs.",
	})

	syncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "execmeter",
		Subsystem: "sync",
		Name:      "duration_seconds",
		Help:      "Wall time of a full sync run.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	subjectOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "execmeter",
		Subsystem: "sync",
		Name:      "subjects_total",
		Help:      "Per-executive sync outcomes: synced, skipped, failed.",
	}, []string{"outcome"})
)

// RecordGitHubRequest counts one outbound API call by status label.
func RecordGitHubRequest(status string) {
	githubRequests.WithLabelValues(status).Inc()
}

// SetRateLimitRemaining publishes the tracked remaining quota.
func SetRateLimitRemaining(n int) {
	rateLimitRemaining.Set(float64(n))
}

// RecordSyncRun counts one completed batch and its duration.
func RecordSyncRun(d time.Duration) {
	syncRuns.Inc()
	syncDuration.Observe(d.Seconds())
}

// RecordSubjectOutcome counts one per-executive result.
func RecordSubjectOutcome(outcome string) {
	subjectOutcomes.WithLabelValues(outcome).Inc()
}

// MetricsHandler exposes the Prometheus scrape endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
