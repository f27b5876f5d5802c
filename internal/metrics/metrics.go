package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the QOTD lifecycle.
type Metrics struct {
	Submissions    *prometheus.CounterVec
	Rollovers      prometheus.Counter
	Merges         *prometheus.CounterVec
	CommitDuration prometheus.Histogram
}

var std = NewWith(prometheus.DefaultRegisterer)

// Default returns the process-wide metrics instance.
func Default() *Metrics { return std }

// NewWith registers a fresh set of collectors on reg. Tests pass their own
// registry to avoid duplicate registration panics.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "qotd",
				Name:      "submissions_total",
				Help:      "Answer submissions by verdict",
			},
			[]string{"verdict"},
		),
		Rollovers: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "qotd",
				Name:      "rollovers_total",
				Help:      "Completed daily rollovers",
			},
		),
		Merges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "qotd",
				Name:      "leaderboard_merges_total",
				Help:      "Leaderboard merge operations by direction",
			},
			[]string{"direction"}, // add|undo
		),
		CommitDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "qotd",
				Name:      "sheet_commit_seconds",
				Help:      "Remote bulk-write latency per sheet commit",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
}
