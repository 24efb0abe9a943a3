package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Similarity Prometheus metrics.
var (
	ResultCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "similar",
			Name:      "result_cache_total",
			Help:      "Result cache lookups by outcome",
		},
		[]string{"result"}, // "hit" / "miss" / "error"
	)

	ResultCacheFlushTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "similar",
			Name:      "result_cache_flush_total",
			Help:      "Result cache flushes by trigger",
		},
		[]string{"reason"}, // "event" / "disabled" / "manual"
	)

	ScoreDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "similar",
			Name:      "score_duration_seconds",
			Help:      "Time spent scoring and ranking one candidate pool",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	CandidatesScoredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "similar",
			Name:      "candidates_scored_total",
			Help:      "Total candidates passed through the scorer",
		},
	)

	MutationEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "similar",
			Name:      "mutation_events_total",
			Help:      "Content mutation events received",
		},
		[]string{"name"},
	)
)

// Flush reasons.
const (
	FlushReasonEvent    = "event"
	FlushReasonDisabled = "disabled"
	FlushReasonManual   = "manual"
)

var registerOnce sync.Once

// RegisterSimilarMetrics registers the similarity metrics. Must be called from main.
func RegisterSimilarMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ResultCacheTotal)
		prometheus.MustRegister(ResultCacheFlushTotal)
		prometheus.MustRegister(ScoreDuration)
		prometheus.MustRegister(CandidatesScoredTotal)
		prometheus.MustRegister(MutationEventsTotal)
	})
}
