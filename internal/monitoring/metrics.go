package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sentisocial"

var (
	InferenceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "inference_duration_seconds",
			Help:      "Duration of classifier inference calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"model"},
	)

	InferenceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inference_failures_total",
			Help:      "Inference calls that fell back to the default result",
		},
		[]string{"model"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inference_cache_lookups_total",
			Help:      "Inference cache lookups by result",
		},
		[]string{"cache", "result"},
	)

	AnalysisTasks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_tasks_total",
			Help:      "Background analysis tasks by content kind and outcome",
		},
		[]string{"kind", "status"},
	)

	DispatchQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dispatch_queue_depth",
			Help:      "Analysis tasks waiting in the local dispatcher queue",
		},
	)
)

func RecordInference(model string, seconds float64, failed bool) {
	InferenceDuration.WithLabelValues(model).Observe(seconds)
	if failed {
		InferenceFailures.WithLabelValues(model).Inc()
	}
}

func RecordCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(cache, result).Inc()
}

func RecordTask(kind, status string) {
	AnalysisTasks.WithLabelValues(kind, status).Inc()
}
