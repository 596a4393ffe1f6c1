package evaluation

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for the evaluation pipeline.
type Metrics struct {
	duration    *prometheus.HistogramVec
	evaluations *prometheus.CounterVec
	cacheHits   *prometheus.CounterVec
	baseScore   prometheus.Histogram
}

var (
	defaultMetricsOnce sync.Once
	sharedMetrics      *Metrics
)

// DefaultMetrics returns metrics registered with the global registry,
// creating them once.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		sharedMetrics = MustNewMetrics(prometheus.DefaultRegisterer)
	})
	return sharedMetrics
}

// MustNewMetrics registers the pipeline collectors with reg. Collectors that
// are already registered are reused; any other registration error panics.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dqs",
			Subsystem: "evaluation",
			Name:      "duration_seconds",
			Help:      "Time spent evaluating one table.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"status"},
	)
	evaluations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dqs",
			Subsystem: "evaluation",
			Name:      "total",
			Help:      "Evaluations by outcome.",
		},
		[]string{"status"},
	)
	cacheHits := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dqs",
			Subsystem: "evaluation",
			Name:      "cache_lookups_total",
			Help:      "Snapshot cache lookups by result.",
		},
		[]string{"result"},
	)
	baseScore := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "dqs",
			Subsystem: "evaluation",
			Name:      "base_score",
			Help:      "Distribution of base scores.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		},
	)

	collectors := []prometheus.Collector{duration, evaluations, cacheHits, baseScore}
	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			already, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				panic(err)
			}
			switch collector {
			case duration:
				duration = already.ExistingCollector.(*prometheus.HistogramVec)
			case evaluations:
				evaluations = already.ExistingCollector.(*prometheus.CounterVec)
			case cacheHits:
				cacheHits = already.ExistingCollector.(*prometheus.CounterVec)
			case baseScore:
				baseScore = already.ExistingCollector.(prometheus.Histogram)
			}
		}
	}

	return &Metrics{
		duration:    duration,
		evaluations: evaluations,
		cacheHits:   cacheHits,
		baseScore:   baseScore,
	}
}

// ObserveEvaluation records one finished evaluation
func (m *Metrics) ObserveEvaluation(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(status).Observe(elapsed.Seconds())
	m.evaluations.WithLabelValues(status).Inc()
}

// ObserveBaseScore records a computed base score
func (m *Metrics) ObserveBaseScore(score float64) {
	if m == nil {
		return
	}
	m.baseScore.Observe(score)
}

// IncCacheLookup counts a cache hit or miss
func (m *Metrics) IncCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheHits.WithLabelValues(result).Inc()
}
