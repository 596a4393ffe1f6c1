package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes HTTP collectors for the API
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	limited  prometheus.Counter
}

// MustNewMetrics registers the API collectors with reg, reusing any that
// are already registered.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dqs",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status.",
		},
		[]string{"route", "method", "status"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dqs",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	limited := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dqs",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		},
	)

	collectors := []prometheus.Collector{requests, duration, limited}
	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			already, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				panic(err)
			}
			switch collector {
			case requests:
				requests = already.ExistingCollector.(*prometheus.CounterVec)
			case duration:
				duration = already.ExistingCollector.(*prometheus.HistogramVec)
			case limited:
				limited = already.ExistingCollector.(prometheus.Counter)
			}
		}
	}

	return &Metrics{requests: requests, duration: duration, limited: limited}
}

// ObserveRequest records one served request
func (m *Metrics) ObserveRequest(route, method, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, status).Inc()
	m.duration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// IncRateLimited counts a rejected request
func (m *Metrics) IncRateLimited() {
	if m == nil {
		return
	}
	m.limited.Inc()
}
