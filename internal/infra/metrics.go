package infra

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the service's Prometheus instruments. Every Record method
// is safe on a nil receiver so tests can run without a registry.
type Metrics struct {
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	dayTransitions  *prometheus.CounterVec
	guardRejections prometheus.Counter
	exportCache     *prometheus.CounterVec
}

// NewMetrics creates the instruments and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dailypos_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dailypos_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		dayTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dailypos_day_transitions_total",
			Help: "Day lifecycle transitions by kind (start, close) and outcome.",
		}, []string{"transition", "outcome"}),
		guardRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dailypos_day_guard_rejections_total",
			Help: "Order and payment writes rejected because the day is closed.",
		}),
		exportCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dailypos_export_cache_total",
			Help: "Export cache lookups by result (hit, miss).",
		}, []string{"result"}),
	}
	reg.MustRegister(m.httpRequests, m.httpDuration, m.dayTransitions, m.guardRejections, m.exportCache)
	return m
}

func (m *Metrics) RecordHTTP(route, method, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, status).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// RecordDayTransition counts a start or close attempt; outcome is "ok" or
// the name of the refusing error.
func (m *Metrics) RecordDayTransition(transition, outcome string) {
	if m == nil {
		return
	}
	m.dayTransitions.WithLabelValues(transition, outcome).Inc()
}

func (m *Metrics) RecordGuardRejection() {
	if m == nil {
		return
	}
	m.guardRejections.Inc()
}

func (m *Metrics) RecordExportCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.exportCache.WithLabelValues(result).Inc()
}
