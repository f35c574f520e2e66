package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application
// ⭐ SSOT: 메트릭 정의는 여기서만
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Pipeline
	BadgesComputed   *prometheus.CounterVec
	SecuritiesFailed *prometheus.CounterVec
	StageDuration    *prometheus.HistogramVec
	IndicatorRows    *prometheus.CounterVec

	// HTTP
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// stageBuckets cover a single-stock computation up to a full market batch (seconds)
var stageBuckets = []float64{.01, .05, .1, .5, 1, 5, 15, 30, 60, 180, 600}

var httpBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// New creates a registry with process/Go collectors and registers all metrics on it
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := NewWithRegisterer(reg)
	m.registry = reg
	return m
}

// NewWithRegisterer registers all metrics on reg
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		BadgesComputed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "riskbadge",
				Name:      "badges_computed_total",
				Help:      "Badges computed, by market and summary tier",
			},
			[]string{"market", "tier"},
		),
		SecuritiesFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "riskbadge",
				Name:      "securities_failed_total",
				Help:      "Securities skipped because of invalid input or errors",
			},
			[]string{"market", "stage"},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "riskbadge",
				Name:      "stage_duration_seconds",
				Help:      "Duration of pipeline stages in seconds",
				Buckets:   stageBuckets,
			},
			[]string{"stage"},
		),
		IndicatorRows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "riskbadge",
				Name:      "indicator_rows_total",
				Help:      "Indicator rows computed, by market",
			},
			[]string{"market"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "riskbadge",
				Name:      "http_requests_total",
				Help:      "HTTP requests, by route and status code",
			},
			[]string{"route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "riskbadge",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   httpBuckets,
			},
			[]string{"route"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordBadge counts a computed badge
func (m *Metrics) RecordBadge(market, tier string) {
	if m == nil {
		return
	}
	m.BadgesComputed.WithLabelValues(market, tier).Inc()
}

// RecordFailure counts a skipped security
func (m *Metrics) RecordFailure(market, stage string) {
	if m == nil {
		return
	}
	m.SecuritiesFailed.WithLabelValues(market, stage).Inc()
}

// RecordIndicatorRows counts computed indicator rows
func (m *Metrics) RecordIndicatorRows(market string, n int) {
	if m == nil {
		return
	}
	m.IndicatorRows.WithLabelValues(market).Add(float64(n))
}

// ObserveStage records how long a pipeline stage took
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordHTTPRequest records a served request
func (m *Metrics) RecordHTTPRequest(route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Timer measures a stage from creation
type Timer struct {
	m     *Metrics
	stage string
	start time.Time
}

// NewTimer starts timing a stage
func (m *Metrics) NewTimer(stage string) *Timer {
	return &Timer{m: m, stage: stage, start: time.Now()}
}

// Stop records the elapsed time and returns it
func (t *Timer) Stop() time.Duration {
	d := time.Since(t.start)
	t.m.ObserveStage(t.stage, d)
	return d
}
