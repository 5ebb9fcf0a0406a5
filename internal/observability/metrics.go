// Package observability holds the process-wide prometheus collectors.
// Registration is lazy and idempotent so library packages can record
// metrics without owning the registry lifecycle.
package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type moduleMetrics struct {
	journalSessions     prometheus.Gauge
	sessionSaveDuration prometheus.Histogram
	sessionLoadDuration prometheus.Histogram

	samplerDrawsTotal  prometheus.Counter
	samplerResetsTotal prometheus.Counter

	generationDuration    prometheus.Histogram
	generationErrorsTotal *prometheus.CounterVec
}

var (
	metricsOnce sync.Once
	metricsInst *moduleMetrics
	registry    *prometheus.Registry
)

func getMetrics() *moduleMetrics {
	metricsOnce.Do(func() {
		m := &moduleMetrics{
			journalSessions: prometheus.NewGauge(
				prometheus.GaugeOpts{
					Name: "journal_sessions",
					Help: "Number of sessions in the journal document.",
				},
			),
			sessionSaveDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "session_save_duration_seconds",
					Help:    "Duration of journal appends in seconds.",
					Buckets: prometheus.DefBuckets,
				},
			),
			sessionLoadDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "session_load_duration_seconds",
					Help:    "Duration of journal reads in seconds.",
					Buckets: prometheus.DefBuckets,
				},
			),
			samplerDrawsTotal: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "sampler_draws_total",
					Help: "Total emoji draws served.",
				},
			),
			samplerResetsTotal: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "sampler_resets_total",
					Help: "Total issued-set resets, explicit or on exhaustion.",
				},
			),
			generationDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "generation_duration_seconds",
					Help:    "Duration of story generation calls in seconds.",
					Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
				},
			),
			generationErrorsTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "generation_errors_total",
					Help: "Total story generation failures by reason.",
				},
				[]string{"reason"},
			),
		}

		registry = prometheus.NewRegistry()
		registry.MustRegister(
			m.journalSessions,
			m.sessionSaveDuration,
			m.sessionLoadDuration,
			m.samplerDrawsTotal,
			m.samplerResetsTotal,
			m.generationDuration,
			m.generationErrorsTotal,
		)

		metricsInst = m
	})
	return metricsInst
}

// EnsureRegistered forces collector registration. Safe to call from any
// package at construction time.
func EnsureRegistered() {
	getMetrics()
}

// Handler exposes the metrics registry for embedders.
func Handler() http.Handler {
	getMetrics()
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// SetJournalSessions records the current journal size.
func SetJournalSessions(n int) {
	getMetrics().journalSessions.Set(float64(n))
}

// RecordSessionSave records the duration of one journal append.
func RecordSessionSave(d time.Duration) {
	getMetrics().sessionSaveDuration.Observe(d.Seconds())
}

// RecordSessionLoad records the duration of one journal read.
func RecordSessionLoad(d time.Duration) {
	getMetrics().sessionLoadDuration.Observe(d.Seconds())
}

// RecordDraw counts one served emoji draw.
func RecordDraw() {
	getMetrics().samplerDrawsTotal.Inc()
}

// RecordSamplerReset counts one issued-set reset.
func RecordSamplerReset() {
	getMetrics().samplerResetsTotal.Inc()
}

// RecordGeneration records the duration of one story generation call.
func RecordGeneration(d time.Duration) {
	getMetrics().generationDuration.Observe(d.Seconds())
}

// RecordGenerationError counts one generation failure by reason.
func RecordGenerationError(reason string) {
	getMetrics().generationErrorsTotal.WithLabelValues(reason).Inc()
}
