package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	moduleDuration    *prom.HistogramVec
	moduleOutcomes    *prom.CounterVec
	runDuration       prom.Histogram
	runOutcomes       *prom.CounterVec
	modulesConfigured prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		moduleDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "refgen",
			Name:      "module_duration_seconds",
			Help:      "Duration of per-module export+assembly",
			Buckets:   prom.DefBuckets,
		}, []string{"module", "result"}),
		moduleOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "refgen",
			Name:      "module_outcomes_total",
			Help:      "Module results by outcome",
		}, []string{"outcome"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "refgen",
			Name:      "run_duration_seconds",
			Help:      "Total generation run duration",
			Buckets:   prom.DefBuckets,
		}),
		runOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "refgen",
			Name:      "run_outcomes_total",
			Help:      "Run outcomes by final status",
		}, []string{"outcome"}),
		modulesConfigured: prom.NewGauge(prom.GaugeOpts{
			Namespace: "refgen",
			Name:      "modules_configured",
			Help:      "Number of modules in the active configuration",
		}),
	}
	reg.MustRegister(pr.moduleDuration, pr.moduleOutcomes, pr.runDuration, pr.runOutcomes, pr.modulesConfigured)
	return pr
}

func (p *PrometheusRecorder) ObserveModuleDuration(module string, d time.Duration, success bool) {
	if p == nil || p.moduleDuration == nil {
		return
	}
	result := "failed"
	if success {
		result = "success"
	}
	p.moduleDuration.WithLabelValues(module, result).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncModuleOutcome(outcome OutcomeLabel) {
	if p == nil || p.moduleOutcomes == nil {
		return
	}
	p.moduleOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(outcome OutcomeLabel) {
	if p == nil || p.runOutcomes == nil {
		return
	}
	p.runOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetModulesConfigured(n int) {
	if p == nil || p.modulesConfigured == nil {
		return
	}
	p.modulesConfigured.Set(float64(n))
}

// HTTPHandler returns an http.Handler that serves Prometheus metrics for the provided registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
