// Package metrics provides observability hooks for generation runs.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection needs no nil checks and costs nothing
// unless a real implementation (Prometheus) is injected.
package metrics

import "time"

// OutcomeLabel enumerates per-module result categories for counters.
type OutcomeLabel string

const (
	OutcomeSuccess OutcomeLabel = "success"
	OutcomeFailed  OutcomeLabel = "failed"
)

// Recorder defines observability hooks for run and module metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc.
type Recorder interface {
	ObserveModuleDuration(module string, d time.Duration, success bool)
	IncModuleOutcome(outcome OutcomeLabel)
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome OutcomeLabel)
	SetModulesConfigured(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveModuleDuration(string, time.Duration, bool) {}
func (NoopRecorder) IncModuleOutcome(OutcomeLabel)                     {}
func (NoopRecorder) ObserveRunDuration(time.Duration)                  {}
func (NoopRecorder) IncRunOutcome(OutcomeLabel)                        {}
func (NoopRecorder) SetModulesConfigured(int)                          {}
