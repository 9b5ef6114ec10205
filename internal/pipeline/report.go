package pipeline

import (
	"time"
)

// ModuleFailure records one module that could not be generated.
type ModuleFailure struct {
	Module string
	Err    error
}

// RunReport accumulates the outcome of one generation run. It is append-only
// while the run is in flight and read-only afterwards.
type RunReport struct {
	RunID     string
	Started   time.Time
	Duration  time.Duration
	Generated []string // module names, in configured order
	Failures  []ModuleFailure
}

// Success reports whether every configured module was generated.
func (r *RunReport) Success() bool {
	return len(r.Failures) == 0
}

// FailedModules returns the failed module names in failure order.
func (r *RunReport) FailedModules() []string {
	names := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		names = append(names, f.Module)
	}
	return names
}

// ExitCode maps the run outcome to a process exit status: 0 only when zero
// modules failed.
func (r *RunReport) ExitCode() int {
	if r.Success() {
		return 0
	}
	return 1
}
