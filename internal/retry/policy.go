// Package retry provides a small backoff policy for transient failures.
package retry

import (
	"strings"
	"time"
)

// BackoffMode selects how delays grow between retries.
type BackoffMode string

const (
	BackoffFixed       BackoffMode = "fixed"
	BackoffLinear      BackoffMode = "linear"
	BackoffExponential BackoffMode = "exponential"
)

// NormalizeBackoffMode maps a raw config string to a BackoffMode, falling
// back to fixed.
func NormalizeBackoffMode(raw string) BackoffMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "linear":
		return BackoffLinear
	case "exponential":
		return BackoffExponential
	default:
		return BackoffFixed
	}
}

// Policy encapsulates retry/backoff settings for transient failures.
// It is immutable after construction.
type Policy struct {
	Mode       BackoffMode
	Initial    time.Duration // base delay
	Max        time.Duration // cap for growth
	MaxRetries int           // maximum retry attempts after the first failure
}

// DefaultPolicy returns the default policy: no retries (exporter failures
// are usually deterministic), fixed 1s/30s shape for when retries are
// enabled.
func DefaultPolicy() Policy {
	return Policy{Mode: BackoffFixed, Initial: time.Second, Max: 30 * time.Second, MaxRetries: 0}
}

// NewPolicy builds a policy from raw config fields; zero/invalid values fall back to defaults.
func NewPolicy(mode BackoffMode, initial, maxDuration time.Duration, maxRetries int) Policy {
	p := DefaultPolicy()
	if maxRetries >= 0 {
		p.MaxRetries = maxRetries
	}
	if initial > 0 {
		p.Initial = initial
	}
	if maxDuration > 0 {
		p.Max = maxDuration
	}
	switch mode {
	case BackoffFixed, BackoffLinear, BackoffExponential:
		p.Mode = mode
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// Delay returns the backoff delay for the given retry attempt number (1-based: first retry => 1).
func (p Policy) Delay(retryCount int) time.Duration {
	if retryCount <= 0 {
		return 0
	}
	var d time.Duration
	switch p.Mode {
	case BackoffLinear:
		d = p.Initial * time.Duration(retryCount)
	case BackoffExponential:
		d = p.Initial * (1 << (retryCount - 1))
	default:
		d = p.Initial
	}
	if d > p.Max {
		d = p.Max
	}
	return d
}
