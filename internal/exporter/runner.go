// Package exporter invokes the external `nim jsondoc` tool that extracts
// per-symbol documentation from a source file into JSON.
package exporter

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	rgerrors "git.home.luguber.info/inful/refgen/internal/errors"
	"git.home.luguber.info/inful/refgen/internal/logfields"
	"git.home.luguber.info/inful/refgen/internal/retry"
)

// diagnosticLimit caps how much captured stderr travels with a failure.
const diagnosticLimit = 300

// Runner executes jsondoc exports. Immutable after construction; safe for
// reuse across modules.
type Runner struct {
	binary  string
	timeout time.Duration
	policy  retry.Policy
}

// NewRunner creates a Runner for the given binary. A non-positive timeout
// disables the deadline.
func NewRunner(binary string, timeout time.Duration, policy retry.Policy) *Runner {
	return &Runner{binary: binary, timeout: timeout, policy: policy}
}

// Export runs `<binary> jsondoc --hints:off --out:<outPath> <sourcePath>`.
// Success means exit status zero and the output file existing; any other
// outcome is a module-scoped error carrying a truncated diagnostic.
// Spawn failures are retried under the policy; non-zero exits are not
// (they are deterministic compile errors).
func (r *Runner) Export(ctx context.Context, moduleName, sourcePath, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		return rgerrors.OutputDirError(filepath.Dir(outPath), err)
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = r.runOnce(ctx, moduleName, sourcePath, outPath)
		if lastErr == nil {
			return nil
		}
		if !rgerrors.IsRetryable(lastErr) || attempt >= r.policy.MaxRetries {
			return lastErr
		}
		delay := r.policy.Delay(attempt + 1)
		slog.Warn("Exporter spawn failed, retrying",
			logfields.Module(moduleName),
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			logfields.Error(lastErr))
		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(delay):
		}
	}
}

func (r *Runner) runOnce(ctx context.Context, moduleName, sourcePath, outPath string) error {
	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, r.binary, "jsondoc", "--hints:off", "--out:"+outPath, sourcePath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Timeout expiry also lands here; the context error makes it
			// distinguishable in the diagnostic.
			diag := Truncate(stderr.String(), diagnosticLimit)
			if ctxErr := runCtx.Err(); ctxErr != nil {
				diag = ctxErr.Error() + ": " + diag
			}
			return rgerrors.ExporterFailed(moduleName, diag, err)
		}
		return rgerrors.ExporterSpawnFailed(r.binary, err)
	}

	if _, err := os.Stat(outPath); err != nil {
		return rgerrors.OutputMissing(outPath)
	}
	return nil
}

// Truncate trims whitespace and caps a diagnostic string at limit bytes,
// backing off to the nearest rune boundary so a multi-byte rune is never
// split.
func Truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
