package exporter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"git.home.luguber.info/inful/refgen/internal/errors"
	"git.home.luguber.info/inful/refgen/internal/retry"
)

// stubExporter writes a shell script standing in for the nim binary. The
// real tool's contract is argv-level only, so a script exercises the runner
// completely.
func stubExporter(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-nim")
	content := "#!/bin/sh\n" + script + "\n"
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestExportSuccess(t *testing.T) {
	// Arg 3 is --out:<path>; emit a JSON file there.
	binary := stubExporter(t, `out="${3#--out:}"; echo '{"entries":[]}' > "$out"`)
	outPath := filepath.Join(t.TempDir(), "cache", "m.json")

	runner := NewRunner(binary, 10*time.Second, retry.DefaultPolicy())
	if err := runner.Export(context.Background(), "m", "src/m.nim", outPath); err != nil {
		t.Fatalf("Export error: %v", err)
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Fatalf("output file missing: %v", err)
	}
}

func TestExportNonZeroExit(t *testing.T) {
	binary := stubExporter(t, `echo "Error: undeclared identifier" >&2; exit 1`)
	outPath := filepath.Join(t.TempDir(), "m.json")

	runner := NewRunner(binary, 10*time.Second, retry.DefaultPolicy())
	err := runner.Export(context.Background(), "m", "src/m.nim", outPath)
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if !errors.IsCategory(err, errors.CategoryExporter) {
		t.Errorf("expected exporter category, got %v", err)
	}
	if errors.IsRetryable(err) {
		t.Error("non-zero exits must not be retryable")
	}
	rge := err.(*errors.RefGenError)
	if diag, _ := rge.Context["diagnostic"].(string); !strings.Contains(diag, "undeclared identifier") {
		t.Errorf("stderr diagnostic not captured: %v", rge.Context)
	}
}

func TestExportMissingOutput(t *testing.T) {
	binary := stubExporter(t, `exit 0`)
	outPath := filepath.Join(t.TempDir(), "m.json")

	runner := NewRunner(binary, 10*time.Second, retry.DefaultPolicy())
	err := runner.Export(context.Background(), "m", "src/m.nim", outPath)
	if err == nil {
		t.Fatal("expected error when output file is absent")
	}
	if !strings.Contains(err.Error(), "output file is missing") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExportMissingBinary(t *testing.T) {
	runner := NewRunner(filepath.Join(t.TempDir(), "no-such-nim"), 10*time.Second, retry.DefaultPolicy())
	err := runner.Export(context.Background(), "m", "src/m.nim", filepath.Join(t.TempDir(), "m.json"))
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if !errors.IsRetryable(err) {
		t.Error("spawn failures should be classified retryable")
	}
}

func TestExportTimeout(t *testing.T) {
	binary := stubExporter(t, `sleep 5`)
	outPath := filepath.Join(t.TempDir(), "m.json")

	runner := NewRunner(binary, 50*time.Millisecond, retry.DefaultPolicy())
	start := time.Now()
	err := runner.Export(context.Background(), "m", "src/m.nim", outPath)
	if err == nil {
		t.Fatal("expected error on timeout")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout not enforced, took %v", elapsed)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("  short  ", 300); got != "short" {
		t.Errorf("Truncate() = %q", got)
	}
	long := strings.Repeat("x", 500)
	if got := Truncate(long, 300); len(got) != 300 {
		t.Errorf("Truncate() length = %d, want 300", len(got))
	}

	// A multi-byte rune straddling the limit must be dropped whole, never
	// split into invalid bytes.
	umlauts := strings.Repeat("ä", 300) // 600 bytes
	got := Truncate(umlauts, 301)
	if !utf8.ValidString(got) {
		t.Errorf("Truncate() produced invalid UTF-8: %q", got)
	}
	if len(got) != 300 {
		t.Errorf("Truncate() length = %d, want 300 (backed off to rune boundary)", len(got))
	}
}
