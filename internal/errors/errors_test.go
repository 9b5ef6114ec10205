package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestRefGenError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *RefGenError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(CategoryConfig, SeverityFatal, "configuration invalid"),
			expected: "config (fatal): configuration invalid",
		},
		{
			name:     "error with cause",
			err:      Wrap(fmt.Errorf("file not found"), CategoryParse, SeverityError, "failed to load bundle"),
			expected: "parse (error): failed to load bundle: file not found",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := test.err.Error()
			if result != test.expected {
				t.Errorf("Error() = %q, want %q", result, test.expected)
			}
		})
	}
}

func TestRefGenError_WithContext(t *testing.T) {
	err := ExporterFailed("definitions", "compile error", fmt.Errorf("exit status 1"))

	if err.Context == nil {
		t.Fatal("Context should not be nil")
	}
	if err.Context["module"] != "definitions" {
		t.Errorf("Context[module] = %v, want definitions", err.Context["module"])
	}
	if err.Context["diagnostic"] != "compile error" {
		t.Errorf("Context[diagnostic] = %v, want compile error", err.Context["diagnostic"])
	}
}

func TestRefGenError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := MalformedInput("/tmp/m.json", cause)

	if !stdErrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestIsCategory(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category ErrorCategory
		expected bool
	}{
		{"exporter error matches", ExporterFailed("io", "", nil), CategoryExporter, true},
		{"parse error mismatch", MalformedInput("x.json", nil), CategoryExporter, false},
		{"not found is filesystem", InputNotFound("x.json"), CategoryFileSystem, true},
		{"standard error never matches", fmt.Errorf("plain"), CategoryInternal, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsCategory(test.err, test.category); got != test.expected {
				t.Errorf("IsCategory() = %v, want %v", got, test.expected)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(ExporterFailed("io", "", nil)) {
		t.Error("non-zero exporter exits must not be retryable")
	}
	if !IsRetryable(ExporterSpawnFailed("nim", fmt.Errorf("fork failed"))) {
		t.Error("spawn failures should be retryable")
	}
	if IsRetryable(fmt.Errorf("plain")) {
		t.Error("plain errors are never retryable")
	}
}

func TestGetCategory(t *testing.T) {
	if got := GetCategory(OutputMissing("/tmp/out.json")); got != CategoryExporter {
		t.Errorf("GetCategory() = %v, want %v", got, CategoryExporter)
	}
	if got := GetCategory(fmt.Errorf("plain")); got != CategoryInternal {
		t.Errorf("GetCategory() = %v, want %v", got, CategoryInternal)
	}
}
