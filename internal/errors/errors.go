// Package errors provides a lightweight structured error type (RefGenError)
// for category-based classification in the generation pipeline and CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a refgen error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// External system integration errors
	CategoryExporter ErrorCategory = "exporter"

	// Generation and processing errors
	CategoryParse      ErrorCategory = "parse"
	CategoryAssembly   ErrorCategory = "assembly"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Runtime and infrastructure errors
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops the whole run
	SeverityError   ErrorSeverity = "error"   // Module-scoped, run continues
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded output
)

// RefGenError is a structured error with category, retryability, and context
type RefGenError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for RefGenError
type ContextFields map[string]any

// Error implements the error interface
func (e *RefGenError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *RefGenError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *RefGenError) WithContext(key string, value any) *RefGenError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new RefGenError
func New(category ErrorCategory, severity ErrorSeverity, message string) *RefGenError {
	return &RefGenError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new RefGenError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *RefGenError {
	return &RefGenError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// WrapRetryable creates a new retryable RefGenError that wraps an existing error
func WrapRetryable(err error, category ErrorCategory, severity ErrorSeverity, message string) *RefGenError {
	return &RefGenError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: true,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if rge, ok := err.(*RefGenError); ok {
		return rge.Category == category
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if rge, ok := err.(*RefGenError); ok {
		return rge.Retryable
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a RefGenError
func GetCategory(err error) ErrorCategory {
	if rge, ok := err.(*RefGenError); ok {
		return rge.Category
	}
	return CategoryInternal
}
