// Package errors provides a small classified error type used at package
// boundaries so the CLI can pick an exit code and a log level for a failure.
package errors

import (
	"errors"
	"fmt"
)

// Category classifies where an error originated.
type Category string

const (
	CategoryConfig     Category = "config"
	CategoryValidation Category = "validation"
	CategoryFileSystem Category = "filesystem"
	CategoryTemplate   Category = "template"
	CategoryRender     Category = "render"
	CategoryBuild      Category = "build"
	CategoryInternal   Category = "internal"
)

// Severity indicates how critical an error is.
type Severity string

const (
	SeverityFatal   Severity = "fatal"   // Stops the build
	SeverityError   Severity = "error"   // Fails the current step
	SeverityWarning Severity = "warning" // Continues with degraded output
)

// Fields carries structured context for an Error.
type Fields map[string]any

// Error is a classified error with optional cause and context.
type Error struct {
	Category Category `json:"category"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Cause    error    `json:"cause,omitempty"`
	Context  Fields   `json:"context,omitempty"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds a context field and returns the same error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(Fields)
	}
	e.Context[key] = value
	return e
}

// New creates an Error without a cause.
func New(category Category, severity Severity, message string) *Error {
	return &Error{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates an Error around an existing error.
func Wrap(err error, category Category, severity Severity, message string) *Error {
	return &Error{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory reports whether any Error in err's chain has the given category.
func IsCategory(err error, category Category) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Category == category
	}
	return false
}

// GetCategory returns the category of the first Error in err's chain, or
// CategoryInternal for unclassified errors.
func GetCategory(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return CategoryInternal
}
