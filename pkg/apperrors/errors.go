// Package apperrors defines the error taxonomy shared across the service.
// Every failure that crosses a component boundary is classified so callers
// can decide whether to retry, rephrase, or surface raw detail.
package apperrors

import (
	"errors"
	"fmt"
)

// Class identifies a failure category.
type Class string

const (
	// ClassParse - uploaded content cannot be decoded/parsed as delimited text.
	ClassParse Class = "parse_error"
	// ClassValidation - a caller-supplied override does not match the inferred schema.
	ClassValidation Class = "validation_error"
	// ClassRejectedQuery - generated SQL cannot be safely reduced to a SELECT statement.
	ClassRejectedQuery Class = "rejected_query"
	// ClassGeneration - the text generator is unreachable, timed out, or returned nothing.
	ClassGeneration Class = "generation_failure"
	// ClassExecution - the sink rejected the normalized SQL.
	ClassExecution Class = "execution_error"
	// ClassQueryTimeout - the sink-side statement timeout fired.
	ClassQueryTimeout Class = "query_timeout"
)

// GenerationReason subdivides ClassGeneration failures.
type GenerationReason string

const (
	// ReasonConnection - service unreachable, likely permanent until an operator intervenes.
	ReasonConnection GenerationReason = "connection"
	// ReasonTimeout - transient, the caller may retry with a simpler question.
	ReasonTimeout GenerationReason = "timeout"
	// ReasonEmptyCompletion - model/prompt mismatch, check model configuration.
	ReasonEmptyCompletion GenerationReason = "empty_completion"
)

// Error is a classified error carrying an optional underlying cause.
type Error struct {
	Class   Class
	Reason  GenerationReason // Only set for ClassGeneration
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Class, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Class, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable satisfies the retry package's RetryableError interface. Only
// generator timeouts are worth retrying: connection failures persist until an
// operator intervenes, and everything else is a caller problem.
func (e *Error) IsRetryable() bool {
	return e.Class == ClassGeneration && e.Reason == ReasonTimeout
}

// New creates a classified error without a cause.
func New(class Class, format string, args ...any) *Error {
	return &Error{Class: class, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a classified error wrapping a cause.
func Wrap(class Class, cause error, format string, args ...any) *Error {
	return &Error{Class: class, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Generation creates a ClassGeneration error with a reason.
func Generation(reason GenerationReason, cause error, format string, args ...any) *Error {
	return &Error{
		Class:   ClassGeneration,
		Reason:  reason,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// ClassOf extracts the Class from an error chain.
// Unclassified errors report ClassExecution only when they came from the
// sink; anything else is returned as an empty Class.
func ClassOf(err error) Class {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Class
	}
	return ""
}

// IsClass reports whether err carries the given class.
func IsClass(err error, class Class) bool {
	return ClassOf(err) == class
}

// ReasonOf extracts the GenerationReason from an error chain, if any.
func ReasonOf(err error) GenerationReason {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Reason
	}
	return ""
}
