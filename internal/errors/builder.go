package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// internalError is the concrete error produced by the builder. It keeps the
// user-safe hint and reportable details retrievable after arbitrary wrapping.
type internalError struct {
	cause   error
	hint    string
	details map[string]interface{}
}

func (e *internalError) Error() string { return e.cause.Error() }

func (e *internalError) Unwrap() error { return e.cause }

func (e *internalError) Format(s fmt.State, verb rune) {
	errors.FormatError(e.cause, s, verb)
}

// ErrorBuilder assembles an error with hints and details before marking it
// with a sentinel. Mark is terminal and returns the final error.
type ErrorBuilder struct {
	err     error
	hint    string
	details map[string]interface{}
}

// NewError starts a builder from a new error message.
func NewError(message string) *ErrorBuilder {
	return &ErrorBuilder{err: errors.NewWithDepth(1, message)}
}

// NewErrorf starts a builder from a formatted error message.
func NewErrorf(format string, args ...interface{}) *ErrorBuilder {
	return &ErrorBuilder{err: errors.NewWithDepthf(1, format, args...)}
}

// WithError starts a builder wrapping an existing error.
func WithError(err error) *ErrorBuilder {
	if err == nil {
		err = errors.NewWithDepth(1, "unknown error")
	}
	return &ErrorBuilder{err: err}
}

// WithHint attaches a user-safe hint surfaced in API error responses.
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.hint = hint
	return b
}

// WithHintf attaches a formatted user-safe hint.
func (b *ErrorBuilder) WithHintf(format string, args ...interface{}) *ErrorBuilder {
	b.hint = fmt.Sprintf(format, args...)
	return b
}

// WithMessage prepends additional context to the error message.
func (b *ErrorBuilder) WithMessage(message string) *ErrorBuilder {
	b.err = errors.WithMessage(b.err, message)
	return b
}

// WithReportableDetails attaches structured details that are safe to return
// to API callers (ids, field names - never secrets).
func (b *ErrorBuilder) WithReportableDetails(details map[string]interface{}) *ErrorBuilder {
	b.details = details
	return b
}

// Mark finalizes the error with the given sentinel.
func (b *ErrorBuilder) Mark(mark error) error {
	err := &internalError{
		cause:   b.err,
		hint:    b.hint,
		details: b.details,
	}
	return errors.Mark(err, mark)
}

// Hint extracts the innermost user-safe hint from an error chain.
func Hint(err error) string {
	var ie *internalError
	if errors.As(err, &ie) {
		return ie.hint
	}
	return ""
}

// ReportableDetails extracts the reportable details from an error chain.
func ReportableDetails(err error) map[string]interface{} {
	var ie *internalError
	if errors.As(err, &ie) {
		return ie.details
	}
	return nil
}
