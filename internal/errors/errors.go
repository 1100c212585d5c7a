// Package errors provides the error handling backbone for the service.
// Errors are built with a fluent builder and marked with a sentinel that
// drives both caller branching (errors.Is) and HTTP status mapping.
package errors

import (
	"github.com/cockroachdb/errors"
)

// Sentinel errors used as marks. Callers must branch on these via the Is*
// helpers, never on error strings.
var (
	ErrValidation           = errors.New("validation error")
	ErrNotFound             = errors.New("item not found")
	ErrAlreadyExists        = errors.New("item already exists")
	ErrInvalidOperation     = errors.New("invalid operation")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrDatabase             = errors.New("database error")
	ErrHTTPClient           = errors.New("http client error")
	ErrInternal             = errors.New("internal error")
	ErrNoActiveSubscription = errors.New("no active subscription")
	ErrAlreadyUsedTrial     = errors.New("free trial already used")
)

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

func IsDatabase(err error) bool {
	return errors.Is(err, ErrDatabase)
}

func IsNoActiveSubscription(err error) bool {
	return errors.Is(err, ErrNoActiveSubscription)
}

func IsAlreadyUsedTrial(err error) bool {
	return errors.Is(err, ErrAlreadyUsedTrial)
}

// Is and As are re-exported so callers do not need a second errors import.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target interface{}) bool { return errors.As(err, target) }

func New(message string) error { return errors.NewWithDepth(1, message) }
