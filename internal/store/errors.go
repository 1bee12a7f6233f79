package store

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a CreateEvent failure.
type ErrorKind int

const (
	// KindUnknown covers connectivity problems, timeouts and anything else
	// the backend could not attribute to the input or a database rule.
	KindUnknown ErrorKind = iota
	// KindValidation means the event input had a missing or mistyped argument.
	KindValidation
	// KindOperational means the database rejected the write with an error code,
	// e.g. a primary key violation on a duplicate event id.
	KindOperational
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindOperational:
		return "operational"
	default:
		return "unknown"
	}
}

// ValidationError reports malformed event input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// OperationalError is a database-level rejection carrying the backend's code.
type OperationalError struct {
	Code string
	Err  error
}

func (e *OperationalError) Error() string {
	if e.Err == nil {
		return "database error " + e.Code
	}
	return fmt.Sprintf("database error %s: %v", e.Code, e.Err)
}

func (e *OperationalError) Unwrap() error { return e.Err }

// Classify returns the kind of err. Wrapped errors are inspected with errors.As.
func Classify(err error) ErrorKind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return KindValidation
	}
	var oe *OperationalError
	if errors.As(err, &oe) {
		return KindOperational
	}
	return KindUnknown
}
