package services

import (
	"errors"
	"fmt"
)

// ErrorClass partitions service failures by how the pipeline recovers.
type ErrorClass string

const (
	// ClassTransient marks capacity/overload failures worth retrying.
	ClassTransient ErrorClass = "transient"
	// ClassAuth marks credential failures; further calls would fail the
	// same way, so batch work must abort rather than retry.
	ClassAuth ErrorClass = "auth"
	// ClassPermanent marks failures that no retry will fix.
	ClassPermanent ErrorClass = "permanent"
)

// Error wraps a service failure with its recovery class.
type Error struct {
	Op    string
	Class ErrorClass
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s failure", e.Op, e.Class)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified service error.
func NewError(op string, class ErrorClass, err error) *Error {
	return &Error{Op: op, Class: class, Err: err}
}

// ClassOf returns the error class, defaulting to permanent for
// unclassified errors.
func ClassOf(err error) ErrorClass {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Class
	}
	return ClassPermanent
}

// IsTransient reports whether err is a transient capacity failure.
func IsTransient(err error) bool { return ClassOf(err) == ClassTransient }

// IsAuth reports whether err is a credential failure.
func IsAuth(err error) bool { return ClassOf(err) == ClassAuth }
