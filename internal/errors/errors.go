package errors

import (
	"errors"
	"fmt"
)

// Common error types for the catalog client
var (
	// Session errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotLoggedIn  = errors.New("not logged in")

	// Submission errors
	ErrAlreadyRegistered = errors.New("resource already registered")
	ErrSubmissionMissing = errors.New("submission not found")

	// Remote errors
	ErrRemote    = errors.New("remote request failed")
	ErrTransport = errors.New("transport failure")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
