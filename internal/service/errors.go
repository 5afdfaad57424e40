package service

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services. Handlers map these onto HTTP
// statuses with errors.Is / errors.As.
var (
	// ErrNotFound means a referenced bug, test case, plan or user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate means an insert would collide with an existing record.
	ErrDuplicate = errors.New("already exists")
	// ErrForbidden means the caller is authenticated but not allowed to touch
	// this record (e.g. a plan they are not assigned to).
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials covers failed logins without leaking which half
	// of the pair was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ValidationError reports malformed or missing caller input. Always
// recoverable by correcting the request.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
