package models

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("ineligible state")
	ErrUpstream         = errors.New("upstream call failed")
	ErrMalformedRequest = errors.New("malformed request")
)

// Error carries a user-facing message, the kind used for status mapping and an optional cause.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Cause }

// Details is the cause message, empty when there is none
func (e *Error) Details() string {
	if e.Cause == nil {
		return ""
	}
	return e.Cause.Error()
}

func Errorf(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind error, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}
