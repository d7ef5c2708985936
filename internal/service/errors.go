package service

import (
	"errors"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrBadPassword  = errors.New("wrong password")
	ErrNotAuthor    = errors.New("not the author")
)

// Error carries the client-facing message for one of the sentinel errors above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

func fail(kind error, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// Message returns the client-facing message of err, or "" when it has none.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}
