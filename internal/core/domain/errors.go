package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the services wraps exactly one of them.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrNoContent    = errors.New("no content")
)

// Error is a rejection carrying the message shown to the client.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func InvalidInput(msg string) error { return &Error{Kind: ErrInvalidInput, Message: msg} }

func NotFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

func Conflict(msg string) error { return &Error{Kind: ErrConflict, Message: msg} }

func NoContent(msg string) error { return &Error{Kind: ErrNoContent, Message: msg} }

// Fields guarded by a unique index.
const (
	FieldUsername = "username"
	FieldTitle    = "title"
)

// UniqueViolation is returned by repositories when a write is rejected
// because the value of a uniquely indexed field already exists.
type UniqueViolation struct {
	Field string
	Value string
}

func (e *UniqueViolation) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("duplicate value for %s", e.Field)
	}
	return fmt.Sprintf("duplicate value %q for %s", e.Value, e.Field)
}

func (e *UniqueViolation) Unwrap() error { return ErrConflict }
