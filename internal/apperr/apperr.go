package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a business-rule failure so handlers can map it to an
// HTTP status without inspecting message text.
type Kind int

const (
	KindInvalidArgument Kind = iota
	KindForbidden
	KindNotFound
	KindConflict
	KindUnavailable
)

// Error is a structured business failure. Fields carries optional
// per-field validation detail.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string { return e.Message }

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func WithFields(kind Kind, message string, fields map[string]string) *Error {
	return &Error{Kind: kind, Message: message, Fields: fields}
}

// From extracts an *Error from err, or nil if err is not one.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
