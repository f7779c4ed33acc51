package connection

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeConnectionExists  ErrorCode = "CONNECTION_EXISTS"
	CodeNotFound          ErrorCode = "CONNECTION_NOT_FOUND"
	CodeNotAuthorized     ErrorCode = "NOT_AUTHORIZED"
	CodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	CodeInvalidRequest    ErrorCode = "INVALID_REQUEST"
)

// Error is an expected, caller-distinguishable failure of a connection
// operation. Existing is set for CodeConnectionExists.
type Error struct {
	Code     ErrorCode   `json:"code"`
	Message  string      `json:"message"`
	Existing *Connection `json:"existing,omitempty"`
	Cause    error       `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error with the same code, so errors.Is(err, ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "connection not found"}
	ErrSelfConnection     = &Error{Code: CodeInvalidRequest, Message: "cannot connect to yourself"}
	ErrMissingParticipant = &Error{Code: CodeInvalidRequest, Message: "sender and receiver are required"}
	ErrNotReceiver        = &Error{Code: CodeNotAuthorized, Message: "only the receiver can respond to this request"}
	ErrNotParticipant     = &Error{Code: CodeNotAuthorized, Message: "not a participant of this connection"}
	ErrConnectionPresent  = &Error{Code: CodeConnectionExists, Message: "connection already exists"}
)

// NewExistsError reports a duplicate pair and carries the conflicting record.
func NewExistsError(existing *Connection) error {
	return &Error{Code: CodeConnectionExists, Message: "connection already exists", Existing: existing}
}

func NewInvalidTransitionError(from, to Status) error {
	return &Error{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("cannot move connection from %s to %s", from, to),
	}
}

// CodeOf returns the domain code of err, or "" when err is not a domain error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func HasCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// ExistingOf returns the conflicting record attached to a CONNECTION_EXISTS error.
func ExistingOf(err error) *Connection {
	var e *Error
	if errors.As(err, &e) {
		return e.Existing
	}
	return nil
}
