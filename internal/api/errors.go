package api

import (
	"errors"
	"fmt"
)

// Sentinels for the three ways a repository call can fail. Match them with
// errors.Is against any error returned by Client.
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrUnavailable      = errors.New("task repository unavailable")
	ErrRejected         = errors.New("request rejected")
)

// Kind classifies an Error.
type Kind int

const (
	KindUnavailable Kind = iota
	KindNotAuthenticated
	KindRejected
)

func (k Kind) String() string {
	switch k {
	case KindNotAuthenticated:
		return "not authenticated"
	case KindRejected:
		return "rejected"
	}
	return "unavailable"
}

func (k Kind) sentinel() error {
	switch k {
	case KindNotAuthenticated:
		return ErrNotAuthenticated
	case KindRejected:
		return ErrRejected
	}
	return ErrUnavailable
}

// Error is returned by every Client operation.
type Error struct {
	Op      string // e.g. "create task"
	Kind    Kind
	Status  int    // HTTP status, 0 when no response arrived
	Message string // the repository's human-readable reason, if any
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, msg, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// Reason is the text to show a user for err.
func Reason(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	switch {
	case errors.Is(err, ErrNotAuthenticated):
		return "please log in"
	case errors.Is(err, ErrUnavailable):
		return "task repository unavailable"
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
