package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrModelUnavailable = errors.New("model unavailable")
	ErrInternal         = errors.New("internal error")
	ErrRateLimited      = errors.New("rate limited")
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// KindError ties a failure to the operation that saw it and an API error kind.
type KindError struct {
	Op   string
	Kind error
	Err  error
}

func (e *KindError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes the kind and the cause to errors.Is/As.
func (e *KindError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// WrapKind annotates err with op and kind.
func WrapKind(op string, kind, err error) error {
	return &KindError{Op: op, Kind: kind, Err: err}
}

// NewKind reports a kind with no underlying cause.
func NewKind(op string, kind error) error {
	return &KindError{Op: op, Kind: kind}
}
