package runtimebridge

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned when no connection is available and connecting failed.
	ErrNotConnected = errors.New("not connected to runtime")
	// ErrTimeout is returned when a call's deadline elapses without a response.
	ErrTimeout = errors.New("request timeout")
	// ErrRemote is returned when the runtime answered with an error payload.
	ErrRemote = errors.New("runtime error")
	// ErrDecode marks inbound frames that could not be decoded. It is only logged.
	ErrDecode = errors.New("decode error")
	// ErrDuplicateToken reports a correlation token collision.
	ErrDuplicateToken = errors.New("duplicate correlation token")
)

// CallError describes a failed Call. Kind is one of the sentinel errors above,
// so errors.Is(err, ErrTimeout) and friends work on the returned error.
type CallError struct {
	Kind    error
	Method  string
	Message string
	Err     error
}

func (e *CallError) Error() string {
	switch e.Kind {
	case ErrTimeout:
		return fmt.Sprintf("request timeout: %s", e.Method)
	case ErrRemote:
		return fmt.Sprintf("runtime error in %s: %s", e.Method, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Method, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Method, e.Kind)
}

func (e *CallError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
