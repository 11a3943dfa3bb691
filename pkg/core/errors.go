package core

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error surfaced by the orchestrator matches exactly one
// of these with errors.Is.
var (
	ErrUnsupportedBackend = errors.New("unsupported backend")
	ErrConnectFailed      = errors.New("connect failed")
	ErrQueryFailed        = errors.New("query execution failed")
	ErrUndecodableColumn  = errors.New("undecodable column")
	ErrIO                 = errors.New("i/o failure")
)

// UnsupportedBackendError is returned when a URI scheme matches no dialect,
// or matches a dialect with no registered adapter.
type UnsupportedBackendError struct {
	Target    string
	Scheme    string
	Supported []string
}

func (e *UnsupportedBackendError) Error() string {
	var b strings.Builder
	if e.Target != "" {
		fmt.Fprintf(&b, "%s: ", e.Target)
	}
	fmt.Fprintf(&b, "unsupported backend %q (supported: %s)", e.Scheme, strings.Join(e.Supported, ", "))
	return b.String()
}

// Is reports whether target is ErrUnsupportedBackend.
func (e *UnsupportedBackendError) Is(target error) bool {
	return target == ErrUnsupportedBackend
}

// UndecodableColumnError is returned when a non-null cell cannot be
// represented by any decoder of the dialect, including the text fallback.
type UndecodableColumnError struct {
	Column string
	Type   string
}

func (e *UndecodableColumnError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("cannot decode column %q", e.Column)
	}
	return fmt.Sprintf("cannot decode column %q of type %s", e.Column, e.Type)
}

// Is reports whether target is ErrUndecodableColumn.
func (e *UndecodableColumnError) Is(target error) bool {
	return target == ErrUndecodableColumn
}

// TargetError attributes a terminal failure to one target.
type TargetError struct {
	Target string
	Kind   error
	Err    error
}

// NewTargetError wraps err as a failure of kind for the named target.
func NewTargetError(target string, kind, err error) *TargetError {
	return &TargetError{Target: target, Kind: kind, Err: err}
}

func (e *TargetError) Error() string {
	switch e.Kind {
	case ErrConnectFailed:
		return fmt.Sprintf("%s: failed to connect: %v", e.Target, e.Err)
	case ErrIO:
		return fmt.Sprintf("%s: failed to write output: %v", e.Target, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Target, e.Err)
	}
}

// Unwrap exposes the underlying driver error.
func (e *TargetError) Unwrap() error {
	return e.Err
}

// Is matches the error kind in addition to the wrapped chain.
func (e *TargetError) Is(target error) bool {
	return target == e.Kind
}
