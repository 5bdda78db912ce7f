// Package errors provides structured error handling for the vdom engine.
//
// Two classes of failure exist. Invariant violations (reclaiming the root
// element, indexing a scope or element that is not allocated) are raised as
// panics carrying an [*InvariantError]; continuing past one would corrupt the
// tree, so the engine never recovers them itself. Everything else is an
// ordinary error value, usually a [*VdomError] naming the failed operation.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindInvariant indicates a broken engine invariant that was recovered
	// at a driver boundary.
	KindInvariant
	// KindConfig indicates an invalid or unreadable configuration.
	KindConfig
	// KindScenario indicates a malformed scenario description.
	KindScenario
	// KindIO indicates a read or write failure.
	KindIO
	// KindPanic indicates a recovered panic that was not an invariant violation.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvariant:
		return "invariant"
	case KindConfig:
		return "config"
	case KindScenario:
		return "scenario"
	case KindIO:
		return "io"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// VdomError represents a structured error in the vdom engine or its tooling.
type VdomError struct {
	// Op is the operation that failed (e.g., "scenario.Load").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Source is the file the failure relates to, if any.
	Source string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *VdomError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s [%s] source=%s: %v", e.Op, e.Kind, e.Source, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *VdomError) Unwrap() error {
	return e.Err
}

// InvariantError is the panic payload raised when the engine detects a
// contract breach such as reclaiming element 0.
type InvariantError struct {
	// Op is the operation that detected the violation
	// (e.g., "core.ElementTable.TryReclaim").
	Op string
	// Reason describes the violated invariant.
	Reason string
	// StackTrace contains the call stack at the time of the violation.
	StackTrace string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated in %s: %s", e.Op, e.Reason)
}

// Invariant builds an InvariantError with a captured stack trace. It is meant
// to be passed straight to panic.
func Invariant(op, format string, args ...any) *InvariantError {
	return &InvariantError{
		Op:         op,
		Reason:     fmt.Sprintf(format, args...),
		StackTrace: CaptureStack(),
	}
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "scenario.Run").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorHandler receives errors reported by the engine and its tooling.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *VdomError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
