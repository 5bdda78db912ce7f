package errors

import (
	"github.com/go-drift/vdom/pkg/log"
)

// LogHandler is an ErrorHandler that writes through the package logger.
type LogHandler struct {
	// Verbose enables detailed output including stack traces.
	Verbose bool
}

// HandleError logs a VdomError at error level.
func (h *LogHandler) HandleError(err *VdomError) {
	if err == nil {
		return
	}
	args := []any{"op", err.Op, "kind", err.Kind.String(), "error", err.Err}
	if err.Source != "" {
		args = append(args, "source", err.Source)
	}
	if h.Verbose && err.StackTrace != "" {
		args = append(args, "stack", err.StackTrace)
	}
	log.Error("vdom error", args...)
}

// HandlePanic logs a PanicError at error level.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	args := []any{"value", err.Value}
	if err.Op != "" {
		args = append(args, "op", err.Op)
	}
	if h.Verbose && err.StackTrace != "" {
		args = append(args, "stack", err.StackTrace)
	}
	log.Error("vdom panic", args...)
}
