package errors

import (
	stderrors "errors"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	// DefaultHandler is the global error handler.
	// It defaults to LogHandler with verbose=false.
	DefaultHandler ErrorHandler = &LogHandler{}

	handlerMu sync.RWMutex
)

// SetHandler configures the global error handler.
// Pass nil to restore the default LogHandler.
func SetHandler(h ErrorHandler) {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	if h == nil {
		DefaultHandler = &LogHandler{}
	} else {
		DefaultHandler = h
	}
}

func getHandler() ErrorHandler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return DefaultHandler
}

// Report sends an error to the global handler.
// If err.Timestamp is zero, it is set to the current time.
func Report(err *VdomError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	if h := getHandler(); h != nil {
		h.HandleError(err)
	}
}

// ReportPanic sends a panic error to the global handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	if h := getHandler(); h != nil {
		h.HandlePanic(err)
	}
}

// Recover is a helper for deferred panic recovery.
// Usage: defer errors.Recover("operation.name")
func Recover(op string) {
	if r := recover(); r != nil {
		ReportPanic(&PanicError{
			Op:         op,
			Value:      r,
			StackTrace: CaptureStack(),
			Timestamp:  time.Now(),
		})
	}
}

// Capture converts a panic into an error stored in *errp. Invariant
// violations become a VdomError of KindInvariant carrying the stack of the
// original fault; other panic values become KindPanic. The result is also
// reported to the global handler.
//
// Capture is for driver boundaries only (a CLI command, a test harness).
// Engine code never recovers its own invariant violations.
//
// Usage: defer errors.Capture("scenario.Run", &err)
func Capture(op string, errp *error) {
	r := recover()
	if r == nil {
		return
	}
	out := &VdomError{
		Op:        op,
		Kind:      KindPanic,
		Timestamp: time.Now(),
	}
	var inv *InvariantError
	switch v := r.(type) {
	case error:
		out.Err = v
		if stderrors.As(v, &inv) {
			out.Kind = KindInvariant
			out.StackTrace = inv.StackTrace
		}
	default:
		out.Err = &PanicError{Op: op, Value: v}
	}
	if out.StackTrace == "" {
		out.StackTrace = CaptureStack()
	}
	Report(out)
	if errp != nil {
		*errp = out
	}
}

// IsInvariant reports whether err wraps an invariant violation.
func IsInvariant(err error) bool {
	var inv *InvariantError
	if stderrors.As(err, &inv) {
		return true
	}
	var ve *VdomError
	return stderrors.As(err, &ve) && ve.Kind == KindInvariant
}

// CaptureStack returns the current call stack as a string.
// It skips the first few frames to exclude the CaptureStack call itself.
func CaptureStack() string {
	const maxDepth = 32
	var pcs [maxDepth]uintptr
	n := runtime.Callers(3, pcs[:])
	if n == 0 {
		return ""
	}

	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		frame, more := frames.Next()
		sb.WriteString(frame.Function)
		sb.WriteString("\n\t")
		sb.WriteString(frame.File)
		sb.WriteString(":")
		sb.WriteString(strconv.Itoa(frame.Line))
		sb.WriteString("\n")
		if !more {
			break
		}
	}
	return sb.String()
}
