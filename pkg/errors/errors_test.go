package errors

import (
	stderrors "errors"
	"strings"
	"testing"
	"time"
)

type testHandler struct {
	onError func(*VdomError)
	onPanic func(*PanicError)
}

func (h *testHandler) HandleError(err *VdomError) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}

func TestVdomErrorString(t *testing.T) {
	err := &VdomError{
		Op:   "scenario.Load",
		Kind: KindScenario,
		Err:  stderrors.New("missing root"),
	}
	want := "scenario.Load [scenario]: missing root"
	if got := err.Error(); got != want {
		t.Errorf("VdomError.Error() = %q, want %q", got, want)
	}
}

func TestVdomErrorWithSource(t *testing.T) {
	err := &VdomError{
		Op:     "scenario.Load",
		Kind:   KindIO,
		Source: "testdata/app.yaml",
		Err:    stderrors.New("permission denied"),
	}
	want := "source=testdata/app.yaml"
	if got := err.Error(); !strings.Contains(got, want) {
		t.Errorf("error string %q should contain %q", got, want)
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindInvariant, "invariant"},
		{KindConfig, "config"},
		{KindScenario, "scenario"},
		{KindIO, "io"},
		{KindPanic, "panic"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestInvariantErrorString(t *testing.T) {
	err := Invariant("core.ElementTable.TryReclaim", "cannot reclaim element %d", 0)
	want := "invariant violated in core.ElementTable.TryReclaim: cannot reclaim element 0"
	if got := err.Error(); got != want {
		t.Errorf("InvariantError.Error() = %q, want %q", got, want)
	}
	if err.StackTrace == "" {
		t.Error("expected StackTrace to be captured")
	}
}

func TestPanicErrorStringWithOp(t *testing.T) {
	err := &PanicError{
		Op:        "scenario.Run",
		Value:     "test panic",
		Timestamp: time.Now(),
	}
	want := "panic in scenario.Run: test panic"
	if got := err.Error(); got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestReport(t *testing.T) {
	var captured *VdomError
	SetHandler(&testHandler{onError: func(err *VdomError) { captured = err }})
	defer SetHandler(nil)

	Report(&VdomError{Op: "test.op", Kind: KindConfig, Err: stderrors.New("bad")})

	if captured == nil {
		t.Fatal("expected error to be captured")
	}
	if captured.Op != "test.op" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.op")
	}
	if captured.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestRecover(t *testing.T) {
	var captured *PanicError
	SetHandler(&testHandler{onPanic: func(err *PanicError) { captured = err }})
	defer SetHandler(nil)

	func() {
		defer Recover("test.recover")
		panic("intentional test panic")
	}()

	if captured == nil {
		t.Fatal("expected panic to be recovered and captured")
	}
	if captured.Value != "intentional test panic" {
		t.Errorf("Value = %v, want %q", captured.Value, "intentional test panic")
	}
	if captured.Op != "test.recover" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.recover")
	}
}

func TestCaptureInvariant(t *testing.T) {
	var reported *VdomError
	SetHandler(&testHandler{onError: func(err *VdomError) { reported = err }})
	defer SetHandler(nil)

	run := func() (err error) {
		defer Capture("test.capture", &err)
		panic(Invariant("core.Dom.Scope", "scope %d is not allocated", 7))
	}
	err := run()
	if err == nil {
		t.Fatal("expected an error from the recovered invariant")
	}
	if !IsInvariant(err) {
		t.Errorf("IsInvariant(%v) = false, want true", err)
	}
	var inv *InvariantError
	if !stderrors.As(err, &inv) {
		t.Fatalf("expected error to wrap *InvariantError, got %T", err)
	}
	if inv.Op != "core.Dom.Scope" {
		t.Errorf("Op = %q, want %q", inv.Op, "core.Dom.Scope")
	}
	if reported == nil || reported.Kind != KindInvariant {
		t.Errorf("expected a KindInvariant report, got %+v", reported)
	}
}

func TestCapturePlainPanic(t *testing.T) {
	SetHandler(&testHandler{})
	defer SetHandler(nil)

	run := func() (err error) {
		defer Capture("test.capture", &err)
		panic("boom")
	}
	err := run()
	if err == nil {
		t.Fatal("expected an error")
	}
	if IsInvariant(err) {
		t.Error("plain panic should not be classified as an invariant violation")
	}
	var ve *VdomError
	if !stderrors.As(err, &ve) || ve.Kind != KindPanic {
		t.Errorf("expected KindPanic VdomError, got %v", err)
	}
}

func TestCaptureNoPanic(t *testing.T) {
	run := func() (err error) {
		defer Capture("test.capture", &err)
		return nil
	}
	if err := run(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestCaptureStack(t *testing.T) {
	stack := CaptureStack()
	if stack == "" {
		t.Error("expected non-empty stack trace")
	}
	if !strings.Contains(stack, "testing") && !strings.Contains(stack, "runtime") {
		t.Errorf("stack trace should contain testing or runtime frames, got: %s", stack)
	}
}

func TestSetHandlerNil(t *testing.T) {
	SetHandler(nil)
	if DefaultHandler == nil {
		t.Error("SetHandler(nil) should set default LogHandler, not nil")
	}
	if _, ok := DefaultHandler.(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should set LogHandler, got %T", DefaultHandler)
	}
}
