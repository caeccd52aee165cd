package reactor

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotActive reports an operation on a descriptor or timer that has no
// active entry. It signals a programming mistake and is returned directly
// from the call site, never through the error sink.
var ErrNotActive = errors.New("reactor: not active")

// InitError is a fatal failure to create the kernel readiness context at
// construction time. A reactor is never returned alongside one.
type InitError struct {
	Cause error
}

func (e *InitError) Error() string { return "reactor: init: " + e.Cause.Error() }

func (e *InitError) Unwrap() error { return e.Cause }

// SyscallError is a non-fatal kernel call failure reported through the
// error sink. The operation it interrupted is skipped for that tick.
type SyscallError struct {
	Op    string
	Fd    int // -1 when the failure is not tied to one descriptor
	Cause error
}

func (e *SyscallError) Error() string {
	if e.Fd >= 0 {
		return fmt.Sprintf("reactor: %s fd=%d: %v", e.Op, e.Fd, e.Cause)
	}
	return fmt.Sprintf("reactor: %s: %v", e.Op, e.Cause)
}

func (e *SyscallError) Unwrap() error { return e.Cause }

// CallbackError is a recovered callback panic reported through the error
// sink, tagged with the dispatch origin.
type CallbackError struct {
	Kind  string
	Value any
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("reactor: %s: %v", e.Kind, e.Value)
}

type MultiError []error

func (m MultiError) Error() string {
	var b strings.Builder
	b.WriteString("multiple errors:")
	for _, err := range m {
		b.WriteString("\n- " + err.Error())
	}
	return b.String()
}
