// Package errors defines the error taxonomy shared by all goexec components.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolStopped indicates a submission after pool shutdown began, or a
	// queued task that was discarded by a non-draining shutdown.
	ErrPoolStopped = errors.New("pool is stopped")

	// ErrBrokenPromise indicates a promise that was abandoned before a value
	// or error was set. Futures bound to it resolve to this instead of
	// blocking forever.
	ErrBrokenPromise = errors.New("promise abandoned before completion")

	// ErrAlreadySatisfied indicates a second terminal transition on a
	// promise. This is a programming error; the first outcome is kept.
	ErrAlreadySatisfied = errors.New("promise already satisfied")

	// ErrTimeout indicates that a wait on a future or queue timed out.
	ErrTimeout = errors.New("operation timed out")
)

// PanicError wraps a panic recovered from a task body, preserving the
// recovered value and the stack at the point of recovery.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}

// IsShutdown returns true if the error resulted from pool shutdown rather
// than from the task itself.
func IsShutdown(err error) bool {
	return errors.Is(err, ErrPoolStopped)
}

// IsTaskPanic returns true if the error was produced by a recovered panic
// inside a task body.
func IsTaskPanic(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}
