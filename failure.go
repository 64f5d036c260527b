package stream

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/AnatoleLucet/stream/internal"
)

var (
	// ErrLoopRunning is returned by Loop.Run when the loop is already running.
	ErrLoopRunning = errors.New("stream: loop is already running")

	// ErrLoopClosed is returned by Loop.Post once the loop has stopped.
	ErrLoopClosed = errors.New("stream: loop is closed")
)

// UnhandledError is the panic value raised when a stream error reaches a
// subscription that has no error handler and no unhandled error handler is
// installed.
type UnhandledError struct {
	Err error
}

func (e *UnhandledError) Error() string {
	return fmt.Sprintf("stream: unhandled error: %v", e.Err)
}

func (e *UnhandledError) Unwrap() error {
	return e.Err
}

// OnUnhandledError installs fn as the handler for errors that reach a
// subscription without an error handler on the calling goroutine.
// Passing nil restores the default, which logs the error and panics with an
// *UnhandledError.
func OnUnhandledError(fn func(error)) {
	internal.GetRuntime().SetUnhandled(fn)
}

// SetLogger sets the logger used by the engine on the calling goroutine.
// Passing nil restores slog.Default().
func SetLogger(l *slog.Logger) {
	internal.GetRuntime().SetLogger(l)
}

func unhandled(err error) {
	r := internal.GetRuntime()
	if r.Unhandled(err) {
		return
	}

	r.Logger().Error("unhandled stream error", "error", err)
	panic(&UnhandledError{Err: err})
}
