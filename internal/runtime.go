package internal

import (
	"log/slog"
)

// Runtime holds the per-execution-context settings of the stream engine.
// Every goroutine gets its own runtime, the same way each goroutine is its
// own single-threaded execution context.
type Runtime struct {
	// called with errors that reached a subscription without an error handler
	// if nil, the error is logged and re-panicked
	onUnhandled func(error)

	logger *slog.Logger
}

func NewRuntime() *Runtime {
	return &Runtime{}
}

func (r *Runtime) Logger() *slog.Logger {
	if r.logger == nil {
		return slog.Default()
	}

	return r.logger
}

// SetLogger installs l and returns the logger it replaces, nil for the
// default.
func (r *Runtime) SetLogger(l *slog.Logger) (prev *slog.Logger) {
	prev, r.logger = r.logger, l
	return prev
}

// SetUnhandled installs fn and returns the handler it replaces.
func (r *Runtime) SetUnhandled(fn func(error)) (prev func(error)) {
	prev, r.onUnhandled = r.onUnhandled, fn
	return prev
}

// Unhandled hands err to the installed handler.
// It reports false when no handler is installed, leaving the caller to decide
// how to fail.
func (r *Runtime) Unhandled(err error) bool {
	if r.onUnhandled == nil {
		return false
	}

	r.onUnhandled(err)
	return true
}
