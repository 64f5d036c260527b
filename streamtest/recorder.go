package streamtest

import (
	"fmt"

	"github.com/AnatoleLucet/stream"
)

// Recorder records the notifications of a subscription.
type Recorder[T any] struct {
	Values    []T
	Errors    []error
	Completed int

	// Log holds every notification in arrival order:
	// "value <v>", "error <err>" or "complete".
	Log []string
}

// NewRecorder constructs a Recorder.
func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{}
}

// Observer returns an observer appending to r.
func (r *Recorder[T]) Observer() stream.Observer[T] {
	return stream.Observer[T]{
		OnValue: func(v T) {
			r.Values = append(r.Values, v)
			r.Log = append(r.Log, fmt.Sprintf("value %v", v))
		},
		OnError: func(err error) {
			r.Errors = append(r.Errors, err)
			r.Log = append(r.Log, fmt.Sprintf("error %v", err))
		},
		OnComplete: func() {
			r.Completed++
			r.Log = append(r.Log, "complete")
		},
	}
}

// Record subscribes r to s.
func Record[T any](s stream.Stream[T]) (*Recorder[T], *stream.Subscription) {
	r := NewRecorder[T]()
	return r, s.Subscribe(r.Observer())
}
