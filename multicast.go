package stream

import (
	"reflect"

	"github.com/AnatoleLucet/stream/internal"
)

type listener[T any] struct {
	send func(T)
	fail func(error)
	done func()
}

// Event is a stateless broadcast point. Values sent to it are delivered to
// whoever is subscribed at that moment and are otherwise lost.
//
// The embedded Stream is the subscriber-facing half; Send, Error and
// Complete are the producer-facing half.
type Event[T any] struct {
	Stream[T]

	// nil once the event has terminated
	listeners *internal.Registry[listener[T]]
}

// NewEvent creates an event with no subscribers.
func NewEvent[T any]() *Event[T] {
	e := &Event[T]{
		listeners: internal.NewRegistry[listener[T]](),
	}

	e.Stream = New(func(send func(T), fail func(error), done func()) func() {
		// a terminated event never fires again
		if e.listeners == nil {
			return nil
		}

		return e.listeners.Add(listener[T]{send, fail, done})
	})

	return e
}

// Send delivers v to every current subscriber, in subscription order.
// It does nothing once the event has terminated.
func (e *Event[T]) Send(v T) {
	if e.listeners == nil {
		return
	}

	e.listeners.Each(func(l listener[T]) {
		l.send(v)
	})
}

// Error delivers err to every current subscriber and terminates the event.
// It does nothing once the event has terminated.
func (e *Event[T]) Error(err error) {
	listeners := e.terminate()
	if listeners == nil {
		return
	}

	listeners.Each(func(l listener[T]) {
		l.fail(err)
	})
}

// Complete notifies every current subscriber of completion and terminates
// the event. It does nothing once the event has terminated.
func (e *Event[T]) Complete() {
	listeners := e.terminate()
	if listeners == nil {
		return
	}

	listeners.Each(func(l listener[T]) {
		l.done()
	})
}

// Closed reports whether the event has terminated.
func (e *Event[T]) Closed() bool {
	return e.listeners == nil
}

// terminate detaches the registry so that nothing sent or subscribed from
// here on, including from the final notifications, reaches it.
func (e *Event[T]) terminate() *internal.Registry[listener[T]] {
	listeners := e.listeners
	e.listeners = nil
	return listeners
}

// Signal is a stateful broadcast point holding a current value.
// Subscribers receive the current value as soon as they subscribe, then
// every change to it.
//
// The embedded Stream is the subscriber-facing half; Set is the
// producer-facing half.
type Signal[T any] struct {
	Stream[T]

	value T
	equal func(a, b T) bool

	listeners *internal.Registry[func(T)]
}

// NewSignal creates a signal holding initial. Values are compared with ==:
// by value for scalars, strings, arrays and structs, by identity for
// pointers, channels and interfaces holding them. Interface values holding
// slices, maps or funcs never compare equal.
func NewSignal[T comparable](initial T) *Signal[T] {
	return NewSignalFunc(initial, equal[T])
}

// equal is == without the runtime panic on interfaces holding uncomparable
// values. Such a comparison only panics when both sides hold the same
// uncomparable dynamic type, so checking a alone is enough.
func equal[T comparable](a, b T) bool {
	if v := reflect.ValueOf(any(a)); v.IsValid() && !v.Comparable() {
		return false
	}

	return a == b
}

// NewSignalFunc creates a signal holding initial that compares values with
// equal.
func NewSignalFunc[T any](initial T, equal func(a, b T) bool) *Signal[T] {
	s := &Signal[T]{
		value:     initial,
		equal:     equal,
		listeners: internal.NewRegistry[func(T)](),
	}

	s.Stream = New(func(send func(T), _ func(error), _ func()) func() {
		send(s.value)

		return s.listeners.Add(send)
	})

	return s
}

// Get returns the current value.
func (s *Signal[T]) Get() T {
	return s.value
}

// Set replaces the current value with v and delivers it to every current
// subscriber. It does nothing if v equals the current value.
func (s *Signal[T]) Set(v T) {
	if s.equal(s.value, v) {
		return
	}

	s.value = v
	s.listeners.Each(func(send func(T)) {
		send(v)
	})
}
