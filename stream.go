// Package stream is a push-based reactive stream engine.
//
// A Stream is a cold producer: nothing happens until it is subscribed, and
// every subscription is an independent run that ends with an error, a
// completion, or a call to Subscription.Stop. Streams are composed with the
// combinators of this package, broadcast through Event and Signal, and
// synchronised to an external frame clock with Scheduler.Animate.
//
// The engine assumes one cooperative execution context: a stream and
// everything subscribed to it must be driven from a single goroutine. Loop
// provides such a context along with the timer and frame clock the engine
// needs.
package stream

import (
	"iter"
	"slices"
)

// Producer starts one run of a stream. It delivers values through send,
// ends the run with fail or done, and returns the teardown that releases
// whatever the run holds. The teardown may be nil.
type Producer[T any] func(send func(T), fail func(error), done func()) (teardown func())

// Stream is a cold, composable producer of values.
// The zero value never emits and never terminates.
type Stream[T any] struct {
	produce func(sub *Subscription, send func(T), fail func(error), done func()) func()
}

// New creates a stream from a producer.
func New[T any](p Producer[T]) Stream[T] {
	return Stream[T]{
		produce: func(_ *Subscription, send func(T), fail func(error), done func()) func() {
			return p(send, fail, done)
		},
	}
}

// create is New for producers that need to watch their own subscription,
// typically to stop a synchronous loop once the run is torn down.
func create[T any](p func(sub *Subscription, send func(T), fail func(error), done func()) func()) Stream[T] {
	return Stream[T]{produce: p}
}

// Observer receives the notifications of one subscription.
// Any field may be nil. A nil OnError sends errors to the unhandled error
// handler of the calling goroutine (see OnUnhandledError).
type Observer[T any] struct {
	// OnSubscribe receives the subscription before the stream starts, so
	// that handlers can stop it while the stream emits synchronously.
	OnSubscribe func(*Subscription)

	OnValue    func(T)
	OnError    func(error)
	OnComplete func()
}

// Subscription is the handle of one run of a stream.
type Subscription struct {
	// set by Stop
	stopped bool

	// set once an error or completion was delivered
	finished bool

	// the producer's teardown, released at most once
	teardown func()

	// upstream subscriptions stopped along with this one
	linked []*Subscription
}

// Stop tears the subscription down. No value, error or completion is
// delivered after Stop returns. Stop is safe to call more than once.
func (s *Subscription) Stop() {
	if s.stopped {
		return
	}
	s.stopped = true
	s.release()
}

// Closed reports whether the subscription was stopped or has terminated.
func (s *Subscription) Closed() bool {
	return s.stopped || s.finished
}

func (s *Subscription) release() {
	linked := s.linked
	s.linked = nil

	for _, child := range linked {
		child.Stop()
	}

	if teardown := s.teardown; teardown != nil {
		s.teardown = nil
		teardown()
	}
}

// link ties child to s: stopping s stops child, even while s's producer is
// still running and its teardown is not known yet.
func (s *Subscription) link(child *Subscription) {
	if s.stopped {
		child.Stop()
		return
	}

	s.linked = slices.DeleteFunc(s.linked, (*Subscription).Closed)
	s.linked = append(s.linked, child)
}

// pipe runs s under a subscription linked to parent.
func (s Stream[T]) pipe(parent *Subscription, send func(T), fail func(error), done func()) *Subscription {
	sub := &Subscription{}
	parent.link(sub)
	s.start(sub, send, fail, done)
	return sub
}

// start runs s under sub, which the caller may keep and stop before start
// returns. This is the only path into a producer: it gates every delivery on
// the subscription still being open, delivers at most one terminal
// notification, and releases the producer's teardown exactly once, on Stop
// or after the terminal notification.
func (s Stream[T]) start(sub *Subscription, send func(T), fail func(error), done func()) {
	if s.produce == nil || sub.Closed() {
		return
	}

	// the teardown is only known once produce returns; a terminal
	// notification delivered before that defers the release until then
	producing := true

	teardown := s.produce(sub,
		func(v T) {
			if sub.Closed() {
				return
			}
			send(v)
		},
		func(err error) {
			if sub.Closed() {
				return
			}
			sub.finished = true
			fail(err)
			if !producing {
				sub.release()
			}
		},
		func() {
			if sub.Closed() {
				return
			}
			sub.finished = true
			done()
			if !producing {
				sub.release()
			}
		},
	)
	producing = false

	sub.teardown = teardown
	if sub.Closed() {
		sub.release()
	}
}

// Subscribe starts a run of s delivering to o.
func (s Stream[T]) Subscribe(o Observer[T]) *Subscription {
	send, fail, done := o.OnValue, o.OnError, o.OnComplete

	if send == nil {
		send = func(T) {}
	}
	if fail == nil {
		fail = unhandled
	}
	if done == nil {
		done = func() {}
	}

	sub := &Subscription{}
	if o.OnSubscribe != nil {
		o.OnSubscribe(sub)
	}

	s.start(sub, send, fail, done)
	return sub
}

// Each starts a run of s calling fn with every value.
// Errors go to the unhandled error handler.
func (s Stream[T]) Each(fn func(T)) *Subscription {
	return s.Subscribe(Observer[T]{OnValue: fn})
}

// Run starts a run of s ignoring its values.
// Errors go to the unhandled error handler.
func (s Stream[T]) Run() *Subscription {
	return s.Subscribe(Observer[T]{})
}

// Empty returns a stream that completes as soon as it is subscribed.
func Empty[T any]() Stream[T] {
	return New(func(_ func(T), _ func(error), done func()) func() {
		done()
		return nil
	})
}

// Never returns a stream that never emits and never terminates.
func Never[T any]() Stream[T] {
	return New(func(func(T), func(error), func()) func() {
		return nil
	})
}

// FromSeq returns a stream that emits the values of values synchronously on
// subscription, then completes. Iteration stops as soon as the subscription
// is stopped.
func FromSeq[T any](values iter.Seq[T]) Stream[T] {
	return create(func(sub *Subscription, send func(T), _ func(error), done func()) func() {
		for v := range values {
			send(v)
			if sub.Closed() {
				return nil
			}
		}

		done()
		return nil
	})
}

// Of returns a stream that emits values synchronously, then completes.
func Of[T any](values ...T) Stream[T] {
	return FromSeq(func(yield func(T) bool) {
		for _, v := range values {
			if !yield(v) {
				return
			}
		}
	})
}
