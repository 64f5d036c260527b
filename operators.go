package stream

import "time"

// Pair holds two values.
type Pair[A, B any] struct {
	First  A
	Second B
}

// KeepMap calls fn with every value of s and forwards the results for which
// fn reports ok.
func KeepMap[T, U any](s Stream[T], fn func(T) (U, bool)) Stream[U] {
	return create(func(sub *Subscription, send func(U), fail func(error), done func()) func() {
		return s.pipe(sub, func(v T) {
			if u, ok := fn(v); ok {
				send(u)
			}
		}, fail, done).Stop
	})
}

// Map transforms every value of s with fn.
func Map[T, U any](s Stream[T], fn func(T) U) Stream[U] {
	return KeepMap(s, func(v T) (U, bool) {
		return fn(v), true
	})
}

// Keep forwards the values of s for which fn returns true.
func Keep[T any](s Stream[T], fn func(T) bool) Stream[T] {
	return KeepMap(s, func(v T) (T, bool) {
		return v, fn(v)
	})
}

// Fold accumulates every value of s into init with fn and emits the final
// accumulator once s completes. Nothing is emitted before that.
func Fold[T, A any](s Stream[T], init A, fn func(A, T) A) Stream[A] {
	return create(func(sub *Subscription, send func(A), fail func(error), done func()) func() {
		acc := init

		return s.pipe(sub, func(v T) {
			acc = fn(acc, v)
		}, fail, func() {
			send(acc)
			done()
		}).Stop
	})
}

// Accumulate emits init on subscription, then the updated accumulator after
// every value of s.
func Accumulate[T, A any](s Stream[T], init A, fn func(A, T) A) Stream[A] {
	return create(func(sub *Subscription, send func(A), fail func(error), done func()) func() {
		acc := init
		send(acc)

		return s.pipe(sub, func(v T) {
			acc = fn(acc, v)
			send(acc)
		}, fail, done).Stop
	})
}

// Indexed pairs every value of s with its zero-based position in the run.
func Indexed[T any](s Stream[T]) Stream[Pair[int, T]] {
	return create(func(sub *Subscription, send func(Pair[int, T]), fail func(error), done func()) func() {
		i := 0

		return s.pipe(sub, func(v T) {
			send(Pair[int, T]{First: i, Second: v})
			i++
		}, fail, done).Stop
	})
}

// Finally calls fn once s errors or completes, before the error or completion
// is forwarded. fn is not called when the subscription is stopped.
func Finally[T any](s Stream[T], fn func()) Stream[T] {
	return create(func(sub *Subscription, send func(T), fail func(error), done func()) func() {
		return s.pipe(sub, send, func(err error) {
			fn()
			fail(err)
		}, func() {
			fn()
			done()
		}).Stop
	})
}

// Any emits true and completes as soon as fn holds for a value of s,
// stopping s. If s completes first, it emits false.
func Any[T any](s Stream[T], fn func(T) bool) Stream[bool] {
	return search(s, fn, true)
}

// All emits false and completes as soon as fn fails for a value of s,
// stopping s. If s completes first, it emits true.
func All[T any](s Stream[T], fn func(T) bool) Stream[bool] {
	return search(s, func(v T) bool { return !fn(v) }, false)
}

// search stops s at the first value matching fn and emits found, or emits
// !found once s completes.
func search[T any](s Stream[T], fn func(T) bool, found bool) Stream[bool] {
	return create(func(sub *Subscription, send func(bool), fail func(error), done func()) func() {
		upstream := &Subscription{}
		sub.link(upstream)

		s.start(upstream, func(v T) {
			if !fn(v) {
				return
			}

			upstream.Stop()
			send(found)
			done()
		}, fail, func() {
			send(!found)
			done()
		})

		return upstream.Stop
	})
}

// Forever resubscribes to s every time it completes. It never completes on
// its own; stopping it stops the current run of s.
func Forever[T any](s Stream[T]) Stream[T] {
	return create(func(sub *Subscription, send func(T), fail func(error), _ func()) func() {
		var current *Subscription

		// runs of s that complete synchronously are restarted by the loop
		// below rather than recursively
		looping := false
		again := false

		var loop func()
		loop = func() {
			if looping {
				again = true
				return
			}
			looping = true
			defer func() { looping = false }()

			for {
				again = false
				current = s.pipe(sub, send, fail, loop)

				if !again || sub.Closed() {
					return
				}
			}
		}

		loop()

		return func() {
			current.Stop()
		}
	})
}

// Timers schedules callbacks on the execution context of the stream engine.
type Timers interface {
	// AfterFunc calls fn once d has elapsed, unless cancel is called first.
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

// Delay subscribes to s only once d has elapsed after the returned stream is
// subscribed. Stopping before that cancels the subscription to s.
func Delay[T any](s Stream[T], d time.Duration, timers Timers) Stream[T] {
	return create(func(sub *Subscription, send func(T), fail func(error), done func()) func() {
		var upstream *Subscription

		cancel := timers.AfterFunc(d, func() {
			upstream = s.pipe(sub, send, fail, done)
		})

		return func() {
			cancel()
			if upstream != nil {
				upstream.Stop()
			}
		}
	})
}
