package stream

import "slices"

// Concat subscribes to streams one after the other, moving to the next as
// soon as the current one completes, and completes after the last one.
// Stopping it stops the stream currently subscribed.
func Concat[T any](streams ...Stream[T]) Stream[T] {
	return create(func(sub *Subscription, send func(T), fail func(error), done func()) func() {
		var current *Subscription

		var next func(i int)
		next = func(i int) {
			if i == len(streams) {
				done()
				return
			}

			run := streams[i].pipe(sub, send, fail, func() { next(i + 1) })

			// a run that already ended has handed over to its successor
			if !run.Closed() {
				current = run
			}
		}

		next(0)

		return func() {
			if current != nil {
				current.Stop()
			}
		}
	})
}

// Merge subscribes to every stream at once and forwards their values as they
// arrive. It completes once all of them have completed. The first error
// stops every other stream and is forwarded.
func Merge[T any](streams ...Stream[T]) Stream[T] {
	return create(func(sub *Subscription, send func(T), fail func(error), done func()) func() {
		if len(streams) == 0 {
			done()
			return nil
		}

		pending := len(streams)
		subs := make([]*Subscription, 0, len(streams))

		stop := func() {
			for _, run := range subs {
				run.Stop()
			}
		}

		for _, s := range streams {
			if sub.Closed() {
				break
			}

			subs = append(subs, s.pipe(sub, send, func(err error) {
				stop()
				fail(err)
			}, func() {
				pending--
				if pending == 0 {
					done()
				}
			}))
		}

		return stop
	})
}

// Latest subscribes to every stream at once. Once each of them has emitted,
// it emits a fresh slice of their most recent values, in stream order,
// whenever any of them emits.
//
// The first stream to complete stops all the others and completes the
// result, whether or not the others have emitted yet. The first error does
// the same and is forwarded.
func Latest[T any](streams ...Stream[T]) Stream[[]T] {
	return create(func(sub *Subscription, send func([]T), fail func(error), done func()) func() {
		if len(streams) == 0 {
			done()
			return nil
		}

		values := make([]T, len(streams))
		seen := make([]bool, len(streams))
		missing := len(streams)

		subs := make([]*Subscription, 0, len(streams))

		stop := func() {
			for _, run := range subs {
				run.Stop()
			}
		}

		for i, s := range streams {
			if sub.Closed() {
				break
			}

			subs = append(subs, s.pipe(sub, func(v T) {
				values[i] = v
				if !seen[i] {
					seen[i] = true
					missing--
				}

				if missing == 0 {
					send(slices.Clone(values))
				}
			}, func(err error) {
				stop()
				fail(err)
			}, func() {
				stop()
				done()
			}))
		}

		return stop
	})
}

// Latest2 is Latest over two streams of different types.
func Latest2[A, B any](a Stream[A], b Stream[B]) Stream[Pair[A, B]] {
	latest := Latest(
		Map(a, func(v A) any { return v }),
		Map(b, func(v B) any { return v }),
	)

	return Map(latest, func(values []any) Pair[A, B] {
		return Pair[A, B]{First: as[A](values[0]), Second: as[B](values[1])}
	})
}

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}

	return v.(T)
}
