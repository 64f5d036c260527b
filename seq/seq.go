// Package seq provides lazy helpers over iter.Seq.
//
// Every helper is lazy: nothing is pulled from the input until the result is
// ranged over, and values are produced one at a time on demand. Results are
// meant to be consumed once; ranging over a result twice re-ranges the
// underlying input, so a single-pass input yields nothing the second time.
package seq

import "iter"

// Each calls fn for every value of s.
func Each[T any](s iter.Seq[T], fn func(T)) {
	for v := range s {
		fn(v)
	}
}

// Map yields fn(v) for every value of s.
func Map[T, U any](s iter.Seq[T], fn func(T) U) iter.Seq[U] {
	return func(yield func(U) bool) {
		for v := range s {
			if !yield(fn(v)) {
				return
			}
		}
	}
}

// Keep yields the values of s for which fn returns true.
// fn is evaluated at the moment each value is pulled.
func Keep[T any](s iter.Seq[T], fn func(T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range s {
			if fn(v) && !yield(v) {
				return
			}
		}
	}
}

// All reports whether fn holds for every value of s, stopping at the first
// value for which it does not.
func All[T any](s iter.Seq[T], fn func(T) bool) bool {
	for v := range s {
		if !fn(v) {
			return false
		}
	}
	return true
}

// Indexed pairs every value of s with its zero-based position.
func Indexed[T any](s iter.Seq[T]) iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		i := 0
		for v := range s {
			if !yield(i, v) {
				return
			}
			i++
		}
	}
}

// Zip yields one slice per step holding the next value of every input.
// It stops as soon as any input is exhausted.
func Zip[T any](inputs ...iter.Seq[T]) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		if len(inputs) == 0 {
			return
		}

		nexts, stop := pullAll(inputs)
		defer stop()

		for {
			out := make([]T, len(nexts))
			for i, next := range nexts {
				v, ok := next()
				if !ok {
					return
				}
				out[i] = v
			}

			if !yield(out) {
				return
			}
		}
	}
}

// ZipLongest is like Zip but keeps going until every input is exhausted,
// filling the slots of finished inputs with def.
func ZipLongest[T any](def T, inputs ...iter.Seq[T]) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		if len(inputs) == 0 {
			return
		}

		nexts, stop := pullAll(inputs)
		defer stop()

		finished := make([]bool, len(nexts))
		for {
			out := make([]T, len(nexts))
			done := 0

			for i, next := range nexts {
				if finished[i] {
					out[i] = def
					done++
					continue
				}

				v, ok := next()
				if !ok {
					finished[i] = true
					out[i] = def
					done++
					continue
				}
				out[i] = v
			}

			if done == len(nexts) || !yield(out) {
				return
			}
		}
	}
}

func pullAll[T any](inputs []iter.Seq[T]) ([]func() (T, bool), func()) {
	nexts := make([]func() (T, bool), len(inputs))
	stops := make([]func(), len(inputs))

	for i, in := range inputs {
		nexts[i], stops[i] = iter.Pull(in)
	}

	return nexts, func() {
		for _, stop := range stops {
			stop()
		}
	}
}
