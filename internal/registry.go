package internal

import (
	"iter"
	"slices"

	"github.com/AnatoleLucet/stream/seq"
)

// Registry is an insertion-ordered set of subscriber records.
// It tolerates records being added or removed while it is being iterated.
type Registry[R any] struct {
	entries []*registryEntry[R]
}

type registryEntry[R any] struct {
	record  R
	removed bool
}

func NewRegistry[R any]() *Registry[R] {
	return &Registry[R]{}
}

// Add appends a record and returns the function that removes it again.
// The returned function may be called any number of times.
func (r *Registry[R]) Add(record R) (remove func()) {
	entry := &registryEntry[R]{record: record}
	r.entries = append(r.entries, entry)

	return func() {
		if entry.removed {
			return
		}
		entry.removed = true

		if i := slices.Index(r.entries, entry); i != -1 {
			r.entries = slices.Delete(r.entries, i, i+1)
		}
	}
}

func (r *Registry[R]) Len() int {
	return len(r.entries)
}

// All iterates a snapshot of the records present when All was called.
// Records removed after that point are skipped when the iteration reaches
// them; records added after that point are not visited.
func (r *Registry[R]) All() iter.Seq[R] {
	// clonning to avoid mutation during iteration
	snapshot := slices.Clone(r.entries)

	live := seq.Keep(slices.Values(snapshot), func(e *registryEntry[R]) bool {
		return !e.removed
	})

	return seq.Map(live, func(e *registryEntry[R]) R {
		return e.record
	})
}

// Each calls fn with every record of the current snapshot.
func (r *Registry[R]) Each(fn func(R)) {
	seq.Each(r.All(), fn)
}
