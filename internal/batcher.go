package internal

import (
	"slices"
	"time"
)

// FrameStep is one callback waiting for the next frame.
type FrameStep struct {
	fn func(now time.Time)

	// true while the step sits in the open batch or in a flush in progress.
	// Remove clears it so that a step already drained into an in-flight flush
	// is skipped instead of running and re-queueing itself.
	queued bool
}

func NewFrameStep(fn func(now time.Time)) *FrameStep {
	return &FrameStep{fn: fn}
}

// FrameBatch coalesces steps queued between two frames.
// Every step queued while a batch is open observes the same start time,
// and all of them run on the same frame with the same current time.
type FrameBatch struct {
	now     func() time.Time
	request func()

	// true from the first Enqueue of a batch until its flush begins
	batching bool

	// frozen when the batch opens
	start time.Time

	pending []*FrameStep
}

// NewFrameBatch creates a batch using now as its clock. request must arrange
// for Flush to be called once on the next frame.
func NewFrameBatch(now func() time.Time, request func()) *FrameBatch {
	return &FrameBatch{
		now:     now,
		request: request,
	}
}

// Enqueue adds step to the open batch, opening one (and requesting a frame)
// if needed. It returns the batch's start time.
func (b *FrameBatch) Enqueue(step *FrameStep) time.Time {
	if !b.batching {
		b.batching = true
		b.start = b.now()
		b.request()
	}

	step.queued = true
	b.pending = append(b.pending, step)

	return b.start
}

// Remove takes step out of the open batch and cancels it if it is part of a
// flush in progress.
func (b *FrameBatch) Remove(step *FrameStep) {
	step.queued = false

	if i := slices.Index(b.pending, step); i != -1 {
		b.pending = slices.Delete(b.pending, i, i+1)
	}
}

func (b *FrameBatch) Pending() int {
	return len(b.pending)
}

// Flush runs every step of the closing batch with the same current time and
// reports how many ran. The batch is reset before any step runs, so steps
// that enqueue open a fresh batch for the next frame.
func (b *FrameBatch) Flush() int {
	now := b.now()

	steps := b.pending
	b.batching = false
	b.pending = nil

	ran := 0
	for _, step := range steps {
		if !step.queued {
			continue
		}

		// a step runs at most once per flush; it re-arms itself by enqueueing
		step.queued = false
		step.fn(now)
		ran++
	}

	return ran
}
