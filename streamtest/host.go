// Package streamtest provides test doubles for code built on package stream.
package streamtest

import (
	"slices"
	"time"

	"github.com/jonboulle/clockwork"
)

// Host is a stream.Host driven by hand from the test goroutine.
//
// Time only moves when the test calls Advance or Tick, and timers and frames
// run synchronously inside those calls, so every callback stays on the test
// goroutine.
type Host struct {
	clock  *clockwork.FakeClock
	timers []*timer
	frames []func()
}

type timer struct {
	at        time.Time
	fn        func()
	cancelled bool
}

// NewHost creates a host whose clock starts at a fixed instant.
func NewHost() *Host {
	return &Host{
		clock: clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
}

// Clock returns the fake clock behind the host.
func (h *Host) Clock() *clockwork.FakeClock {
	return h.clock
}

func (h *Host) Now() time.Time {
	return h.clock.Now()
}

func (h *Host) AfterFunc(d time.Duration, fn func()) (cancel func()) {
	t := &timer{at: h.clock.Now().Add(d), fn: fn}
	h.timers = append(h.timers, t)

	return func() {
		t.cancelled = true
	}
}

func (h *Host) RequestFrame(fn func()) {
	h.frames = append(h.frames, fn)
}

// PendingFrames returns the number of callbacks waiting for the next frame.
func (h *Host) PendingFrames() int {
	return len(h.frames)
}

// Advance moves the clock forward by d, running every timer that falls due,
// in due order.
func (h *Host) Advance(d time.Duration) {
	deadline := h.clock.Now().Add(d)

	for {
		t := h.nextDue(deadline)
		if t == nil {
			break
		}

		if delta := t.at.Sub(h.clock.Now()); delta > 0 {
			h.clock.Advance(delta)
		}
		t.fn()
	}

	if delta := deadline.Sub(h.clock.Now()); delta > 0 {
		h.clock.Advance(delta)
	}
}

// Tick moves the clock forward by d, then runs one frame. Callbacks
// requested during the frame wait for the next Tick.
func (h *Host) Tick(d time.Duration) {
	h.Advance(d)

	frames := h.frames
	h.frames = nil

	for _, fn := range frames {
		fn()
	}
}

// nextDue removes and returns the earliest live timer due by deadline.
func (h *Host) nextDue(deadline time.Time) *timer {
	h.timers = slices.DeleteFunc(h.timers, func(t *timer) bool {
		return t.cancelled
	})

	i := -1
	for j, t := range h.timers {
		if t.at.After(deadline) {
			continue
		}
		if i == -1 || t.at.Before(h.timers[i].at) {
			i = j
		}
	}

	if i == -1 {
		return nil
	}

	t := h.timers[i]
	h.timers = slices.Delete(h.timers, i, i+1)
	return t
}
