package stream

import (
	"log/slog"
	"math"
	"time"

	"github.com/AnatoleLucet/stream/internal"
	"github.com/AnatoleLucet/stream/metrics"
)

// Host is the environment the frame scheduler runs in.
type Host interface {
	Timers

	// Now returns the current time of a monotonic clock.
	Now() time.Time

	// RequestFrame calls fn once, on the next frame.
	RequestFrame(fn func())
}

// Scheduler drives animations from the frame clock of its Host.
//
// Animations started between two frames share one start time and are
// stepped on the same frames with the same current time, so they stay in
// phase with each other.
type Scheduler struct {
	host  Host
	batch *internal.FrameBatch

	logger  *slog.Logger
	metrics *metrics.Metrics
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerLogger sets the logger frame flushes are reported to.
func WithSchedulerLogger(l *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = l
	}
}

// WithSchedulerMetrics records animation activity to m.
func WithSchedulerMetrics(m *metrics.Metrics) SchedulerOption {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

// NewScheduler creates a scheduler on host.
// Without a logger option it logs to the logger of the calling goroutine.
func NewScheduler(host Host, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{host: host}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if s.logger == nil {
		s.logger = internal.GetRuntime().Logger()
	}

	s.batch = internal.NewFrameBatch(host.Now, func() {
		host.RequestFrame(s.flush)
	})

	return s
}

// Pending returns the number of animations waiting for the next frame.
func (s *Scheduler) Pending() int {
	return s.batch.Pending()
}

func (s *Scheduler) flush() {
	ran := s.batch.Flush()

	s.metrics.FrameRan()
	s.metrics.SetPending(s.batch.Pending())
	s.logger.Debug("frame flushed", "animations", ran, "pending", s.batch.Pending())
}

// Animate returns a stream of the progress of an animation lasting d.
//
// On subscription it emits 0. On every following frame it emits the elapsed
// fraction of d, until a frame at or past d, where it emits 1 and completes.
// A zero or negative d emits 0, then 1 on the next frame.
func (s *Scheduler) Animate(d time.Duration) Stream[float64] {
	return New(func(send func(float64), _ func(error), done func()) func() {
		var start time.Time
		var step *internal.FrameStep

		step = internal.NewFrameStep(func(now time.Time) {
			elapsed := now.Sub(start)

			if elapsed >= d {
				s.metrics.AnimationCompleted()
				send(1)
				done()
				return
			}

			s.batch.Enqueue(step)
			send(float64(elapsed) / float64(d))
		})

		start = s.batch.Enqueue(step)
		s.metrics.AnimationStarted()
		send(0)

		return func() {
			s.batch.Remove(step)
			s.metrics.SetPending(s.batch.Pending())
		}
	})
}

// EaseInOut maps linear progress t in [0, 1] to a quartic ease-in-out curve.
func EaseInOut(t float64) float64 {
	var r float64
	if t < 0.5 {
		r = t * 2
	} else {
		r = (1 - t) * 2
	}

	r *= r * r * r

	if t < 0.5 {
		return r / 2
	}
	return 1 - r/2
}

// Range maps progress t in [0, 1] onto [from, to].
func Range(t, from, to float64) float64 {
	return t*(to-from) + from
}

// RoundRange is Range rounded to the nearest integer.
func RoundRange(t, from, to float64) int {
	return int(math.Round(Range(t, from, to)))
}
