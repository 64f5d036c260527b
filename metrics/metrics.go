// Package metrics provides Prometheus collectors for the stream engine's
// loop and frame scheduler.
//
// Every recording method is safe on a nil *Metrics, so components run
// unchanged when no metrics are configured.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "stream"

// Metrics holds the collectors of one engine instance.
type Metrics struct {
	// LoopTasksTotal counts tasks run by a Loop, timer callbacks included.
	LoopTasksTotal prometheus.Counter

	// LoopFramesTotal counts frames run by a Loop.
	LoopFramesTotal prometheus.Counter

	// FramesTotal counts frame flushes of a Scheduler.
	FramesTotal prometheus.Counter

	// AnimationsStartedTotal counts Animate subscriptions.
	AnimationsStartedTotal prometheus.Counter

	// AnimationsCompletedTotal counts animations that reached the end.
	AnimationsCompletedTotal prometheus.Counter

	// AnimationsPending tracks animations waiting for the next frame.
	AnimationsPending prometheus.Gauge
}

// New creates the collectors and registers them with reg.
// A nil reg creates unregistered collectors.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LoopTasksTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loop_tasks_total",
			Help:      "Total number of tasks run by the loop",
		}),
		LoopFramesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loop_frames_total",
			Help:      "Total number of frames run by the loop",
		}),
		FramesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_frames_total",
			Help:      "Total number of frame flushes of the animation scheduler",
		}),
		AnimationsStartedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "animations_started_total",
			Help:      "Total number of animations started",
		}),
		AnimationsCompletedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "animations_completed_total",
			Help:      "Total number of animations that ran to completion",
		}),
		AnimationsPending: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "animations_pending",
			Help:      "Number of animations waiting for the next frame",
		}),
	}
}

func (m *Metrics) LoopTaskRan() {
	if m == nil {
		return
	}
	m.LoopTasksTotal.Inc()
}

func (m *Metrics) LoopFrameRan() {
	if m == nil {
		return
	}
	m.LoopFramesTotal.Inc()
}

func (m *Metrics) FrameRan() {
	if m == nil {
		return
	}
	m.FramesTotal.Inc()
}

func (m *Metrics) AnimationStarted() {
	if m == nil {
		return
	}
	m.AnimationsStartedTotal.Inc()
}

func (m *Metrics) AnimationCompleted() {
	if m == nil {
		return
	}
	m.AnimationsCompletedTotal.Inc()
}

func (m *Metrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.AnimationsPending.Set(float64(n))
}
