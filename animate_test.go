package stream_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/AnatoleLucet/stream"
	"github.com/AnatoleLucet/stream/metrics"
	"github.com/AnatoleLucet/stream/streamtest"
)

func TestAnimate(t *testing.T) {
	frame := 250 * time.Millisecond

	t.Run("emits progress on every frame", func(t *testing.T) {
		host := streamtest.NewHost()
		sched := stream.NewScheduler(host)

		rec, sub := streamtest.Record(sched.Animate(time.Second))
		assert.Equal(t, []float64{0}, rec.Values)
		assert.Equal(t, 1, sched.Pending())

		for range 4 {
			host.Tick(frame)
		}

		assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, rec.Values)
		assert.Equal(t, 1, rec.Completed)
		assert.True(t, sub.Closed())
		assert.Zero(t, sched.Pending())
		assert.Zero(t, host.PendingFrames())
	})

	t.Run("animations started between frames stay in phase", func(t *testing.T) {
		host := streamtest.NewHost()
		sched := stream.NewScheduler(host)

		a, _ := streamtest.Record(sched.Animate(time.Second))
		host.Advance(5 * time.Millisecond)
		b, _ := streamtest.Record(sched.Animate(time.Second))

		assert.Equal(t, 1, host.PendingFrames())

		host.Tick(frame - 5*time.Millisecond)
		for range 3 {
			host.Tick(frame)
		}

		assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, a.Values)
		assert.Equal(t, a.Values, b.Values)
		assert.Equal(t, 1, a.Completed)
		assert.Equal(t, 1, b.Completed)
	})

	t.Run("animations started during a frame join the next batch", func(t *testing.T) {
		host := streamtest.NewHost()
		sched := stream.NewScheduler(host)

		var late *streamtest.Recorder[float64]
		sched.Animate(time.Second).Each(func(v float64) {
			if v == 0.25 {
				late, _ = streamtest.Record(sched.Animate(500 * time.Millisecond))
			}
		})

		host.Tick(frame)
		assert.Equal(t, []float64{0}, late.Values)
		assert.Equal(t, 2, sched.Pending())

		host.Tick(frame)
		host.Tick(frame)

		assert.Equal(t, []float64{0, 0.5, 1}, late.Values)
		assert.Equal(t, 1, late.Completed)
	})

	t.Run("stopping a sibling during a frame does not resurrect it", func(t *testing.T) {
		host := streamtest.NewHost()
		sched := stream.NewScheduler(host)

		var subB *stream.Subscription
		a, _ := streamtest.Record(stream.Map(sched.Animate(time.Second), func(v float64) float64 {
			if v > 0 {
				subB.Stop()
			}
			return v
		}))

		var b *streamtest.Recorder[float64]
		b, subB = streamtest.Record(sched.Animate(time.Second))

		for range 4 {
			host.Tick(frame)
		}

		assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, a.Values)
		assert.Equal(t, []float64{0}, b.Values)
		assert.Zero(t, b.Completed)
		assert.Zero(t, sched.Pending())
	})

	t.Run("stop before the first frame", func(t *testing.T) {
		host := streamtest.NewHost()
		sched := stream.NewScheduler(host)

		rec, sub := streamtest.Record(sched.Animate(time.Second))
		sub.Stop()
		assert.Zero(t, sched.Pending())

		host.Tick(frame)
		assert.Equal(t, []float64{0}, rec.Values)
		assert.Zero(t, host.PendingFrames())
	})

	t.Run("zero duration completes on the next frame", func(t *testing.T) {
		host := streamtest.NewHost()
		sched := stream.NewScheduler(host)

		rec, _ := streamtest.Record(sched.Animate(0))
		assert.Equal(t, []string{"value 0"}, rec.Log)

		host.Tick(frame)
		assert.Equal(t, []string{"value 0", "value 1", "complete"}, rec.Log)
	})

	t.Run("every subscription is a new animation", func(t *testing.T) {
		host := streamtest.NewHost()
		sched := stream.NewScheduler(host)
		anim := sched.Animate(time.Second)

		a, _ := streamtest.Record(anim)
		host.Tick(2 * frame)
		b, _ := streamtest.Record(anim)
		host.Tick(2 * frame)

		assert.Equal(t, []float64{0, 0.5, 1}, a.Values)
		assert.Equal(t, []float64{0, 0.5}, b.Values)
	})

	t.Run("records metrics", func(t *testing.T) {
		host := streamtest.NewHost()
		m := metrics.New(prometheus.NewRegistry())
		sched := stream.NewScheduler(host, stream.WithSchedulerMetrics(m))

		streamtest.Record(sched.Animate(time.Second))
		streamtest.Record(sched.Animate(time.Second))
		_, sub := streamtest.Record(sched.Animate(time.Second))

		host.Tick(frame)
		sub.Stop()
		assert.Equal(t, 2.0, testutil.ToFloat64(m.AnimationsPending))

		for range 3 {
			host.Tick(frame)
		}

		assert.Equal(t, 3.0, testutil.ToFloat64(m.AnimationsStartedTotal))
		assert.Equal(t, 2.0, testutil.ToFloat64(m.AnimationsCompletedTotal))
		assert.Equal(t, 4.0, testutil.ToFloat64(m.FramesTotal))
		assert.Zero(t, testutil.ToFloat64(m.AnimationsPending))
	})
}

func TestEasing(t *testing.T) {
	t.Run("ease in out", func(t *testing.T) {
		assert.Equal(t, 0.0, stream.EaseInOut(0))
		assert.Equal(t, 0.03125, stream.EaseInOut(0.25))
		assert.Equal(t, 0.5, stream.EaseInOut(0.5))
		assert.Equal(t, 0.96875, stream.EaseInOut(0.75))
		assert.Equal(t, 1.0, stream.EaseInOut(1))
	})

	t.Run("range", func(t *testing.T) {
		assert.Equal(t, 15.0, stream.Range(0.5, 10, 20))
		assert.Equal(t, 20.0, stream.Range(0.5, 40, 0))
		assert.Equal(t, 3, stream.RoundRange(0.25, 0, 10))
		assert.Equal(t, 100, stream.RoundRange(1, 0, 100))
	})
}
