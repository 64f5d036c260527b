package stream_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AnatoleLucet/stream"
	"github.com/AnatoleLucet/stream/streamtest"
)

func TestConcat(t *testing.T) {
	t.Run("runs streams one after the other", func(t *testing.T) {
		rec, _ := streamtest.Record(stream.Concat(stream.Of("a"), stream.Of("b", "c")))
		assert.Equal(t, []string{"value a", "value b", "value c", "complete"}, rec.Log)
	})

	t.Run("subscribes to the next stream only on completion", func(t *testing.T) {
		a, sendA, _, doneA, _ := manual[int]()
		b, sendB, _, doneB, _ := manual[int]()

		rec, _ := streamtest.Record(stream.Concat(a, b))
		(*sendA)(1)
		assert.Nil(t, *sendB)

		(*doneA)()
		(*sendB)(2)
		(*doneB)()

		assert.Equal(t, []string{"value 1", "value 2", "complete"}, rec.Log)
	})

	t.Run("stop releases the current stream", func(t *testing.T) {
		a, _, _, doneA, teardownsA := manual[int]()
		b, _, _, _, teardownsB := manual[int]()

		_, sub := streamtest.Record(stream.Concat(a, b))
		(*doneA)()
		sub.Stop()

		assert.Equal(t, 1, *teardownsA)
		assert.Equal(t, 1, *teardownsB)
	})

	t.Run("errors end the sequence", func(t *testing.T) {
		a, _, failA, _, _ := manual[int]()
		b, sendB, _, _, _ := manual[int]()

		rec, _ := streamtest.Record(stream.Concat(a, b))
		(*failA)(errors.New("boom"))

		assert.Equal(t, []string{"error boom"}, rec.Log)
		assert.Nil(t, *sendB)
	})

	t.Run("no streams", func(t *testing.T) {
		rec, _ := streamtest.Record(stream.Concat[int]())
		assert.Equal(t, []string{"complete"}, rec.Log)
	})
}

func TestMerge(t *testing.T) {
	t.Run("interleaves values and completes after every stream", func(t *testing.T) {
		a, sendA, _, doneA, _ := manual[int]()
		b, sendB, _, doneB, _ := manual[int]()

		rec, _ := streamtest.Record(stream.Merge(a, b))
		(*sendA)(1)
		(*sendB)(2)
		(*sendA)(3)
		(*doneA)()
		assert.Zero(t, rec.Completed)

		(*doneB)()
		assert.Equal(t, []string{"value 1", "value 2", "value 3", "complete"}, rec.Log)
	})

	t.Run("first error stops the other streams", func(t *testing.T) {
		a, _, failA, _, _ := manual[int]()
		b, sendB, _, _, teardownsB := manual[int]()

		rec, sub := streamtest.Record(stream.Merge(a, b))
		(*failA)(errors.New("boom"))
		(*sendB)(1)

		assert.Equal(t, []string{"error boom"}, rec.Log)
		assert.Equal(t, 1, *teardownsB)
		assert.True(t, sub.Closed())
	})

	t.Run("synchronous error skips the remaining streams", func(t *testing.T) {
		failing := stream.New(func(_ func(int), fail func(error), _ func()) func() {
			fail(errors.New("boom"))
			return nil
		})
		b, sendB, _, _, _ := manual[int]()

		rec, _ := streamtest.Record(stream.Merge(failing, b))

		assert.Equal(t, []string{"error boom"}, rec.Log)
		assert.Nil(t, *sendB)
	})

	t.Run("stop releases every stream", func(t *testing.T) {
		a, _, _, _, teardownsA := manual[int]()
		b, _, _, _, teardownsB := manual[int]()

		_, sub := streamtest.Record(stream.Merge(a, b))
		sub.Stop()

		assert.Equal(t, 1, *teardownsA)
		assert.Equal(t, 1, *teardownsB)
	})

	t.Run("no streams", func(t *testing.T) {
		rec, _ := streamtest.Record(stream.Merge[int]())
		assert.Equal(t, []string{"complete"}, rec.Log)
	})
}

func TestLatest(t *testing.T) {
	t.Run("waits for every stream then emits on each change", func(t *testing.T) {
		a, sendA, _, _, _ := manual[int]()
		b, sendB, _, _, _ := manual[int]()

		rec, _ := streamtest.Record(stream.Latest(a, b))
		(*sendA)(1)
		(*sendA)(2)
		assert.Empty(t, rec.Values)

		(*sendB)(10)
		(*sendA)(3)
		(*sendB)(20)

		assert.Equal(t, [][]int{{2, 10}, {3, 10}, {3, 20}}, rec.Values)
	})

	t.Run("emits fresh slices", func(t *testing.T) {
		a, sendA, _, _, _ := manual[int]()

		rec, _ := streamtest.Record(stream.Latest(a))
		(*sendA)(1)
		rec.Values[0][0] = 100
		(*sendA)(2)

		assert.Equal(t, [][]int{{100}, {2}}, rec.Values)
	})

	t.Run("first completion ends the result", func(t *testing.T) {
		a, sendA, _, doneA, _ := manual[int]()
		b, sendB, _, _, teardownsB := manual[int]()

		rec, _ := streamtest.Record(stream.Latest(a, b))
		(*sendA)(1)
		(*doneA)()
		(*sendB)(2)

		assert.Equal(t, []string{"complete"}, rec.Log)
		assert.Equal(t, 1, *teardownsB)
	})

	t.Run("first error ends the result", func(t *testing.T) {
		a, _, failA, _, _ := manual[int]()
		b, _, _, _, teardownsB := manual[int]()

		rec, _ := streamtest.Record(stream.Latest(a, b))
		(*failA)(errors.New("boom"))

		assert.Equal(t, []string{"error boom"}, rec.Log)
		assert.Equal(t, 1, *teardownsB)
	})

	t.Run("no streams", func(t *testing.T) {
		rec, _ := streamtest.Record(stream.Latest[int]())
		assert.Equal(t, []string{"complete"}, rec.Log)
	})

	t.Run("two streams of different types", func(t *testing.T) {
		theme := stream.NewSignal("dark")
		tabs := stream.NewEvent[int]()

		rec, _ := streamtest.Record(stream.Latest2(theme.Stream, tabs.Stream))
		tabs.Send(1)
		theme.Set("light")

		assert.Equal(t, []stream.Pair[string, int]{
			{First: "dark", Second: 1},
			{First: "light", Second: 1},
		}, rec.Values)
	})

	t.Run("nil interface values", func(t *testing.T) {
		errs := stream.NewSignal[error](nil)

		rec, _ := streamtest.Record(stream.Latest2(errs.Stream, stream.Of(1)))

		assert.Equal(t, []stream.Pair[error, int]{{First: nil, Second: 1}}, rec.Values)
		assert.Equal(t, 1, rec.Completed)
	})
}
