package stream

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/AnatoleLucet/stream/internal"
	"github.com/AnatoleLucet/stream/metrics"
)

const (
	defaultFrameInterval = 16 * time.Millisecond
	defaultTaskBuffer    = 256
)

// Loop is a single-goroutine execution context for streams.
//
// Run executes posted tasks one at a time on the goroutine that called it.
// Timers and frames fire on the clock's goroutines and are posted back onto
// the loop, so every callback of the engine runs on the loop goroutine.
// Loop implements Host.
type Loop struct {
	id            uuid.UUID
	clock         clockwork.Clock
	frameInterval time.Duration
	logger        *slog.Logger
	metrics       *metrics.Metrics
	onUnhandled   func(error)

	tasks   chan func()
	running atomic.Bool

	// closed when Run starts shutting down, releasing blocked Posts
	stopping chan struct{}

	// held for reading while a Post checks closed and enqueues, so that
	// every task accepted before closed is set is still in the buffer when
	// Run drains it
	mu     sync.RWMutex
	closed bool

	// owned by the loop goroutine
	frames      []func()
	frameArmed  bool
	frameCancel func()
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithClock sets the clock driving timers and frames.
func WithClock(c clockwork.Clock) LoopOption {
	return func(l *Loop) {
		l.clock = c
	}
}

// WithFrameInterval sets the time between two frames.
func WithFrameInterval(d time.Duration) LoopOption {
	return func(l *Loop) {
		l.frameInterval = d
	}
}

// WithLoopLogger sets the logger of the loop and of its goroutine.
func WithLoopLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		l.logger = logger
	}
}

// WithLoopMetrics records loop activity to m.
func WithLoopMetrics(m *metrics.Metrics) LoopOption {
	return func(l *Loop) {
		l.metrics = m
	}
}

// WithLoopFailureHandler installs fn as the unhandled error handler of the
// loop goroutine while Run is executing.
func WithLoopFailureHandler(fn func(error)) LoopOption {
	return func(l *Loop) {
		l.onUnhandled = fn
	}
}

// WithTaskBuffer sets how many posted tasks may wait before Post blocks.
func WithTaskBuffer(n int) LoopOption {
	return func(l *Loop) {
		l.tasks = make(chan func(), max(n, 0))
	}
}

// NewLoop creates a loop. By default it uses the real clock, 16ms frames and
// slog.Default().
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		id:            uuid.New(),
		clock:         clockwork.NewRealClock(),
		frameInterval: defaultFrameInterval,
		logger:        slog.Default(),
		stopping:      make(chan struct{}),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	if l.tasks == nil {
		l.tasks = make(chan func(), defaultTaskBuffer)
	}
	if l.frameInterval <= 0 {
		l.frameInterval = defaultFrameInterval
	}

	l.logger = l.logger.With("loop_id", l.id)

	return l
}

// ID identifies the loop in logs.
func (l *Loop) ID() uuid.UUID {
	return l.id
}

// Run executes posted tasks until ctx is done. Tasks accepted by Post before
// that still run before Run returns. A loop runs once; after Run returns,
// Post fails with ErrLoopClosed.
func (l *Loop) Run(ctx context.Context) error {
	if l.isClosed() {
		return ErrLoopClosed
	}
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}

	rt := internal.GetRuntime()
	prevLogger := rt.SetLogger(l.logger)
	prevUnhandled := rt.SetUnhandled(l.onUnhandled)

	defer func() {
		if prevLogger == nil && prevUnhandled == nil {
			internal.ReleaseRuntime()
			return
		}
		rt.SetLogger(prevLogger)
		rt.SetUnhandled(prevUnhandled)
	}()

	defer l.shutdown()

	l.logger.Info("loop started", "frame_interval", l.frameInterval)

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("loop stopped", "cause", context.Cause(ctx))
			return nil

		case task := <-l.tasks:
			task()
			l.metrics.LoopTaskRan()
		}
	}
}

// shutdown closes the loop and runs the tasks left in the buffer.
func (l *Loop) shutdown() {
	close(l.stopping)

	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	drained := 0
drain:
	for {
		select {
		case task := <-l.tasks:
			task()
			l.metrics.LoopTaskRan()
			drained++
		default:
			break drain
		}
	}

	if l.frameCancel != nil {
		l.frameCancel()
	}

	if drained > 0 {
		l.logger.Debug("loop drained", "tasks", drained)
	}
}

func (l *Loop) isClosed() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.closed
}

// Post schedules fn to run on the loop. It is safe to call from any
// goroutine, including before Run. A nil error means fn will run.
func (l *Loop) Post(fn func()) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return ErrLoopClosed
	}

	select {
	case l.tasks <- fn:
		return nil
	case <-l.stopping:
		return ErrLoopClosed
	}
}

// Now returns the current time of the loop's clock.
func (l *Loop) Now() time.Time {
	return l.clock.Now()
}

// AfterFunc runs fn on the loop once d has elapsed. Cancelling from the loop
// goroutine guarantees fn does not run, even if the timer already fired.
func (l *Loop) AfterFunc(d time.Duration, fn func()) (cancel func()) {
	cancelled := false

	timer := l.clock.AfterFunc(d, func() {
		err := l.Post(func() {
			if !cancelled {
				fn()
			}
		})
		if err != nil {
			l.logger.Debug("timer dropped", "error", err)
		}
	})

	return func() {
		cancelled = true
		timer.Stop()
	}
}

// RequestFrame runs fn on the next frame. Callbacks requested while a frame
// runs wait for the frame after it.
func (l *Loop) RequestFrame(fn func()) {
	l.frames = append(l.frames, fn)

	if l.frameArmed {
		return
	}
	l.frameArmed = true
	l.frameCancel = l.AfterFunc(l.frameInterval, l.runFrame)
}

func (l *Loop) runFrame() {
	frames := l.frames
	l.frames = nil
	l.frameArmed = false
	l.frameCancel = nil

	for _, fn := range frames {
		fn()
	}

	l.metrics.LoopFrameRan()
}
