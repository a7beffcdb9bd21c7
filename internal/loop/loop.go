// Package loop provides the cooperative, single-threaded event loop that
// drives one deck session. Every input callback, timer tick and readiness
// notification runs to completion on the loop goroutine before the next one
// starts, so the navigation state and the active animation need no locking.
package loop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultFrameInterval approximates one display frame at 60Hz.
const DefaultFrameInterval = time.Second / 60

// Handle identifies a scheduled continuation.
type Handle interface {
	// Cancel prevents the continuation from running. Safe to call more
	// than once and after the continuation already ran.
	Cancel()
}

// Scheduler is what animations use to schedule future work.
type Scheduler interface {
	After(d time.Duration, fn func()) Handle
	Frame(fn func(now time.Time)) Handle
}

// Loop runs posted callbacks one at a time.
type Loop struct {
	tasks         chan func()
	done          chan struct{}
	closeOnce     sync.Once
	frameInterval time.Duration
	afterEach     func()
}

// Option configures a Loop.
type Option func(*Loop)

// WithFrameInterval changes the period used by Frame.
func WithFrameInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.frameInterval = d
		}
	}
}

// WithAfterEach registers a hook run on the loop after every callback.
func WithAfterEach(fn func()) Option {
	return func(l *Loop) { l.afterEach = fn }
}

// New creates a loop. Call Run to start processing.
func New(opts ...Option) *Loop {
	l := &Loop{
		tasks:         make(chan func(), 64),
		done:          make(chan struct{}),
		frameInterval: DefaultFrameInterval,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run processes callbacks until ctx is cancelled or Close is called.
func (l *Loop) Run(ctx context.Context) error {
	defer l.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case fn := <-l.tasks:
			fn()
			if l.afterEach != nil {
				l.afterEach()
			}
		}
	}
}

// Post queues fn. It returns false once the loop has been closed.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Call runs fn on the loop and waits for it to finish.
func (l *Loop) Call(fn func()) bool {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return false
	}
	select {
	case <-finished:
		return true
	case <-l.done:
		return false
	}
}

// Close stops the loop. Pending callbacks are dropped.
func (l *Loop) Close() {
	l.closeOnce.Do(func() { close(l.done) })
}

// Closed reports whether the loop has stopped.
func (l *Loop) Closed() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

// After schedules fn to run on the loop after d.
func (l *Loop) After(d time.Duration, fn func()) Handle {
	h := &timerHandle{}
	h.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			// Cancelled after the timer fired but before we got here.
			if h.cancelled.Load() {
				return
			}
			fn()
		})
	})
	return h
}

// Frame schedules fn for the next display frame.
func (l *Loop) Frame(fn func(now time.Time)) Handle {
	return l.After(l.frameInterval, func() { fn(time.Now()) })
}

type timerHandle struct {
	timer     *time.Timer
	cancelled atomic.Bool
}

func (h *timerHandle) Cancel() {
	h.cancelled.Store(true)
	h.timer.Stop()
}
