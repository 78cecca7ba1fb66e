package scheduler

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Host schedules callbacks for a later tick and reports the current time.
type Host interface {
	Schedule(fn func())
	Now() time.Time
}

// LoopHost runs scheduled callbacks on a single goroutine. Callbacks
// scheduled while a frame is running execute in the next frame.
type LoopHost struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
	frames  *rate.Limiter
}

// NewLoopHost creates an event loop. A positive frame interval paces frames
// to at most one per interval; zero runs frames back to back.
func NewLoopHost(frame time.Duration) *LoopHost {
	h := &LoopHost{wake: make(chan struct{}, 1)}
	if frame > 0 {
		h.frames = rate.NewLimiter(rate.Every(frame), 1)
	}
	return h
}

// Schedule implements Host. It is safe to call from any goroutine.
func (h *LoopHost) Schedule(fn func()) {
	h.mu.Lock()
	h.pending = append(h.pending, fn)
	h.mu.Unlock()

	select {
	case h.wake <- struct{}{}:
	default:
	}
}

// Now implements Host.
func (h *LoopHost) Now() time.Time { return time.Now() }

// Pending returns the number of callbacks waiting for the next frame.
func (h *LoopHost) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pending)
}

// Run executes frames until ctx is done. Panics raised by callbacks are not
// recovered.
func (h *LoopHost) Run(ctx context.Context) error {
	for {
		h.mu.Lock()
		frame := h.pending
		h.pending = nil
		h.mu.Unlock()

		if len(frame) == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-h.wake:
				continue
			}
		}

		if h.frames != nil {
			if err := h.frames.Wait(ctx); err != nil {
				return err
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		for _, fn := range frame {
			fn()
		}
	}
}

// ManualHost queues callbacks until the test runs them and exposes a clock
// that only moves when told to.
type ManualHost struct {
	mu    sync.Mutex
	queue []func()
	now   time.Time
	step  time.Duration
}

// NewManualHost creates a host whose clock starts at start.
func NewManualHost(start time.Time) *ManualHost {
	return &ManualHost{now: start}
}

// Schedule implements Host.
func (h *ManualHost) Schedule(fn func()) {
	h.mu.Lock()
	h.queue = append(h.queue, fn)
	h.mu.Unlock()
}

// Now implements Host. When a step is set, every call advances the clock by
// that step after reading it.
func (h *ManualHost) Now() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	t := h.now
	h.now = h.now.Add(h.step)
	return t
}

// Advance moves the clock forward by d.
func (h *ManualHost) Advance(d time.Duration) {
	h.mu.Lock()
	h.now = h.now.Add(d)
	h.mu.Unlock()
}

// SetStep makes every Now call advance the clock by d.
func (h *ManualHost) SetStep(d time.Duration) {
	h.mu.Lock()
	h.step = d
	h.mu.Unlock()
}

// Len returns the number of queued callbacks.
func (h *ManualHost) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.queue)
}

// RunNext runs the oldest queued callback. It reports false when the queue
// is empty.
func (h *ManualHost) RunNext() bool {
	h.mu.Lock()
	if len(h.queue) == 0 {
		h.mu.Unlock()
		return false
	}
	fn := h.queue[0]
	h.queue = h.queue[1:]
	h.mu.Unlock()

	fn()
	return true
}

// RunUntilIdle runs callbacks, including ones they schedule, until the queue
// is empty, and returns how many ran.
func (h *ManualHost) RunUntilIdle() int {
	n := 0
	for h.RunNext() {
		n++
	}
	return n
}
