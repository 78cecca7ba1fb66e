package scheduler

import (
	"log/slog"
	"sync/atomic"
	"time"
)

const (
	// DefaultBatchSize is the number of items processed between budget checks.
	DefaultBatchSize = 50
	// DefaultBudget is the time a tick may run before yielding.
	DefaultBudget = 12 * time.Millisecond
)

// State is the lifecycle state of a job.
type State int32

const (
	Idle State = iota
	Running
	Yielded
	Completed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Yielded:
		return "yielded"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further ticks will run.
func (s State) Terminal() bool { return s == Completed || s == Cancelled }

// Scheduler runs chunked jobs on a host.
type Scheduler struct {
	host      Host
	batchSize int
	budget    time.Duration
	logger    *slog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithBatchSize sets the number of items between budget checks.
func WithBatchSize(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithBudget sets the time a tick may run before yielding.
func WithBudget(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.budget = d
		}
	}
}

// WithLogger sets the logger for job diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a scheduler on host.
func New(host Host, optFns ...Option) *Scheduler {
	s := &Scheduler{
		host:      host,
		batchSize: DefaultBatchSize,
		budget:    DefaultBudget,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, fn := range optFns {
		fn(s)
	}
	return s
}

// Host returns the host jobs are scheduled on.
func (s *Scheduler) Host() Host { return s.host }

// Job tracks one chunked traversal.
type Job struct {
	state     atomic.Int32
	processed atomic.Int64
	ticks     atomic.Int64
	yields    atomic.Int64
}

// State returns the current state.
func (j *Job) State() State { return State(j.state.Load()) }

// Processed returns the number of items visited so far.
func (j *Job) Processed() int { return int(j.processed.Load()) }

// Ticks returns the number of ticks that ran.
func (j *Job) Ticks() int { return int(j.ticks.Load()) }

// Yields returns how often the job handed control back to the host.
func (j *Job) Yields() int { return int(j.yields.Load()) }

type runConfig struct {
	onComplete  func()
	isCancelled func() bool
}

// RunOption configures a single job.
type RunOption func(*runConfig)

// OnComplete sets the callback invoked once after the last item.
func OnComplete(fn func()) RunOption {
	return func(c *runConfig) { c.onComplete = fn }
}

// IsCancelled sets the predicate consulted at every tick and before
// completion.
func IsCancelled(fn func() bool) RunOption {
	return func(c *runConfig) { c.isCancelled = fn }
}

// RunChunked schedules a traversal of src, calling fn for every item in
// order. The first tick runs when the host next runs callbacks.
func RunChunked[T any](s *Scheduler, src Source[T], fn func(item T, i int), optFns ...RunOption) *Job {
	cfg := runConfig{}
	for _, o := range optFns {
		o(&cfg)
	}
	cancelled := cfg.isCancelled
	if cancelled == nil {
		cancelled = func() bool { return false }
	}

	job := &Job{}
	n := src.Len()
	next := 0

	var tick func()
	tick = func() {
		if cancelled() {
			job.state.Store(int32(Cancelled))
			s.logger.Debug("chunked job cancelled", "processed", next, "total", n)
			return
		}
		job.state.Store(int32(Running))
		job.ticks.Add(1)

		start := s.host.Now()
		done := 0
		for next < n {
			fn(src.At(next), next)
			next++
			done++
			job.processed.Store(int64(next))

			if done%s.batchSize == 0 && next < n && s.host.Now().Sub(start) > s.budget {
				job.state.Store(int32(Yielded))
				job.yields.Add(1)
				s.host.Schedule(tick)
				return
			}
		}

		if cancelled() {
			job.state.Store(int32(Cancelled))
			return
		}
		job.state.Store(int32(Completed))
		if cfg.onComplete != nil {
			cfg.onComplete()
		}
	}

	s.host.Schedule(tick)
	return job
}
