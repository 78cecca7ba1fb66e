package scheduler

import "sync/atomic"

// JobCounter hands out monotonically increasing job ids. Starting a new id
// makes every older id stale.
type JobCounter struct {
	current atomic.Uint64
}

// Next starts a new job and returns its id.
func (c *JobCounter) Next() uint64 { return c.current.Add(1) }

// Current returns the id of the latest job.
func (c *JobCounter) Current() uint64 { return c.current.Load() }

// IsStale reports whether a newer job has started since id.
func (c *JobCounter) IsStale(id uint64) bool { return c.current.Load() != id }

// Render starts a new pass on jobs and runs it chunked. Any pass started
// earlier on the same counter stops at its next tick and never completes.
// Additional cancellation predicates are combined with the staleness check.
func Render[T any](s *Scheduler, jobs *JobCounter, src Source[T], fn func(item T, i int), onComplete func(), extra ...func() bool) (*Job, uint64) {
	id := jobs.Next()
	cancelled := func() bool {
		if jobs.IsStale(id) {
			return true
		}
		for _, c := range extra {
			if c() {
				return true
			}
		}
		return false
	}
	return RunChunked(s, src, fn, OnComplete(onComplete), IsCancelled(cancelled)), id
}
