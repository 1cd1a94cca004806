// Package schedule provides the cooperative batch scheduler the traversal
// strategies run on. Work is expressed as chunked tasks; the scheduler
// drains exactly one chunk per tick so a host loop can interleave theming
// work with whatever else it is doing. Ticks can be driven manually or by
// a wall-clock frame interval.
package schedule

import (
	"context"
	"sync"
	"time"
)

// DefaultFrameInterval approximates one display frame.
const DefaultFrameInterval = 16 * time.Millisecond

// Task processes one bounded chunk of work and reports whether the task
// has finished. A task must never block; long work is split across calls.
type Task func() (done bool)

// Handle identifies a submitted task and allows cancelling it.
type Handle struct {
	j *job
}

type job struct {
	run       Task
	cancelled bool
}

// Cancel marks the task so the scheduler discards it instead of running
// further chunks. Safe to call more than once and after completion.
func (h *Handle) Cancel() {
	if h == nil || h.j == nil {
		return
	}
	h.j.cancelled = true
}

// Scheduler is a FIFO queue of chunked tasks.
type Scheduler struct {
	mu    sync.Mutex
	queue []*job
}

// New creates an empty scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// Submit appends a task to the queue and returns its handle.
func (s *Scheduler) Submit(t Task) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	j := &job{run: t}
	s.queue = append(s.queue, j)
	return &Handle{j: j}
}

// Tick runs one chunk of the front task. Finished and cancelled tasks are
// dropped. Returns true while work remains queued.
func (s *Scheduler) Tick() bool {
	s.mu.Lock()
	var j *job
	for len(s.queue) > 0 {
		if s.queue[0].cancelled {
			s.queue = s.queue[1:]
			continue
		}
		j = s.queue[0]
		break
	}
	s.mu.Unlock()

	if j == nil {
		return false
	}

	done := j.run()

	s.mu.Lock()
	defer s.mu.Unlock()
	if (done || j.cancelled) && len(s.queue) > 0 && s.queue[0] == j {
		s.queue = s.queue[1:]
	}
	return len(s.queue) > 0
}

// Idle reports whether no runnable work is queued.
func (s *Scheduler) Idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.queue {
		if !j.cancelled {
			return false
		}
	}
	return true
}

// Drain ticks until the queue is empty or the context is cancelled.
// Chunks run back to back with no frame pacing; this is the synchronous
// completion path used by batch processing.
func (s *Scheduler) Drain(ctx context.Context) error {
	for s.Tick() {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return ctx.Err()
}

// Run drives the scheduler at the given frame interval until the context
// is cancelled. A zero interval uses DefaultFrameInterval. Idle ticks are
// cheap; the loop keeps running so later submissions are picked up.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}
