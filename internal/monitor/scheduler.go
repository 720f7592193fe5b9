package monitor

import (
	"sync"
	"time"
)

// Scheduler runs periodic and one-shot tasks on a clock and hands them to post for execution
type Scheduler struct {
	clock Clock
	post  func(func())
}

// NewScheduler creates a scheduler; post serializes task bodies onto the owner's event loop
func NewScheduler(clock Clock, post func(func())) *Scheduler {
	return &Scheduler{clock: clock, post: post}
}

// Task is a scheduled unit of work that can be cancelled
type Task struct {
	mu      sync.Mutex
	s       *Scheduler
	period  time.Duration
	fn      func()
	timer   Timer
	stopped bool
}

// Every runs fn every period, first after one period has elapsed
func (s *Scheduler) Every(period time.Duration, fn func()) *Task {
	t := &Task{s: s, period: period, fn: fn}
	t.mu.Lock()
	t.timer = s.clock.AfterFunc(period, t.fire)
	t.mu.Unlock()
	return t
}

// After runs fn once after delay
func (s *Scheduler) After(delay time.Duration, fn func()) *Task {
	t := &Task{s: s, fn: fn}
	t.mu.Lock()
	t.timer = s.clock.AfterFunc(delay, t.fire)
	t.mu.Unlock()
	return t
}

func (t *Task) fire() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	if t.period > 0 {
		t.timer = t.s.clock.AfterFunc(t.period, t.fire)
	}
	t.mu.Unlock()

	t.s.post(func() {
		// a task stopped after firing but before running is skipped
		if t.Stopped() {
			return
		}
		t.fn()
	})
}

// Stop cancels the task; a body already running is not interrupted
func (t *Task) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
	}
}

// Stopped reports whether the task was cancelled
func (t *Task) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}
