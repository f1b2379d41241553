// Package scheduler provides an in-process interval scheduler that runs
// refresh tasks on a fixed cadence.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/logging"
	"github.com/agentstation/catalogsync/pkg/refresh"
)

// Compile-time interface check to ensure proper implementation.
var _ refresh.Scheduler = (*Interval)(nil)

// Interval runs every registered task once after an initial delay and then
// every interval until stopped. Each task has its own goroutine and ticker.
type Interval struct {
	interval     time.Duration
	initialDelay time.Duration

	mu      sync.Mutex
	tasks   map[string]context.CancelFunc
	wg      sync.WaitGroup
	stopped bool
}

// Option configures an Interval scheduler.
type Option func(*Interval)

// WithInitialDelay delays the first run of every task.
func WithInitialDelay(d time.Duration) Option {
	return func(s *Interval) {
		s.initialDelay = d
	}
}

// NewInterval creates a scheduler with the given cadence.
func NewInterval(interval time.Duration, opts ...Option) (*Interval, error) {
	if interval <= 0 {
		return nil, &errors.ValidationError{
			Field:   "interval",
			Value:   interval,
			Message: "refresh interval must be positive",
		}
	}
	s := &Interval{
		interval: interval,
		tasks:    make(map[string]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run implements refresh.Scheduler. Task ids must be unique. The task keeps
// running until ctx is cancelled or Stop is called.
func (s *Interval) Run(ctx context.Context, task refresh.Task) error {
	if task.ID == "" || task.Fn == nil {
		return errors.NewValidationError("task", task.ID, "id and fn are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return errors.NewValidationError("scheduler", nil, "scheduler is stopped")
	}
	if _, exists := s.tasks[task.ID]; exists {
		return errors.NewValidationError("task", task.ID, "task already registered")
	}

	// The loop outlives the registering call, so it only inherits ctx values.
	taskCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stop := context.AfterFunc(ctx, cancel)
	s.tasks[task.ID] = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer stop()
		s.loop(logging.WithTask(taskCtx, task.ID), task)
	}()

	logging.FromContext(ctx).Debug().
		Str(logging.FieldTaskID, task.ID).
		Dur("interval", s.interval).
		Msg("Scheduled task")
	return nil
}

func (s *Interval) loop(ctx context.Context, task refresh.Task) {
	delay := time.NewTimer(s.initialDelay)
	defer delay.Stop()
	select {
	case <-delay.C:
	case <-ctx.Done():
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		task.Fn(ctx)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// Tasks returns the ids of registered tasks.
func (s *Interval) Tasks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.tasks))
	for id := range s.tasks {
		ids = append(ids, id)
	}
	return ids
}

// Stop cancels every task and waits for running invocations to return.
func (s *Interval) Stop() {
	s.mu.Lock()
	s.stopped = true
	for _, cancel := range s.tasks {
		cancel()
	}
	s.mu.Unlock()

	s.wg.Wait()
}
