package refresh

import "context"

// Task is one named recurring function handed to a Scheduler.
type Task struct {
	ID string
	Fn func(ctx context.Context)
}

// Scheduler runs registered tasks periodically. Cadence is entirely the
// scheduler's concern; the controller only supplies the function.
type Scheduler interface {
	Run(ctx context.Context, task Task) error
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(ctx context.Context, task Task) error

// Run implements Scheduler.
func (f SchedulerFunc) Run(ctx context.Context, task Task) error {
	return f(ctx, task)
}

// Recorder observes refresh cycles, typically to export metrics.
type Recorder interface {
	CycleStarted(provider string)
	CycleSkipped(provider string)
	CycleFinished(provider string, status Status)
}

type nopRecorder struct{}

func (nopRecorder) CycleStarted(string)          {}
func (nopRecorder) CycleSkipped(string)          {}
func (nopRecorder) CycleFinished(string, Status) {}
