// Package refresh binds a reconciliation engine to a recurring schedule.
//
// A Controller starts Unconnected. Connect binds the catalog sink, moves it
// to Idle and registers a task named "<provider>:refresh" with the scheduler.
// Every scheduled invocation moves it to Refreshing for the duration of one
// cycle and back to Idle afterwards. Cycle failures are logged with the
// provider name and a per-cycle correlation id and then swallowed so the
// scheduler can invoke the task again at its next cadence.
package refresh

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agentstation/catalogsync/pkg/catalog"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/logging"
	"github.com/agentstation/catalogsync/pkg/provider"
	"github.com/agentstation/catalogsync/pkg/reconciler"
)

// Runner executes one reconciliation cycle against a sink.
type Runner interface {
	Identity() provider.Identity
	Run(ctx context.Context, sink catalog.Sink) (*reconciler.Result, error)
}

// Controller schedules and isolates refresh cycles for one provider.
type Controller struct {
	runner    Runner
	scheduler Scheduler
	timeout   time.Duration
	recorder  Recorder
	newID     func() string

	running atomic.Bool

	mu     sync.Mutex
	sink   catalog.Sink
	status Status
}

// NewController creates an unconnected controller.
func NewController(runner Runner, scheduler Scheduler, opts ...Option) (*Controller, error) {
	if runner == nil {
		return nil, errors.NewValidationError("runner", nil, "cannot be nil")
	}
	if scheduler == nil {
		return nil, errors.NewValidationError("scheduler", nil, "cannot be nil")
	}
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}

	identity := runner.Identity()
	return &Controller{
		runner:    runner,
		scheduler: scheduler,
		timeout:   o.timeout,
		recorder:  o.recorder,
		newID:     o.newID,
		status: Status{
			Provider: identity.Name(),
			TaskID:   identity.TaskID(),
			State:    StateUnconnected,
		},
	}, nil
}

// Name returns the provider name, which is also the sink location key.
func (c *Controller) Name() string {
	return c.runner.Identity().Name()
}

// TaskID returns the id the refresh task is registered under.
func (c *Controller) TaskID() string {
	return c.runner.Identity().TaskID()
}

// Connect binds sink and registers the recurring refresh task. A controller
// can be connected once; if the scheduler rejects the task the controller
// returns to the unconnected state.
func (c *Controller) Connect(ctx context.Context, sink catalog.Sink) error {
	if sink == nil {
		return errors.NewValidationError("sink", nil, "cannot be nil")
	}

	c.mu.Lock()
	if c.sink != nil {
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", c.Name(), errors.ErrAlreadyConnected)
	}
	c.sink = sink
	c.status.State = StateIdle
	c.mu.Unlock()

	task := Task{ID: c.TaskID(), Fn: c.scheduled}
	if err := c.scheduler.Run(ctx, task); err != nil {
		c.mu.Lock()
		c.sink = nil
		c.status.State = StateUnconnected
		c.mu.Unlock()
		return errors.WrapResource("schedule", "task", task.ID, err)
	}

	logging.FromContext(ctx).Info().
		Str(logging.FieldProvider, c.Name()).
		Str(logging.FieldTaskID, task.ID).
		Msg("Registered refresh task")
	return nil
}

// Refresh runs one cycle immediately and returns its outcome. It fails with
// a NotConnectedError before Connect and with ErrCycleInProgress while a
// cycle for this provider is already running.
func (c *Controller) Refresh(ctx context.Context) (*reconciler.Result, error) {
	sink := c.boundSink()
	if sink == nil {
		return nil, &errors.NotConnectedError{Provider: c.Name()}
	}
	if !c.running.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%s: %w", c.Name(), errors.ErrCycleInProgress)
	}
	defer c.running.Store(false)

	return c.cycle(ctx, sink)
}

// Status returns a snapshot of the controller's state and last outcome.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// scheduled is the closure registered with the scheduler. It never returns
// an error and never panics.
func (c *Controller) scheduled(ctx context.Context) {
	ctx = logging.WithProvider(ctx, c.Name())
	ctx = logging.WithTask(ctx, c.TaskID())
	logger := logging.FromContext(ctx)

	sink := c.boundSink()
	if sink == nil {
		logger.Error().Msg("Refresh task invoked before connect")
		return
	}

	if !c.running.CompareAndSwap(false, true) {
		logger.Warn().Msg("Previous refresh still running, skipping cycle")
		c.recorder.CycleSkipped(c.Name())
		return
	}
	defer c.running.Store(false)

	if _, err := c.cycle(ctx, sink); err != nil {
		logging.FromContext(ctx).Error().
			Err(err).
			Str(logging.FieldCorrelationID, c.Status().LastCorrelationID).
			Bool("upstreamUnavailable", errors.IsProviderUnavailable(err)).
			Bool("rateLimited", errors.IsRateLimited(err)).
			Msg("Refresh failed, previous snapshot left in place")
	}
}

// cycle runs the engine once with a fresh correlation id and deadline.
// Callers hold the running flag.
func (c *Controller) cycle(ctx context.Context, sink catalog.Sink) (result *reconciler.Result, err error) {
	correlationID := c.newID()
	ctx = logging.WithProvider(ctx, c.Name())
	ctx = logging.WithCorrelationID(ctx, correlationID)
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	started := time.Now()
	c.begin(correlationID, started)
	c.recorder.CycleStarted(c.Name())
	logging.FromContext(ctx).Debug().Msg("Refresh started")

	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("refresh %s panicked: %v", c.Name(), r)
		}
		c.recorder.CycleFinished(c.Name(), c.finish(started, result, err))
	}()

	return c.runner.Run(ctx, sink)
}

func (c *Controller) boundSink() catalog.Sink {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sink
}

func (c *Controller) begin(correlationID string, started time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status.State = StateRefreshing
	c.status.LastCorrelationID = correlationID
	c.status.LastAttempt = started
}

func (c *Controller) finish(started time.Time, result *reconciler.Result, err error) Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status.State = StateIdle
	c.status.Cycles++
	c.status.LastDuration = time.Since(started)
	if err != nil {
		c.status.ConsecutiveFailures++
		c.status.LastError = err.Error()
		return c.status
	}

	c.status.ConsecutiveFailures = 0
	c.status.LastError = ""
	c.status.LastSuccess = time.Now()
	if result != nil {
		c.status.Entities = result.Entities
	}
	return c.status
}
