package catalogsync

import (
	"sync"

	"github.com/agentstation/catalogsync/pkg/refresh"
)

// Hook function types for refresh events
type (
	// RefreshedHook is called after a cycle applied its snapshot
	RefreshedHook func(status refresh.Status)

	// RefreshFailedHook is called after a cycle failed; the previous snapshot stands
	RefreshFailedHook func(status refresh.Status)

	// RefreshSkippedHook is called when a scheduled cycle overlapped a running one
	RefreshSkippedHook func(provider string)
)

// Hooks registers callbacks for refresh events. Callbacks run on the cycle's
// goroutine and should return quickly.
type Hooks interface {
	OnRefreshed(RefreshedHook)
	OnRefreshFailed(RefreshFailedHook)
	OnRefreshSkipped(RefreshSkippedHook)
}

// Compile-time interface check to ensure proper implementation.
var _ refresh.Recorder = (*hooks)(nil)

// hooks fans refresh events out to callbacks and an optional recorder
type hooks struct {
	mu        sync.RWMutex
	recorder  refresh.Recorder
	refreshed []RefreshedHook
	failed    []RefreshFailedHook
	skipped   []RefreshSkippedHook
}

func newHooks(recorder refresh.Recorder) *hooks {
	return &hooks{recorder: recorder}
}

// OnRefreshed implements Hooks.
func (c *client) OnRefreshed(fn RefreshedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.refreshed = append(c.hooks.refreshed, fn)
}

// OnRefreshFailed implements Hooks.
func (c *client) OnRefreshFailed(fn RefreshFailedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.failed = append(c.hooks.failed, fn)
}

// OnRefreshSkipped implements Hooks.
func (c *client) OnRefreshSkipped(fn RefreshSkippedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.skipped = append(c.hooks.skipped, fn)
}

// CycleStarted implements refresh.Recorder.
func (h *hooks) CycleStarted(provider string) {
	if h.recorder != nil {
		h.recorder.CycleStarted(provider)
	}
}

// CycleSkipped implements refresh.Recorder.
func (h *hooks) CycleSkipped(provider string) {
	if h.recorder != nil {
		h.recorder.CycleSkipped(provider)
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.skipped {
		fn(provider)
	}
}

// CycleFinished implements refresh.Recorder.
func (h *hooks) CycleFinished(provider string, status refresh.Status) {
	if h.recorder != nil {
		h.recorder.CycleFinished(provider, status)
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if status.LastError != "" {
		for _, fn := range h.failed {
			fn(status)
		}
		return
	}
	for _, fn := range h.refreshed {
		fn(status)
	}
}
