package refresh

import (
	"time"
)

// State is the controller lifecycle state.
type State int32

// Controller states. There is no terminal state; the host process owns shutdown.
const (
	StateUnconnected State = iota
	StateIdle
	StateRefreshing
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateUnconnected:
		return "unconnected"
	case StateIdle:
		return "idle"
	case StateRefreshing:
		return "refreshing"
	default:
		return "unknown"
	}
}

// Status is a point-in-time view of a controller.
type Status struct {
	Provider string `json:"provider" yaml:"provider"`
	TaskID   string `json:"taskId" yaml:"taskId"`
	State    State  `json:"-" yaml:"-"`

	Cycles              int           `json:"cycles" yaml:"cycles"`
	ConsecutiveFailures int           `json:"consecutiveFailures" yaml:"consecutiveFailures"`
	LastCorrelationID   string        `json:"lastCorrelationId,omitempty" yaml:"lastCorrelationId,omitempty"`
	LastAttempt         time.Time     `json:"lastAttempt,omitzero" yaml:"lastAttempt,omitempty"`
	LastSuccess         time.Time     `json:"lastSuccess,omitzero" yaml:"lastSuccess,omitempty"`
	LastDuration        time.Duration `json:"lastDuration" yaml:"lastDuration"`
	LastError           string        `json:"lastError,omitempty" yaml:"lastError,omitempty"`
	Entities            int           `json:"entities" yaml:"entities"`
}

// Healthy reports whether the controller has completed at least one cycle
// and the most recent one succeeded.
func (s Status) Healthy() bool {
	return s.State != StateUnconnected && s.Cycles > 0 &&
		s.ConsecutiveFailures == 0 && s.LastError == ""
}
