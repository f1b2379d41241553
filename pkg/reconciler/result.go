package reconciler

import (
	"fmt"
	"time"

	"github.com/agentstation/catalogsync/pkg/provider"
)

// Result represents the outcome of a successful reconciliation cycle.
type Result struct {
	Provider    provider.Identity `json:"provider" yaml:"provider"`
	Collections map[string]int    `json:"collections" yaml:"collections"` // entity count per collection
	Entities    int               `json:"entities" yaml:"entities"`

	StartTime time.Time     `json:"startTime" yaml:"startTime"`
	EndTime   time.Time     `json:"endTime" yaml:"endTime"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// NewResult creates a new result with defaults.
func NewResult(identity provider.Identity) *Result {
	return &Result{
		Provider:    identity,
		Collections: make(map[string]int),
		StartTime:   time.Now(),
	}
}

// Finalize calculates duration and marks completion.
func (r *Result) Finalize() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	return fmt.Sprintf("%s: applied %d entities across %d collections in %s",
		r.Provider.Name(), r.Entities, len(r.Collections), r.Duration.Round(time.Millisecond))
}
