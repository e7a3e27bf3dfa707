package harness

import (
	"github.com/roach88/actionroute/internal/analytics"
	"github.com/roach88/actionroute/internal/effect"
)

// TraceStep is the outcome of one scenario step.
type TraceStep struct {
	Step      int
	ActionID  string
	Decision  analytics.Decision
	Effect    effect.Effect
	Simulated bool
	Terminal  bool

	// Seq is the seq of the recorded analytics event, or 0 for previews.
	Seq int64
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool

	Trace []TraceStep

	// Events are the recorded analytics events in seq order.
	Events []analytics.Event

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceStep{},
		Events: []analytics.Event{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
