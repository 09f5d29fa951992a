package harness

import (
	"github.com/roach88/strata/internal/ir"
	"github.com/roach88/strata/internal/timeline"
)

// StepTrace is one executed step: the command, how it ended and the
// notifications it caused.
type StepTrace struct {
	Seq           int64             `json:"seq"`
	Op            string            `json:"op"`
	Composition   string            `json:"composition"`
	Status        string            `json:"status"`
	ErrorCode     string            `json:"error_code,omitempty"`
	Notifications []ir.Notification `json:"notifications"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step matched its expectation and every
	// assertion held.
	Pass bool `json:"pass"`

	// Steps holds one entry per executed step, in order.
	Steps []StepTrace `json:"steps"`

	// Trace is the flat notification trace of the session.
	Trace []ir.Notification `json:"trace"`

	// Outcomes are the engine outcomes, one per step.
	Outcomes []ir.Outcome `json:"outcomes"`

	// Errors contains expectation and assertion failures.
	Errors []string `json:"errors,omitempty"`

	// Session is the session token the scenario ran under.
	Session string `json:"session"`

	// Timeline is the final timeline, for assertions.
	Timeline *timeline.Timeline `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Steps:    []StepTrace{},
		Trace:    []ir.Notification{},
		Outcomes: []ir.Outcome{},
		Errors:   []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep records an executed step and its notifications.
func (r *Result) AddStep(op, composition string, out ir.Outcome, notes []ir.Notification) {
	if notes == nil {
		notes = []ir.Notification{}
	}
	r.Steps = append(r.Steps, StepTrace{
		Seq:           out.Seq,
		Op:            op,
		Composition:   composition,
		Status:        out.Status,
		ErrorCode:     out.ErrorCode,
		Notifications: notes,
	})
	r.Outcomes = append(r.Outcomes, out)
	r.Trace = append(r.Trace, notes...)
}
