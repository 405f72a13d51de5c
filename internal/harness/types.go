package harness

import "github.com/roach88/tokenreplay/internal/engine"

// Result is the outcome of a scenario run.
type Result struct {
	// Pass indicates overall success: every expectation held.
	Pass bool `json:"pass"`

	// Replay is the full log replay result.
	Replay engine.LogResult `json:"replay"`

	// Steps is the recorded step trace, in sequence order.
	Steps []engine.Step `json:"steps"`

	// Errors contains failed expectations.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []engine.Step{},
		Errors: []string{},
	}
}

// AddError adds a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
