package models

// StepStatus is the result of one remote call for a unit.
type StepStatus string

const (
	StatusOK      StepStatus = "ok"
	StatusSkipped StepStatus = "skipped"
)

// SkipReason explains why a step produced nothing.
type SkipReason string

const (
	ReasonEmptyInput    SkipReason = "empty_input"
	ReasonRequestFailed SkipReason = "request_failed"
	ReasonNoContent     SkipReason = "no_content"
	ReasonNotANumber    SkipReason = "not_a_number"
	ReasonOutOfRange    SkipReason = "out_of_range"
	ReasonNotGenerated  SkipReason = "not_generated"
)

// Step records what happened to a single generation or rating call.
type Step struct {
	Status StepStatus `json:"status"`
	Reason SkipReason `json:"reason,omitempty"`
	Detail string     `json:"detail,omitempty"`
}

// OK reports whether the step produced a value.
func (s Step) OK() bool {
	return s.Status == StatusOK
}

// Okay returns a successful step.
func Okay() Step {
	return Step{Status: StatusOK}
}

// Skipped returns a skipped step with a reason and optional detail.
func Skipped(reason SkipReason, detail string) Step {
	return Step{Status: StatusSkipped, Reason: reason, Detail: detail}
}

// Outcome is the per-unit record of a run.
type Outcome struct {
	Kind       UnitKind `json:"kind"`
	Source     string   `json:"source"`
	Position   int      `json:"position"`
	Generation Step     `json:"generation"`
	Rating     Step     `json:"rating"`
	// Conforms is set for code units only: whether the generated output
	// matched the conversations shape.
	Conforms *bool `json:"conforms,omitempty"`
	// Truncated marks units built from incomplete dataset rows.
	Truncated bool `json:"truncated,omitempty"`
}
