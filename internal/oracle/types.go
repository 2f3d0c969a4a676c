package oracle

import "fmt"

// Decision is the normalized output of one oracle invocation for a window.
// It is consumed immediately to build a WindowResult and never persisted.
type Decision struct {
	// Summary is the vision model's natural-language description of the
	// window.
	Summary string
	// TriggeredRuleIDs lists the rule ids the policy model considered
	// satisfied, in the order the model returned them. Normalized at the
	// boundary: a missing or malformed field degrades to an empty list.
	TriggeredRuleIDs []string
	// Reasoning is the model's free-text justification, if any.
	Reasoning string
	// RawText is the verbatim policy response, kept for diagnostics.
	RawText string
}

// InvokeError wraps a failed oracle call with the stage that failed.
type InvokeError struct {
	Stage string
	Err   error
}

func (e *InvokeError) Error() string {
	return fmt.Sprintf("oracle %s: %v", e.Stage, e.Err)
}

func (e *InvokeError) Unwrap() error {
	return e.Err
}
