package model

import "fmt"

// InvalidInputError reports a malformed driver or passenger record. The
// optimizer rejects the whole snapshot before building the cost model, so
// the error always names the first offending record.
type InvalidInputError struct {
	Kind   string // "driver" or "passenger"
	ID     string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("invalid %s record: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Kind, e.ID, e.Reason)
}
