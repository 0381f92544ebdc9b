package service

import "fmt"

// Validation rules reported in ValidationError.Rule.
const (
	RuleRequired = "required"
	RuleMaxLen   = "max"
	RuleEnum     = "enum"
	RuleRange    = "range"
)

// ValidationError rejects a task input before it reaches the repository.
type ValidationError struct {
	Field   string
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
