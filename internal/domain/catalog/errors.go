package catalog

import "fmt"

// ValidationError indicates user-supplied field values were rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DuplicateError indicates a product with the same name (ignoring case)
// already exists.
type DuplicateError struct {
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("product %q already exists", e.Name)
}

// NotFoundError indicates no product matches the requested name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product %q not found", e.Name)
}

// CancelledError indicates the caller declined a confirmation step.
// Nothing was changed.
type CancelledError struct {
	Step string
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("operation cancelled at %s", e.Step)
}

// Confirmation steps reported by CancelledError.
const (
	StepConfirm   = "confirmation"
	StepClearWord = "clear word"
)
