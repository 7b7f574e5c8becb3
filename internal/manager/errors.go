package manager

import "fmt"

// tooBusyError signals queue timeout/overflow for 429 mapping.
type tooBusyError struct{ modelID string }

func (e tooBusyError) Error() string { return "too busy: " + e.modelID }

// ErrTooBusy returns an error for a generation rejected by admission control.
func ErrTooBusy(modelID string) error { return tooBusyError{modelID: modelID} }

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	_, ok := err.(tooBusyError)
	return ok
}

// modelNotFoundError signals a model id missing from the registry.
type modelNotFoundError struct{ id string }

func (e modelNotFoundError) Error() string { return "model not found: " + e.id }

// ErrModelNotFound returns an error when a requested model id is not present in the registry.
func ErrModelNotFound(id string) error { return modelNotFoundError{id: id} }

// IsModelNotFound reports whether the error indicates a missing model id.
func IsModelNotFound(err error) bool {
	_, ok := err.(modelNotFoundError)
	return ok
}

// quantIncompatibleError signals a group size that does not divide the
// model's trailing weight dimension.
type quantIncompatibleError struct {
	id        string
	dim       int
	groupSize int
}

func (e quantIncompatibleError) Error() string {
	return fmt.Sprintf("model %s: group size %d incompatible with trailing dimension %d", e.id, e.groupSize, e.dim)
}

// ErrQuantIncompatible constructs a quantIncompatibleError.
func ErrQuantIncompatible(id string, dim, groupSize int) error {
	return quantIncompatibleError{id: id, dim: dim, groupSize: groupSize}
}

// IsQuantIncompatible reports whether err indicates an invalid quantization layout.
func IsQuantIncompatible(err error) bool {
	_, ok := err.(quantIncompatibleError)
	return ok
}
