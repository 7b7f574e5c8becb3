package session

import "fmt"

// configurationError signals invalid sampling/limit/provider values.
type configurationError struct{ msg string }

func (e configurationError) Error() string { return "invalid configuration: " + e.msg }

// ErrConfiguration constructs a configurationError.
func ErrConfiguration(msg string) error { return configurationError{msg: msg} }

// IsConfiguration reports whether err indicates invalid caller-supplied values.
func IsConfiguration(err error) bool {
	_, ok := err.(configurationError)
	return ok
}

// modelNotFoundError signals that a resolved location is missing required artifacts.
type modelNotFoundError struct{ location string }

func (e modelNotFoundError) Error() string { return "model not found: " + e.location }

// ErrModelNotFound constructs a modelNotFoundError for a location.
func ErrModelNotFound(location string) error { return modelNotFoundError{location: location} }

// IsModelNotFound reports whether err indicates missing model artifacts.
func IsModelNotFound(err error) bool {
	_, ok := err.(modelNotFoundError)
	return ok
}

// invalidStateError signals a lifecycle method invoked out of order.
type invalidStateError struct {
	op    string
	state State
}

func (e invalidStateError) Error() string {
	return fmt.Sprintf("invalid state: cannot %s while %s", e.op, e.state)
}

// ErrInvalidState constructs an invalidStateError.
func ErrInvalidState(op string, state State) error { return invalidStateError{op: op, state: state} }

// IsInvalidState reports whether err indicates an out-of-order lifecycle call.
func IsInvalidState(err error) bool {
	_, ok := err.(invalidStateError)
	return ok
}

// backendFailureError wraps an opaque error surfaced from the execution backend.
type backendFailureError struct{ err error }

func (e backendFailureError) Error() string { return "backend failure: " + e.err.Error() }
func (e backendFailureError) Unwrap() error { return e.err }

// ErrBackendFailure wraps err as a backend failure. A nil err returns nil.
func ErrBackendFailure(err error) error {
	if err == nil {
		return nil
	}
	return backendFailureError{err: err}
}

// IsBackendFailure reports whether err originated in the execution backend.
func IsBackendFailure(err error) bool {
	_, ok := err.(backendFailureError)
	return ok
}

// backendUnavailableError signals a missing runtime dependency (e.g. a
// binary built without llama support) so callers can map it to 503.
type backendUnavailableError struct{ msg string }

func (e backendUnavailableError) Error() string { return e.msg }

// ErrBackendUnavailable constructs a backendUnavailableError.
func ErrBackendUnavailable(msg string) error { return backendUnavailableError{msg: msg} }

// IsBackendUnavailable reports whether err indicates a missing runtime dependency.
func IsBackendUnavailable(err error) bool {
	_, ok := err.(backendUnavailableError)
	return ok
}
