package session

// State represents the lifecycle state of a Session.
type State string

const (
	StateIdle       State = "idle"
	StatePreloading State = "preloading"
	StateReady      State = "ready"
	StateStreaming  State = "streaming"
	StateUnloaded   State = "unloaded"
)

// StopReason is the terminal classification of why generation ended.
type StopReason string

const (
	StopLength        StopReason = "length"
	StopSequence      StopReason = "stop-sequence"
	StopCancelled     StopReason = "cancelled"
	StopEndOfSequence StopReason = "end-of-sequence"
)

// AuthMode selects how model artifacts are accessed.
type AuthMode string

const (
	AuthNone         AuthMode = "none"
	AuthCredentialed AuthMode = "credentialed"
)

// ComputeTier hints at the execution resources the backend should use.
type ComputeTier string

const (
	TierSmall ComputeTier = "small"
	TierLarge ComputeTier = "large"
)

// ProviderConfig locates model artifacts and identifies the model to load.
// Immutable once constructed; created by the caller before Preload.
type ProviderConfig struct {
	// Location is the resolved path/URI of the model artifacts. Resolution
	// happens externally (see internal/registry); the session only consumes it.
	Location string
	// Auth selects the authentication mode for artifact access.
	Auth AuthMode
	// Model is the model identifier.
	Model string
	// Tier is a compute-tier hint forwarded to the backend.
	Tier ComputeTier
}

// SamplingParams configures token sampling for one generation request.
type SamplingParams struct {
	// Temperature must be >= 0.
	Temperature float64
	// TopP must be in [0, 1].
	TopP float64
	// Seed for reproducibility; 0 lets the backend choose.
	Seed int64
}

// Limits bounds one generation request.
type Limits struct {
	// MaxTokens is the maximum number of tokens to generate. Must be positive.
	MaxTokens int
	// Stop holds optional stop sequences. Empty strings are ignored and
	// never match.
	Stop []string
}

// Input is one generation request.
type Input struct {
	// Prompt is the text context.
	Prompt string
	// Images are opaque references forwarded to the backend untouched.
	Images []string
	Sampling SamplingParams
	Limits   Limits
}

// LoadProgress is one element of the preload progress sequence.
type LoadProgress struct {
	// Fraction of the load completed, in [0, 1].
	Fraction float64
	// Message is a human-readable progress note.
	Message string
	// Done marks the final element of a successful load.
	Done bool
}

// EventType tags a generation event variant.
type EventType string

const (
	EventTextDelta EventType = "text-delta"
	EventFinished  EventType = "finished"
	EventError     EventType = "error"
)

// Event is one element of the generation stream. Exactly one terminal
// event (finished or error) is produced per stream.
type Event struct {
	Type EventType
	// Text carries the fragment for text-delta events.
	Text string
	// Metrics is set on finished events.
	Metrics *Metrics
	// Err is set on error events.
	Err error
}
