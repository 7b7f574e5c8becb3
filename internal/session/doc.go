// Package session implements the inference-session layer between callers
// and a tensor-execution backend. It is structured into small files by
// concern:
//
//   - session.go: core Session type, lifecycle state, Unload.
//   - types.go: caller-facing types (ProviderConfig, Input, Event, ...).
//   - errors.go: error types and helpers (IsInvalidState, IsConfiguration, ...).
//   - preload.go: Preload and the lazy progress sequence.
//   - stream.go: Stream and the lazy generation-event sequence.
//   - stopseq.go: incremental stop-sequence detector.
//   - cancel.go: cooperative cancellation flag.
//   - metrics.go: completion metrics and rate reporting.
//   - backend.go: the opaque Backend/TokenStream boundary.
//   - backend_memory.go: in-memory scripted backend for tests and dev.
//
// Build tags and runtimes:
//
//   - In-process llama: uses the go-llama.cpp backend. Enabled with
//     `-tags=llama`. Files: backend_llama.go, llama_cgo.go (linker rpath
//     hints). A no-CGO stub exists when the tag is not set:
//     backend_default.go.
//
// A Session is not reentrant: one generation stream at a time. The only
// state shared across goroutines by convention is the CancelFlag.
package session
