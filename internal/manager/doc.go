// Package manager provides lifecycle, admission, and streaming coordination
// for inference sessions. It is structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, simple getters.
//   - config.go: Config and package defaults; NewWithConfig applies defaults.
//   - errors.go: error types and helpers (IsTooBusy, IsModelNotFound, ...).
//   - admission.go: per-session queueing and generation admission.
//   - ensure.go: session creation and preload.
//   - evict.go: TTL-based idle session eviction.
//   - infer.go: generation API entry point and NDJSON streaming.
//   - events.go: lifecycle event publisher.
//   - metrics.go: prometheus counters for generations and tokens.
//   - status_report.go: Status reporting helpers.
//
// External packages should treat this package as the orchestration layer and
// use public methods only (NewWithConfig, Infer, Unload, Cancel, Status,
// ListModels, Ready, Close). Internal types are subject to change.
package manager
