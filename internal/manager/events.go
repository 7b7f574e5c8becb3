package manager

// Event is one session-lifecycle notification: loads (load_progress,
// load_done, load_failed), unloads, idle evictions, and cancel requests.
// Name and model id are always set; anything extra rides in Fields.
type Event struct {
	Name    string
	ModelID string
	Fields  map[string]any
}

// EventPublisher receives lifecycle events from the manager. Publish is
// called inline on load/unload paths, so implementations must be cheap,
// non-blocking, and must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default when Config.Publisher is nil; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
