package manager

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/rs/zerolog"

	"inferd/internal/session"
	"inferd/pkg/types"
)

// Manager coordinates inference sessions: at most one session per model, a
// single in-flight generation per session, and TTL eviction of idle ones.
type Manager struct {
	mu           sync.RWMutex
	registry     []types.Model
	defaultModel string
	err          string

	// ensureMu serializes session creation so exactly one session exists
	// per backend handle.
	ensureMu sync.Mutex
	sessions *ttlcache.Cache[string, *Instance]

	backends  BackendFactory
	publisher EventPublisher
	log       zerolog.Logger

	maxQueueDepth int
	maxWait       time.Duration
	drainTimeout  time.Duration
	startTime     time.Time

	loadsTotal     atomic.Uint64
	evictionsTotal atomic.Uint64
}

// Instance pairs a session with its admission queue.
type Instance struct {
	ID      string
	Session *session.Session
	// LastUsed is guarded by the manager mutex.
	LastUsed time.Time
	// Queueing primitives
	genCh   chan struct{} // size 1: single in-flight generation
	queueCh chan struct{} // buffered: queue slots
}

// ListModels returns a copy of the model registry.
func (m *Manager) ListModels() []types.Model {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Model, len(m.registry))
	copy(out, m.registry)
	return out
}

// Ready reports whether any session is ready to serve.
func (m *Manager) Ready() bool {
	for _, item := range m.sessions.Items() {
		if inst := item.Value(); inst != nil && inst.Session.State() == session.StateReady {
			return true
		}
	}
	return false
}

// Cancel requests cooperative cancellation of the generation running on the
// given model's session. It is a no-op when the session is not loaded.
func (m *Manager) Cancel(modelID string) error {
	if modelID == "" {
		modelID = m.defaultModel
	}
	item := m.sessions.Get(modelID)
	if item == nil {
		return ErrModelNotFound(modelID)
	}
	item.Value().Session.Cancel().Set(true)
	m.publisher.Publish(Event{Name: "cancel_requested", ModelID: modelID})
	return nil
}

// Close unloads all sessions and stops the eviction loop.
func (m *Manager) Close() {
	for key := range m.sessions.Items() {
		_ = m.Unload(key)
	}
	m.sessions.Stop()
}

// Helper: find model in registry by id.
func (m *Manager) getModelByID(id string) (types.Model, bool) {
	for _, mdl := range m.registry {
		if mdl.ID == id {
			return mdl, true
		}
	}
	return types.Model{}, false
}
