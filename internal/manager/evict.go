package manager

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"inferd/internal/session"
)

// initSessions builds the TTL cache that owns loaded sessions. Hits touch
// the TTL, so a session only expires after idleTTL without any request.
func (m *Manager) initSessions(idleTTL time.Duration) {
	m.sessions = ttlcache.New[string, *Instance](
		ttlcache.WithTTL[string, *Instance](idleTTL),
	)
	m.sessions.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, *Instance]) {
		inst := item.Value()
		if inst == nil {
			return
		}
		if reason == ttlcache.EvictionReasonExpired && instBusy(inst) {
			// Expired mid-request: re-arm instead of unloading. Set must not
			// run inside the eviction callback, so re-insert asynchronously.
			go m.sessions.Set(inst.ID, inst, ttlcache.DefaultTTL)
			return
		}
		if err := inst.Session.Unload(); err != nil {
			m.log.Warn().Err(err).Str("model", inst.ID).Msg("evicted session unload failed")
		}
		if reason == ttlcache.EvictionReasonExpired {
			m.evictionsTotal.Add(1)
			evictionsCounter.Inc()
			m.publisher.Publish(Event{Name: "session_evicted", ModelID: inst.ID})
			m.log.Info().Str("model", inst.ID).Msg("idle session evicted")
		}
	})
	go m.sessions.Start()
}

func instBusy(inst *Instance) bool {
	return len(inst.genCh) > 0 || len(inst.queueCh) > 0
}

// Unload initiates a graceful drain of a session and removes it.
// - Waits up to drainTimeout for in-flight and queued requests to finish.
// - Unloads the session (via the cache eviction hook) and removes the entry.
func (m *Manager) Unload(modelID string) error {
	if modelID == "" {
		return ErrModelNotFound("(unspecified)")
	}
	item := m.sessions.Get(modelID, ttlcache.WithDisableTouchOnHit[string, *Instance]())
	if item == nil {
		return ErrModelNotFound(modelID)
	}
	inst := item.Value()
	m.publisher.Publish(Event{Name: "unload_start", ModelID: modelID})

	deadline := time.Now().Add(m.drainTimeout)
	for instBusy(inst) {
		if time.Now().After(deadline) {
			m.publisher.Publish(Event{Name: "unload_timeout", ModelID: modelID, Fields: map[string]any{
				"inflight": len(inst.genCh), "queue": len(inst.queueCh),
			}})
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	// A stream still running after the drain window holds the session in
	// streaming state; interrupt it cooperatively before unloading.
	if inst.Session.State() == session.StateStreaming {
		inst.Session.Cancel().Set(true)
		for inst.Session.State() == session.StateStreaming && !time.Now().After(deadline.Add(m.drainTimeout)) {
			time.Sleep(10 * time.Millisecond)
		}
	}

	m.sessions.Delete(modelID) // eviction hook performs the session unload
	m.publisher.Publish(Event{Name: "unload_done", ModelID: modelID})
	return nil
}
