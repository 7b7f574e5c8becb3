package manager

import (
	"time"

	"inferd/pkg/types"
)

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	m.mu.RLock()
	errMsg := m.err
	m.mu.RUnlock()

	resp := types.StatusResponse{
		Error:          errMsg,
		UptimeSeconds:  int64(time.Since(m.startTime).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
		EvictionsTotal: m.evictionsTotal.Load(),
		LoadsTotal:     m.loadsTotal.Load(),
	}
	items := m.sessions.Items()
	resp.Sessions = make([]types.SessionStatus, 0, len(items))
	for _, item := range items {
		inst := item.Value()
		if inst == nil {
			continue
		}
		m.mu.RLock()
		lastUsed := inst.LastUsed
		m.mu.RUnlock()
		resp.Sessions = append(resp.Sessions, types.SessionStatus{
			ModelID:       inst.ID,
			State:         string(inst.Session.State()),
			LastUsed:      lastUsed.Unix(),
			QueueLen:      len(inst.queueCh),
			Inflight:      len(inst.genCh),
			MaxQueueDepth: cap(inst.queueCh),
		})
	}
	return resp
}
