package manager

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"inferd/internal/quant"
	"inferd/internal/session"
	"inferd/pkg/types"
)

// ensure returns the loaded instance for modelID, creating and preloading a
// session if necessary. Creation is serialized so exactly one session exists
// per backend handle.
func (m *Manager) ensure(ctx context.Context, modelID string) (*Instance, error) {
	if item := m.sessions.Get(modelID); item != nil {
		inst := item.Value()
		m.mu.Lock()
		inst.LastUsed = time.Now()
		m.mu.Unlock()
		return inst, nil
	}

	m.ensureMu.Lock()
	defer m.ensureMu.Unlock()
	// Re-check under the creation lock.
	if item := m.sessions.Get(modelID); item != nil {
		return item.Value(), nil
	}

	mdl, ok := m.getModelByID(modelID)
	if !ok {
		return nil, ErrModelNotFound(modelID)
	}
	if err := m.preflightQuant(mdl); err != nil {
		return nil, err
	}

	sess := session.New(m.backends(mdl), session.WithLogger(m.log))
	cfg := session.ProviderConfig{
		Location: mdl.Path,
		Auth:     session.AuthNone,
		Model:    mdl.ID,
		Tier:     session.TierSmall,
	}
	for p, err := range sess.Preload(ctx, cfg) {
		if err != nil {
			m.setErr(err.Error())
			m.publisher.Publish(Event{Name: "load_failed", ModelID: modelID, Fields: map[string]any{"error": err.Error()}})
			return nil, err
		}
		m.publisher.Publish(Event{Name: "load_progress", ModelID: modelID, Fields: map[string]any{
			"fraction": p.Fraction, "message": p.Message,
		}})
	}

	inst := &Instance{
		ID:       modelID,
		Session:  sess,
		LastUsed: time.Now(),
		genCh:    make(chan struct{}, 1),
		queueCh:  make(chan struct{}, m.maxQueueDepth),
	}
	m.sessions.Set(modelID, inst, ttlcache.DefaultTTL)
	m.setErr("")
	m.loadsTotal.Add(1)
	loadsCounter.Inc()
	m.publisher.Publish(Event{Name: "load_done", ModelID: modelID})
	m.log.Info().Str("model", modelID).Str("path", mdl.Path).Msg("session loaded")
	return inst, nil
}

// preflightQuant validates the model's quantization metadata before any
// backend work is issued.
func (m *Manager) preflightQuant(mdl types.Model) error {
	qc := quant.Config{GroupSize: mdl.GroupSize, Bits: mdl.Bits, Mode: mdl.Quant}
	if qc.GroupSize > 0 && mdl.HiddenDim > 0 {
		if !quant.CompatibleGroupSize(mdl.HiddenDim, qc.GroupSize) {
			return ErrQuantIncompatible(mdl.ID, mdl.HiddenDim, qc.GroupSize)
		}
	}
	m.log.Debug().
		Str("model", mdl.ID).
		Stringer("mode", qc.ResolvedMode()).
		Bool("non_affine", qc.NonAffine()).
		Int("group_size", qc.GroupSize).
		Msg("quantization resolved")
	return nil
}

func (m *Manager) setErr(msg string) {
	m.mu.Lock()
	m.err = msg
	m.mu.Unlock()
}
