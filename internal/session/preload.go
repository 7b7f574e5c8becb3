package session

import (
	"context"
	"iter"
)

// Preload validates the configuration and begins loading model artifacts.
// The returned sequence is lazy, ordered, and finite: it ends either with a
// Done progress element (the session is then ready) or with a non-nil error
// (the session stays idle and remains reusable).
//
// Policy: calling Preload while already ready or streaming is an idempotent
// no-op that re-emits a single completed progress element.
func (s *Session) Preload(ctx context.Context, cfg ProviderConfig) iter.Seq2[LoadProgress, error] {
	return func(yield func(LoadProgress, error) bool) {
		s.mu.Lock()
		switch s.state {
		case StateReady, StateStreaming:
			s.mu.Unlock()
			yield(LoadProgress{Fraction: 1, Message: "already loaded", Done: true}, nil)
			return
		case StatePreloading:
			s.mu.Unlock()
			yield(LoadProgress{}, ErrInvalidState("preload", StatePreloading))
			return
		case StateUnloaded:
			s.mu.Unlock()
			yield(LoadProgress{}, ErrInvalidState("preload", StateUnloaded))
			return
		}
		if err := cfg.validate(); err != nil {
			s.mu.Unlock()
			yield(LoadProgress{}, err)
			return
		}
		s.state = StatePreloading
		s.cfg = cfg
		s.mu.Unlock()

		s.log.Debug().Str("model", cfg.Model).Str("location", cfg.Location).Msg("preload start")
		// Unload is valid while preloading and is terminal; every exit
		// below must leave an unloaded session unloaded.
		for p, err := range s.backend.Load(ctx, cfg) {
			if err != nil {
				s.setStateIfNot(StateUnloaded, StateIdle)
				s.log.Debug().Err(err).Str("model", cfg.Model).Msg("preload failed")
				yield(LoadProgress{}, err)
				return
			}
			if !yield(p, nil) {
				// Consumer abandoned the sequence; the load did not complete.
				s.setStateIfNot(StateUnloaded, StateIdle)
				return
			}
		}
		s.setStateIfNot(StateUnloaded, StateReady)
		s.log.Debug().Str("model", cfg.Model).Msg("preload done")
	}
}

func (cfg ProviderConfig) validate() error {
	if cfg.Location == "" {
		return ErrConfiguration("provider location is empty")
	}
	if cfg.Model == "" {
		return ErrConfiguration("model identifier is empty")
	}
	return nil
}
