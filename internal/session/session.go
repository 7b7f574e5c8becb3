package session

import (
	"sync"

	"github.com/rs/zerolog"
)

// Session orchestrates one backend handle through the
// idle → preloading → ready → streaming → ready → unloaded lifecycle.
// It is not reentrant: one generation stream at a time.
type Session struct {
	mu      sync.Mutex
	state   State
	backend Backend
	cfg     ProviderConfig
	cancel  CancelFlag
	log     zerolog.Logger
}

// Option configures a Session at construction.
type Option func(*Session)

// WithLogger installs a structured logger used by the session.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// New constructs an idle Session over the given backend.
func New(b Backend, opts ...Option) *Session {
	s := &Session{
		state:   StateIdle,
		backend: b,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cancel returns the session's cancellation flag. The flag may be set from
// any goroutine; the generation loop polls it at fragment boundaries.
func (s *Session) Cancel() *CancelFlag { return &s.cancel }

// Config returns the provider configuration from the last Preload.
func (s *Session) Config() ProviderConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Unload releases backend resources and transitions to unloaded. It is
// idempotent and safe to call on a session that never finished preloading.
// Unloading while a stream is active is an InvalidState error.
func (s *Session) Unload() error {
	s.mu.Lock()
	switch s.state {
	case StateUnloaded:
		s.mu.Unlock()
		return nil
	case StateStreaming:
		s.mu.Unlock()
		return ErrInvalidState("unload", StateStreaming)
	}
	s.state = StateUnloaded
	s.mu.Unlock()

	s.log.Debug().Str("model", s.cfg.Model).Msg("session unloaded")
	return s.backend.Unload()
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// setStateIfNot transitions to st unless the session is currently in the
// excluded state. Lazy sequences resuming after a concurrent Unload use it
// so the terminal unloaded state is never overwritten.
func (s *Session) setStateIfNot(not, st State) {
	s.mu.Lock()
	if s.state != not {
		s.state = st
	}
	s.mu.Unlock()
}
