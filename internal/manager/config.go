package manager

import (
	"time"

	"github.com/rs/zerolog"

	"inferd/internal/session"
	"inferd/pkg/types"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultMaxQueueDepth = 32
	defaultMaxWait       = 30 * time.Second
	defaultIdleTTL       = 10 * time.Minute
	defaultDrainTimeout  = 5 * time.Second
)

// BackendFactory builds a backend for a registry model. Injectable so tests
// can script generation without a real runtime.
type BackendFactory func(mdl types.Model) session.Backend

// Config encapsulates all tunables for Manager construction.
type Config struct {
	Registry      []types.Model
	DefaultModel  string
	MaxQueueDepth int
	MaxWait       time.Duration
	// IdleTTL is how long an unused session stays loaded before eviction.
	IdleTTL time.Duration
	// DrainTimeout bounds how long Unload waits for in-flight work.
	DrainTimeout time.Duration
	// Backends overrides the default llama backend factory.
	Backends BackendFactory
	// Publisher receives lifecycle events; nil drops them.
	Publisher EventPublisher
	Logger    zerolog.Logger
	// Llama runtime configuration (no envs; set by callers).
	LlamaCtx     int
	LlamaThreads int
}

// NewWithConfig constructs a Manager from Config.
func NewWithConfig(cfg Config) *Manager {
	m := &Manager{
		registry:     cfg.Registry,
		defaultModel: cfg.DefaultModel,
		publisher:    cfg.Publisher,
		log:          cfg.Logger,
		startTime:    time.Now(),
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	// Apply defaults if unset
	if cfg.MaxQueueDepth <= 0 {
		m.maxQueueDepth = defaultMaxQueueDepth
	} else {
		m.maxQueueDepth = cfg.MaxQueueDepth
	}
	if cfg.MaxWait <= 0 {
		m.maxWait = defaultMaxWait
	} else {
		m.maxWait = cfg.MaxWait
	}
	if cfg.DrainTimeout <= 0 {
		m.drainTimeout = defaultDrainTimeout
	} else {
		m.drainTimeout = cfg.DrainTimeout
	}
	idleTTL := cfg.IdleTTL
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	m.backends = cfg.Backends
	if m.backends == nil {
		ctxSize, threads := cfg.LlamaCtx, cfg.LlamaThreads
		m.backends = func(types.Model) session.Backend {
			return session.NewLlamaBackend(ctxSize, threads)
		}
	}
	m.initSessions(idleTTL)
	return m
}
