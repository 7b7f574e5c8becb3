package session

import (
	"context"
	"errors"
	"io"
	"iter"
	"sync"
)

// MemoryBackend replays a fixed script of fragments. It exists for tests
// and for running the daemon without a real runtime; it performs no tensor
// work.
type MemoryBackend struct {
	// Fragments is the scripted output, one element per token.
	Fragments []string
	// PromptCost is the reported prompt token count.
	PromptCost int
	// LoadSteps is how many progress elements Load emits before completing.
	LoadSteps int
	// LoadErr, when set, makes Load fail after its first progress element.
	LoadErr error
	// BeginErr, when set, makes Begin fail.
	BeginErr error
	// FailAfter, when > 0, makes Next fail once that many fragments were produced.
	FailAfter int

	mu      sync.Mutex
	loaded  bool
	unloads int
}

// NewMemoryBackend builds a MemoryBackend scripted with the given fragments.
func NewMemoryBackend(fragments ...string) *MemoryBackend {
	return &MemoryBackend{Fragments: fragments, PromptCost: 1, LoadSteps: 2}
}

func (b *MemoryBackend) Load(ctx context.Context, cfg ProviderConfig) iter.Seq2[LoadProgress, error] {
	return func(yield func(LoadProgress, error) bool) {
		steps := b.LoadSteps
		if steps < 1 {
			steps = 1
		}
		for i := 1; i <= steps; i++ {
			if err := ctx.Err(); err != nil {
				yield(LoadProgress{}, err)
				return
			}
			if b.LoadErr != nil && i > 1 {
				yield(LoadProgress{}, b.LoadErr)
				return
			}
			done := i == steps
			if !yield(LoadProgress{Fraction: float64(i) / float64(steps), Message: "loading", Done: done}, nil) {
				return
			}
		}
		b.mu.Lock()
		b.loaded = true
		b.mu.Unlock()
	}
}

func (b *MemoryBackend) Begin(ctx context.Context, in Input) (TokenStream, error) {
	if b.BeginErr != nil {
		return nil, b.BeginErr
	}
	return &memoryStream{b: b}, nil
}

func (b *MemoryBackend) Unload() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loaded = false
	b.unloads++
	return nil
}

// Unloads reports how many times Unload was called.
func (b *MemoryBackend) Unloads() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unloads
}

// Loaded reports whether the last Load completed and no Unload followed.
func (b *MemoryBackend) Loaded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loaded
}

type memoryStream struct {
	b   *MemoryBackend
	pos int
}

func (s *memoryStream) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.b.FailAfter > 0 && s.pos >= s.b.FailAfter {
		return "", errors.New("scripted backend failure")
	}
	if s.pos >= len(s.b.Fragments) {
		return "", io.EOF
	}
	frag := s.b.Fragments[s.pos]
	s.pos++
	return frag, nil
}

func (s *memoryStream) PromptTokens() int { return s.b.PromptCost }

func (s *memoryStream) Close() error { return nil }
