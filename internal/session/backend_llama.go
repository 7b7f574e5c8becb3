//go:build llama

package session

import (
	"context"
	"io"
	"iter"
	"os"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

// llamaBackend runs inference in-process via go-llama.cpp.
type llamaBackend struct {
	ctxSize int
	threads int

	mu    sync.Mutex
	model *llama.LLama
}

// NewLlamaBackend constructs an in-process llama.cpp backend.
func NewLlamaBackend(ctxSize, threads int) Backend {
	return &llamaBackend{ctxSize: ctxSize, threads: threads}
}

func (b *llamaBackend) Load(ctx context.Context, cfg ProviderConfig) iter.Seq2[LoadProgress, error] {
	return func(yield func(LoadProgress, error) bool) {
		if fi, err := os.Stat(cfg.Location); err != nil || fi.IsDir() {
			yield(LoadProgress{}, ErrModelNotFound(cfg.Location))
			return
		}
		if !yield(LoadProgress{Fraction: 0, Message: "loading " + cfg.Model}, nil) {
			return
		}
		m, err := llama.New(cfg.Location, llama.SetContext(b.ctxSize))
		if err != nil {
			yield(LoadProgress{}, ErrBackendFailure(err))
			return
		}
		b.mu.Lock()
		b.model = m
		b.mu.Unlock()
		yield(LoadProgress{Fraction: 1, Message: "loaded " + cfg.Model, Done: true}, nil)
	}
}

func (b *llamaBackend) Begin(ctx context.Context, in Input) (TokenStream, error) {
	b.mu.Lock()
	model := b.model
	b.mu.Unlock()
	if model == nil {
		return nil, ErrBackendUnavailable("llama model not loaded")
	}

	gctx, cancel := context.WithCancel(ctx)
	s := &llamaStream{
		tokens: make(chan string, 1), // at most one unconsumed fragment in flight
		done:   make(chan error, 1),
		cancel: cancel,
	}
	model.SetTokenCallback(func(tok string) bool {
		select {
		case s.tokens <- tok:
			return true
		case <-gctx.Done():
			return false
		}
	})
	// Stop sequences are deliberately not forwarded: the session's detector
	// owns stop matching so that cross-chunk detection and the stop reason
	// stay consistent.
	po := []llama.PredictOption{
		llama.SetTokens(in.Limits.MaxTokens),
		llama.SetThreads(b.threads),
		llama.SetTemperature(float32(in.Sampling.Temperature)),
		llama.SetTopP(float32(in.Sampling.TopP)),
	}
	if in.Sampling.Seed != 0 {
		po = append(po, llama.SetSeed(int(in.Sampling.Seed)))
	}
	go func() {
		_, err := model.Predict(in.Prompt, po...)
		close(s.tokens)
		s.done <- err
	}()
	return s, nil
}

func (b *llamaBackend) Unload() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.model != nil {
		b.model.Free()
		b.model = nil
	}
	return nil
}

type llamaStream struct {
	tokens   chan string
	done     chan error
	cancel   context.CancelFunc
	finished bool
	final    error
}

func (s *llamaStream) Next(ctx context.Context) (string, error) {
	if s.finished {
		if s.final != nil {
			return "", s.final
		}
		return "", io.EOF
	}
	select {
	case tok, ok := <-s.tokens:
		if !ok {
			s.finished = true
			s.final = <-s.done
			if s.final != nil {
				return "", s.final
			}
			return "", io.EOF
		}
		return tok, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// PromptTokens is not reported by go-llama.cpp without deeper hooks.
func (s *llamaStream) PromptTokens() int { return 0 }

func (s *llamaStream) Close() error {
	s.cancel()
	return nil
}
