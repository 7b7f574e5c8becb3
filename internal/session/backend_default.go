//go:build !llama

package session

import (
	"context"
	"iter"
)

// This file provides a no-CGO stub for the llama backend. It is compiled
// when the 'llama' build tag is NOT set, keeping default builds and CI
// CGO-free. The real backend lives in backend_llama.go (tagged 'llama').

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = false

type llamaBackend struct{}

// NewLlamaBackend returns a backend that refuses to run without the 'llama'
// build tag. This avoids any mocked behavior in production binaries built
// without CGO support.
func NewLlamaBackend(ctxSize, threads int) Backend {
	return llamaBackend{}
}

func (llamaBackend) Load(ctx context.Context, cfg ProviderConfig) iter.Seq2[LoadProgress, error] {
	return func(yield func(LoadProgress, error) bool) {
		yield(LoadProgress{}, ErrBackendUnavailable("llama support not built (missing 'llama' build tag)"))
	}
}

func (llamaBackend) Begin(ctx context.Context, in Input) (TokenStream, error) {
	return nil, ErrBackendUnavailable("llama support not built (missing 'llama' build tag)")
}

func (llamaBackend) Unload() error { return nil }
