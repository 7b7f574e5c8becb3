package session

import (
	"context"
	"iter"
)

// LlamaBuilt reports whether this binary was compiled with the in-process
// llama runtime (the 'llama' build tag).
func LlamaBuilt() bool { return llamaBuilt }

// Backend abstracts the tensor-execution/tokenization runtime used by a
// Session. Concrete implementations (e.g. llama.cpp) should satisfy this
// interface; the session never inspects the backend's internal formats.
type Backend interface {
	// Load begins loading model artifacts for the given configuration and
	// returns a lazy, finite progress sequence. On failure the sequence
	// terminates with a non-nil error as its final element.
	Load(ctx context.Context, cfg ProviderConfig) iter.Seq2[LoadProgress, error]

	// Begin prefills the prompt and returns a stream of generated tokens.
	// Implementations must return promptly when the context is canceled.
	Begin(ctx context.Context, in Input) (TokenStream, error)

	// Unload releases backend resources. Must be idempotent.
	Unload() error
}

// TokenStream yields generated text fragments one at a time.
type TokenStream interface {
	// Next blocks until the backend produces the next fragment. It returns
	// io.EOF when the model emits end-of-sequence.
	Next(ctx context.Context) (string, error)
	// PromptTokens reports how many tokens the prompt consumed.
	PromptTokens() int
	// Close releases any resources associated with the stream. After Close,
	// no further backend work is issued.
	Close() error
}
