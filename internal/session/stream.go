package session

import (
	"context"
	"errors"
	"io"
	"iter"
	"time"
)

// Stream starts one generation and returns a lazy, single-pass sequence of
// events. It fails fast with an InvalidState error unless the session is
// ready; concurrent calls while a stream is active fail the same way.
//
// The sequence emits zero or more text deltas followed by exactly one
// terminal event (finished or error). Per fragment, in order: the delta is
// emitted, the stop-sequence detector is consulted, then the cancellation
// flag, then the token limit. The returned sequence
// must be consumed (or at least started): iteration returns the session to
// ready when it ends, including when the consumer breaks early.
func (s *Session) Stream(ctx context.Context, in Input) (iter.Seq[Event], error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.state != StateReady {
		st := s.state
		s.mu.Unlock()
		return nil, ErrInvalidState("stream", st)
	}
	s.state = StateStreaming
	s.mu.Unlock()

	return func(yield func(Event) bool) {
		defer s.setStateIfNot(StateUnloaded, StateReady)
		s.generate(ctx, in, yield)
	}, nil
}

func (s *Session) generate(ctx context.Context, in Input, yield func(Event) bool) {
	start := time.Now()
	ts, err := s.backend.Begin(ctx, in)
	if err != nil {
		s.log.Debug().Err(err).Msg("backend begin failed")
		yield(Event{Type: EventError, Err: ErrBackendFailure(err)})
		return
	}
	defer func() { _ = ts.Close() }()
	promptTime := time.Since(start)
	genStart := time.Now()

	det := NewStopDetector(in.Limits.Stop)
	produced := 0
	finish := func(reason StopReason) Event {
		m := &Metrics{
			PromptTokens:     ts.PromptTokens(),
			GenerationTokens: produced,
			PromptTime:       promptTime,
			GenerationTime:   time.Since(genStart),
			Reason:           reason,
		}
		s.log.Debug().
			Str("stop_reason", string(reason)).
			Int("tokens", produced).
			Dur("dur", m.GenerationTime).
			Msg("generation finished")
		return Event{Type: EventFinished, Metrics: m}
	}

	for {
		// Cancellation is cooperative: polled between fragments, never
		// preemptive mid-token. Already-produced text has been flushed.
		if s.cancel.Get() {
			yield(finish(StopCancelled))
			return
		}
		frag, err := ts.Next(ctx)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				yield(finish(StopEndOfSequence))
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				// Context cancellation is an externally composed cancel
				// trigger, not a backend fault.
				yield(finish(StopCancelled))
			default:
				s.log.Debug().Err(err).Msg("backend failure mid-stream")
				yield(Event{Type: EventError, Err: ErrBackendFailure(err)})
			}
			return
		}
		produced++
		matched := det.Feed(frag)
		if !yield(Event{Type: EventTextDelta, Text: frag}) {
			return
		}
		if matched {
			yield(finish(StopSequence))
			return
		}
		// Cancellation outranks the token limit: a flag set while this
		// fragment was produced must not report a length stop.
		if s.cancel.Get() {
			yield(finish(StopCancelled))
			return
		}
		if produced >= in.Limits.MaxTokens {
			yield(finish(StopLength))
			return
		}
	}
}

func (in Input) validate() error {
	if in.Sampling.Temperature < 0 {
		return ErrConfiguration("temperature must be >= 0")
	}
	if in.Sampling.TopP < 0 || in.Sampling.TopP > 1 {
		return ErrConfiguration("top_p must be in [0, 1]")
	}
	if in.Limits.MaxTokens <= 0 {
		return ErrConfiguration("max_tokens must be positive")
	}
	return nil
}
