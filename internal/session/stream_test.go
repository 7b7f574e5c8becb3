package session

import (
	"context"
	"strings"
	"testing"
)

func collect(t *testing.T, s *Session, in Input) []Event {
	t.Helper()
	seq, err := s.Stream(context.Background(), in)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	var events []Event
	for ev := range seq {
		events = append(events, ev)
	}
	return events
}

func terminal(t *testing.T, events []Event) Event {
	t.Helper()
	if len(events) == 0 {
		t.Fatalf("no events")
	}
	last := events[len(events)-1]
	if last.Type != EventFinished && last.Type != EventError {
		t.Fatalf("last event %+v is not terminal", last)
	}
	for _, ev := range events[:len(events)-1] {
		if ev.Type != EventTextDelta {
			t.Fatalf("non-terminal event %+v is not a text delta", ev)
		}
	}
	return last
}

func TestStream_RequiresReady(t *testing.T) {
	s := New(NewMemoryBackend("a"))
	_, err := s.Stream(context.Background(), Input{Limits: Limits{MaxTokens: 4}})
	if !IsInvalidState(err) {
		t.Fatalf("stream before preload: got %v, want invalid state", err)
	}
}

func TestStream_LengthLimit(t *testing.T) {
	b := NewMemoryBackend("a ", "b ", "c ", "d ", "e ")
	b.PromptCost = 7
	s := New(b)
	preloadReady(t, s, testCfg)

	events := collect(t, s, Input{Prompt: "hi", Limits: Limits{MaxTokens: 3}})
	last := terminal(t, events)
	if last.Type != EventFinished {
		t.Fatalf("terminal = %+v, want finished", last)
	}
	if last.Metrics.Reason != StopLength {
		t.Fatalf("stop reason = %s, want %s", last.Metrics.Reason, StopLength)
	}
	if last.Metrics.GenerationTokens != 3 {
		t.Fatalf("generation tokens = %d, want 3", last.Metrics.GenerationTokens)
	}
	if last.Metrics.PromptTokens != 7 {
		t.Fatalf("prompt tokens = %d, want 7", last.Metrics.PromptTokens)
	}
	if len(events) != 4 {
		t.Fatalf("got %d events, want 3 deltas + finished", len(events))
	}
	if st := s.State(); st != StateReady {
		t.Fatalf("state after stream = %s, want ready", st)
	}
}

func TestStream_EndOfSequence(t *testing.T) {
	s := New(NewMemoryBackend("only", " two"))
	preloadReady(t, s, testCfg)

	events := collect(t, s, Input{Limits: Limits{MaxTokens: 100}})
	last := terminal(t, events)
	if last.Metrics == nil || last.Metrics.Reason != StopEndOfSequence {
		t.Fatalf("terminal = %+v, want end-of-sequence", last)
	}
	var text strings.Builder
	for _, ev := range events[:len(events)-1] {
		text.WriteString(ev.Text)
	}
	if text.String() != "only two" {
		t.Fatalf("streamed text = %q", text.String())
	}
}

func TestStream_StopSequenceAcrossFragments(t *testing.T) {
	s := New(NewMemoryBackend("Hel", "lo ", "world", "never emitted"))
	preloadReady(t, s, testCfg)

	events := collect(t, s, Input{Limits: Limits{MaxTokens: 100, Stop: []string{"lo wor"}}})
	last := terminal(t, events)
	if last.Metrics == nil || last.Metrics.Reason != StopSequence {
		t.Fatalf("terminal = %+v, want stop-sequence", last)
	}
	// The fragment completing the match is still emitted, then the stream ends.
	if len(events) != 4 {
		t.Fatalf("got %d events, want 3 deltas + finished", len(events))
	}
	if events[2].Text != "world" {
		t.Fatalf("matching fragment not emitted: %+v", events[2])
	}
}

func TestStream_Cancelled(t *testing.T) {
	s := New(NewMemoryBackend("a", "b", "c", "d"))
	preloadReady(t, s, testCfg)

	seq, err := s.Stream(context.Background(), Input{Limits: Limits{MaxTokens: 100}})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	var events []Event
	for ev := range seq {
		events = append(events, ev)
		if len(events) == 2 {
			s.Cancel().Set(true)
		}
	}
	last := terminal(t, events)
	if last.Metrics == nil || last.Metrics.Reason != StopCancelled {
		t.Fatalf("terminal = %+v, want cancelled", last)
	}
	// Two deltas flushed before cancellation was observed.
	if last.Metrics.GenerationTokens != 2 {
		t.Fatalf("generation tokens = %d, want 2", last.Metrics.GenerationTokens)
	}
	if st := s.State(); st != StateReady {
		t.Fatalf("state = %s, want ready", st)
	}

	// The flag stays set until explicitly reset.
	if !s.Cancel().Get() {
		t.Fatalf("flag cleared without Reset")
	}
	s.Cancel().Reset()
	events = collect(t, s, Input{Limits: Limits{MaxTokens: 2}})
	if terminal(t, events).Metrics.Reason != StopLength {
		t.Fatalf("session not reusable after cancel + reset")
	}
}

func TestStream_CancelOutranksLengthOnFinalFragment(t *testing.T) {
	s := New(NewMemoryBackend("a", "b", "c"))
	preloadReady(t, s, testCfg)

	seq, err := s.Stream(context.Background(), Input{Limits: Limits{MaxTokens: 2}})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	var events []Event
	for ev := range seq {
		events = append(events, ev)
		if len(events) == 2 {
			// Set while the limit-hitting fragment is in flight: the
			// cancel check runs before the length check.
			s.Cancel().Set(true)
		}
	}
	last := terminal(t, events)
	if last.Metrics == nil || last.Metrics.Reason != StopCancelled {
		t.Fatalf("stop reason = %+v, want cancelled to win over length", last)
	}
	if last.Metrics.GenerationTokens != 2 {
		t.Fatalf("generation tokens = %d, want 2", last.Metrics.GenerationTokens)
	}
}

func TestStream_BackendFailureLeavesReady(t *testing.T) {
	b := NewMemoryBackend("a", "b", "c")
	b.FailAfter = 2
	s := New(b)
	preloadReady(t, s, testCfg)

	events := collect(t, s, Input{Limits: Limits{MaxTokens: 100}})
	last := terminal(t, events)
	if last.Type != EventError {
		t.Fatalf("terminal = %+v, want error", last)
	}
	if !IsBackendFailure(last.Err) {
		t.Fatalf("terminal error = %v, want backend failure", last.Err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 2 deltas + error", len(events))
	}
	if st := s.State(); st != StateReady {
		t.Fatalf("state after failed stream = %s, want ready (retryable)", st)
	}
}

func TestStream_ConcurrentStreamFailsFast(t *testing.T) {
	s := New(NewMemoryBackend("a", "b"))
	preloadReady(t, s, testCfg)

	seq, err := s.Stream(context.Background(), Input{Limits: Limits{MaxTokens: 10}})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	checked := false
	for range seq {
		if !checked {
			checked = true
			if _, err := s.Stream(context.Background(), Input{Limits: Limits{MaxTokens: 10}}); !IsInvalidState(err) {
				t.Fatalf("second stream while streaming: got %v, want invalid state", err)
			}
			if err := s.Unload(); !IsInvalidState(err) {
				t.Fatalf("unload while streaming: got %v, want invalid state", err)
			}
		}
	}
	if !checked {
		t.Fatalf("stream produced no events")
	}
	if st := s.State(); st != StateReady {
		t.Fatalf("state = %s, want ready", st)
	}
}

func TestStream_ValidatesInput(t *testing.T) {
	s := New(NewMemoryBackend("a"))
	preloadReady(t, s, testCfg)

	cases := []Input{
		{Limits: Limits{MaxTokens: 0}},
		{Limits: Limits{MaxTokens: -1}},
		{Sampling: SamplingParams{Temperature: -0.1}, Limits: Limits{MaxTokens: 4}},
		{Sampling: SamplingParams{TopP: 1.5}, Limits: Limits{MaxTokens: 4}},
		{Sampling: SamplingParams{TopP: -0.5}, Limits: Limits{MaxTokens: 4}},
	}
	for _, in := range cases {
		if _, err := s.Stream(context.Background(), in); !IsConfiguration(err) {
			t.Fatalf("input %+v: got %v, want configuration error", in, err)
		}
	}
	// Validation failures must not consume the ready state.
	if st := s.State(); st != StateReady {
		t.Fatalf("state = %s, want ready", st)
	}
}

func TestStream_ConsumerBreakReturnsReady(t *testing.T) {
	s := New(NewMemoryBackend("a", "b", "c"))
	preloadReady(t, s, testCfg)

	seq, err := s.Stream(context.Background(), Input{Limits: Limits{MaxTokens: 10}})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	for range seq {
		break
	}
	if st := s.State(); st != StateReady {
		t.Fatalf("state after early break = %s, want ready", st)
	}
}
