package manager

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"inferd/internal/session"
	"inferd/pkg/types"
)

func ndjsonLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		if sc.Text() == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("bad NDJSON line %q: %v", sc.Text(), err)
		}
		lines = append(lines, m)
	}
	return lines
}

func TestInfer_StreamsTextAndDoneLine(t *testing.T) {
	m, _ := newTestManager(t, Config{})
	var buf bytes.Buffer
	flushes := 0
	err := m.Infer(context.Background(), types.GenerateRequest{
		Prompt:    "hi",
		MaxTokens: 16,
	}, &buf, func() { flushes++ })
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	lines := ndjsonLines(t, &buf)
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 4 text + 1 done", len(lines))
	}
	var text strings.Builder
	for _, l := range lines[:4] {
		text.WriteString(l["text"].(string))
	}
	if text.String() != "Hello, world!" {
		t.Fatalf("streamed text = %q", text.String())
	}
	last := lines[4]
	if last["done"] != true {
		t.Fatalf("last line not done: %v", last)
	}
	if last["stop_reason"] != string(session.StopEndOfSequence) {
		t.Fatalf("stop_reason = %v, want end-of-sequence", last["stop_reason"])
	}
	if flushes == 0 {
		t.Fatalf("flusher never invoked")
	}
}

func TestInfer_LengthStopAndUsage(t *testing.T) {
	m, _ := newTestManager(t, Config{})
	var buf bytes.Buffer
	err := m.Infer(context.Background(), types.GenerateRequest{
		Prompt:    "hi",
		MaxTokens: 2,
	}, &buf, nil)
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	lines := ndjsonLines(t, &buf)
	last := lines[len(lines)-1]
	if last["stop_reason"] != string(session.StopLength) {
		t.Fatalf("stop_reason = %v, want length", last["stop_reason"])
	}
	usage := last["usage"].(map[string]any)
	if usage["completion_tokens"].(float64) != 2 {
		t.Fatalf("completion_tokens = %v, want 2", usage["completion_tokens"])
	}
}

func TestInfer_StopSequence(t *testing.T) {
	m, _ := newTestManager(t, Config{})
	var buf bytes.Buffer
	err := m.Infer(context.Background(), types.GenerateRequest{
		Prompt:    "hi",
		MaxTokens: 16,
		Stop:      []string{"o, wo"},
	}, &buf, nil)
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	lines := ndjsonLines(t, &buf)
	last := lines[len(lines)-1]
	if last["stop_reason"] != string(session.StopSequence) {
		t.Fatalf("stop_reason = %v, want stop-sequence", last["stop_reason"])
	}
}

func TestInfer_ModelNotFound(t *testing.T) {
	m, _ := newTestManager(t, Config{})
	var buf bytes.Buffer
	err := m.Infer(context.Background(), types.GenerateRequest{Model: "nope", Prompt: "hi", MaxTokens: 4}, &buf, nil)
	if !IsModelNotFound(err) {
		t.Fatalf("got %v, want model not found", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("wrote %q before failing", buf.String())
	}
}

func TestInfer_NoModelNoDefault(t *testing.T) {
	m, _ := newTestManager(t, Config{DefaultModel: "m"})
	m.defaultModel = ""
	var buf bytes.Buffer
	err := m.Infer(context.Background(), types.GenerateRequest{Prompt: "hi", MaxTokens: 4}, &buf, nil)
	if !IsModelNotFound(err) {
		t.Fatalf("got %v, want model not found", err)
	}
}

func TestInfer_InvalidParams(t *testing.T) {
	m, _ := newTestManager(t, Config{})
	var buf bytes.Buffer
	err := m.Infer(context.Background(), types.GenerateRequest{Prompt: "hi", MaxTokens: 0}, &buf, nil)
	if !session.IsConfiguration(err) {
		t.Fatalf("got %v, want configuration error", err)
	}
}

func TestInfer_MidStreamBackendFailure(t *testing.T) {
	backend := session.NewMemoryBackend("a", "b", "c")
	backend.FailAfter = 1
	m, _ := newTestManager(t, Config{
		Backends: func(types.Model) session.Backend { return backend },
	})
	var buf bytes.Buffer
	err := m.Infer(context.Background(), types.GenerateRequest{Prompt: "hi", MaxTokens: 8}, &buf, nil)
	if err != nil {
		t.Fatalf("mid-stream failures travel in-band, got %v", err)
	}
	lines := ndjsonLines(t, &buf)
	last := lines[len(lines)-1]
	if _, ok := last["error"]; !ok {
		t.Fatalf("missing error line, got %v", last)
	}
}

func TestInfer_CancelledViaManager(t *testing.T) {
	m, _ := newTestManager(t, Config{})
	// Preload the session, then cancel before the next request starts: the
	// request resets the flag, so it must run normally.
	if _, err := m.ensure(context.Background(), "m"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := m.Cancel("m"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	var buf bytes.Buffer
	if err := m.Infer(context.Background(), types.GenerateRequest{Prompt: "hi", MaxTokens: 4}, &buf, nil); err != nil {
		t.Fatalf("Infer after cancel: %v", err)
	}
	lines := ndjsonLines(t, &buf)
	if lines[len(lines)-1]["done"] != true {
		t.Fatalf("generation after reset did not finish: %v", lines)
	}
}
