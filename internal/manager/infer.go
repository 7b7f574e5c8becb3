package manager

import (
	"context"
	"encoding/json"
	"io"

	"inferd/internal/session"
	"inferd/pkg/types"
)

// Infer centralizes generation behavior. It ensures a session for the
// requested model, reserves the single in-flight slot, and streams the
// session's generation events to the writer as NDJSON lines: one
// {"text":...} line per fragment and exactly one terminal line, either
// {"done":true,...} with usage or {"error":...}.
func (m *Manager) Infer(ctx context.Context, req types.GenerateRequest, w io.Writer, flusher func()) error {
	modelID := req.Model
	if modelID == "" {
		modelID = m.defaultModel
		if modelID == "" {
			// No model specified and no default configured
			return ErrModelNotFound("(unspecified)")
		}
	}
	inst, err := m.ensure(ctx, modelID)
	if err != nil {
		return err
	}
	// Admission: per-session FIFO queue, single in-flight
	release, err := m.beginGeneration(ctx, inst)
	if err != nil {
		return err
	}
	defer release()

	// A fresh request re-arms a previously cancelled session.
	inst.Session.Cancel().Reset()

	in := session.Input{
		Prompt: req.Prompt,
		Images: req.Images,
		Sampling: session.SamplingParams{
			Temperature: req.Temperature,
			TopP:        req.TopP,
			Seed:        req.Seed,
		},
		Limits: session.Limits{
			MaxTokens: req.MaxTokens,
			Stop:      req.Stop,
		},
	}
	seq, err := inst.Session.Stream(ctx, in)
	if err != nil {
		return err
	}

	wrote := false
	for ev := range seq {
		switch ev.Type {
		case session.EventTextDelta:
			if _, e := w.Write(textLineJSON(ev.Text)); e != nil {
				return e
			}
			wrote = true
			if flusher != nil {
				flusher()
			}
		case session.EventFinished:
			mtr := ev.Metrics
			generationsTotal.WithLabelValues(string(mtr.Reason)).Inc()
			generatedTokensTotal.Add(float64(mtr.GenerationTokens))
			end := map[string]any{
				"done":        true,
				"stop_reason": string(mtr.Reason),
				"usage": types.Usage{
					PromptTokens:     mtr.PromptTokens,
					CompletionTokens: mtr.GenerationTokens,
					TotalTokens:      mtr.PromptTokens + mtr.GenerationTokens,
				},
				"prompt_tokens_per_second": mtr.PromptTokensPerSecond(),
				"tokens_per_second":        mtr.TokensPerSecond(),
			}
			jb, _ := json.Marshal(end)
			if _, e := w.Write(append(jb, '\n')); e != nil {
				return e
			}
			if flusher != nil {
				flusher()
			}
		case session.EventError:
			// Before any output the error can still become an HTTP status;
			// afterwards it must travel in-band.
			if !wrote {
				return ev.Err
			}
			jb, _ := json.Marshal(map[string]any{"error": ev.Err.Error()})
			if _, e := w.Write(append(jb, '\n')); e != nil {
				return e
			}
			if flusher != nil {
				flusher()
			}
		}
	}
	return nil
}

// textLineJSON formats a fragment NDJSON line using json.Marshal for correctness.
func textLineJSON(text string) []byte {
	type textMsg struct {
		Text string `json:"text"`
	}
	b, _ := json.Marshal(textMsg{Text: text})
	return append(b, '\n')
}
