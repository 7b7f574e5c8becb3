package session

import (
	"fmt"
	"time"
)

// Metrics is a snapshot of timing and usage for one finished generation.
type Metrics struct {
	PromptTokens     int           `json:"prompt_tokens"`
	GenerationTokens int           `json:"generation_tokens"`
	PromptTime       time.Duration `json:"prompt_time_ns"`
	GenerationTime   time.Duration `json:"generation_time_ns"`
	Reason           StopReason    `json:"stop_reason"`
}

// PromptTokensPerSecond returns the prompt processing rate. Exactly 0 when
// PromptTime is zero, never NaN or Inf.
func (m Metrics) PromptTokensPerSecond() float64 {
	if m.PromptTime <= 0 {
		return 0
	}
	return float64(m.PromptTokens) / m.PromptTime.Seconds()
}

// TokensPerSecond returns the generation rate. Exactly 0 when
// GenerationTime is zero, never NaN or Inf.
func (m Metrics) TokensPerSecond() float64 {
	if m.GenerationTime <= 0 {
		return 0
	}
	return float64(m.GenerationTokens) / m.GenerationTime.Seconds()
}

// Summary renders a fixed-format multi-line report.
func (m Metrics) Summary() string {
	return fmt.Sprintf(
		"Prompt:     %d tokens, %.3f tokens-per-second\nGeneration: %d tokens, %.3f tokens-per-second\n",
		m.PromptTokens, m.PromptTokensPerSecond(),
		m.GenerationTokens, m.TokensPerSecond(),
	)
}
