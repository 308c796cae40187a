/*
Package ai sends prompts to a text-generation backend and returns treasure-hunting
narratives, falling back to fixed messages when the backend is unavailable.
*/
package ai

import (
	"context"
	"log/slog"
	"time"

	"github.com/shanehull/digmap/internal/metrics"
	"github.com/shanehull/digmap/internal/types"
)

type Mode int

const (
	RegionAnalysis Mode = iota
	HistoricalAnalysis
	ChatReply
)

const (
	AnalysisFallback = "Не удалось получить информацию. Попробуйте позже."
	ChatFallback     = "Чёрт, связь барахлит... Попробуй позже."
)

func (m Mode) String() string {
	switch m {
	case RegionAnalysis:
		return "region"
	case HistoricalAnalysis:
		return "historical"
	case ChatReply:
		return "chat"
	default:
		return "unknown"
	}
}

func (m Mode) temperature() float64 {
	if m == ChatReply {
		return 0.9
	}
	return 0.8
}

func (m Mode) instruction() string {
	if m == ChatReply {
		return chatInstruction
	}
	return analysisInstruction
}

// Fallback is the fixed text returned for m when generation fails.
func (m Mode) Fallback() string {
	if m == ChatReply {
		return ChatFallback
	}
	return AnalysisFallback
}

// Request is one completion call.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
}

// Backend performs a single completion. Implementations return *types.Unavailable
// on failure.
type Backend interface {
	Complete(ctx context.Context, req Request) (string, error)
}

type Generator struct {
	backend         Backend
	analysisTimeout time.Duration
	chatTimeout     time.Duration
}

func NewGenerator(b Backend, analysisTimeout, chatTimeout time.Duration) *Generator {
	if analysisTimeout <= 0 {
		analysisTimeout = 30 * time.Second
	}
	if chatTimeout <= 0 {
		chatTimeout = 20 * time.Second
	}
	return &Generator{backend: b, analysisTimeout: analysisTimeout, chatTimeout: chatTimeout}
}

// Summarize returns the first completion for prompt verbatim, or the mode's
// fallback text. There is no retry.
func (g *Generator) Summarize(ctx context.Context, mode Mode, prompt string) string {
	timeout := g.analysisTimeout
	if mode == ChatReply {
		timeout = g.chatTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := g.backend.Complete(ctx, Request{
		System:      mode.instruction(),
		Prompt:      prompt,
		Temperature: mode.temperature(),
	})
	if err != nil {
		reason := types.ReasonOf(err)
		metrics.Generations.WithLabelValues(mode.String(), string(reason)).Inc()
		slog.WarnContext(ctx, "generation failed", "mode", mode.String(), "reason", reason, "error", err)
		return mode.Fallback()
	}

	metrics.Generations.WithLabelValues(mode.String(), "ok").Inc()
	return text
}

// Chat answers a raw user question in chat mode.
func (g *Generator) Chat(ctx context.Context, message string) string {
	return g.Summarize(ctx, ChatReply, ChatPrompt(message))
}
