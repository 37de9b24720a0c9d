// Package editor turns raw user text into clean edited text and explains the
// edits on request, both backed by an [llm.Provider].
//
// The provider handed to [NewCorrector] and [NewExplainer] is usually an
// ordered fallback over several model candidates; the editor itself neither
// knows nor cares how many backends sit behind the interface.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pravkabot/pravka/pkg/provider/llm"
)

// ErrNotConfigured is returned when no LLM backend was configured at all
// (missing API keys). The bot maps it to a fixed "not configured" reply
// instead of an error message.
var ErrNotConfigured = errors.New("editor: no language model configured")

const defaultTemperature = 0.1

// correctionSystemPrompt instructs the model to act as a copy editor and
// return nothing but the edited text.
const correctionSystemPrompt = `You are a professional copy editor. Edit the text the user sends you.

Rules:
1. Fix spelling, punctuation and grammar mistakes.
2. Split the text into sentences. Always add sentence-final punctuation and capital letters.
3. Remove filler words (um, uh, like, you know) when they carry no meaning.
4. Keep the language of the original text; do not translate.
5. Return ONLY the corrected text, without quotes or preamble.`

// Option is a functional option shared by [Corrector] and [Explainer].
type Option func(*settings)

type settings struct {
	temperature float64
}

// WithTemperature overrides the sampling temperature. Lower values produce
// more deterministic edits. Default: 0.1.
func WithTemperature(temp float64) Option {
	return func(s *settings) {
		s.temperature = temp
	}
}

// Corrector produces a corrected version of raw user text. It is safe for
// concurrent use.
type Corrector struct {
	llm      llm.Provider
	settings settings
}

// NewCorrector returns a [Corrector] backed by the given provider. A nil
// provider is allowed and makes every Correct call return [ErrNotConfigured].
func NewCorrector(provider llm.Provider, opts ...Option) *Corrector {
	c := &Corrector{
		llm:      provider,
		settings: settings{temperature: defaultTemperature},
	}
	for _, o := range opts {
		o(&c.settings)
	}
	return c
}

// Correct sends text to the model and returns the edited version. The reply
// is trimmed; an empty reply is an error so the caller never sends a blank
// message to the user.
func (c *Corrector) Correct(ctx context.Context, text string) (string, error) {
	if c.llm == nil {
		return "", ErrNotConfigured
	}

	req := llm.CompletionRequest{
		SystemPrompt: correctionSystemPrompt,
		Temperature:  c.settings.temperature,
		Messages: []llm.Message{
			{Role: "user", Content: "Text: " + text},
		},
	}

	resp, err := c.llm.Complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("editor: correct: %w", err)
	}

	corrected := strings.TrimSpace(resp.Content)
	if corrected == "" {
		return "", fmt.Errorf("editor: correct: model returned empty text")
	}
	return corrected, nil
}
