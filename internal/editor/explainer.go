package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/pravkabot/pravka/pkg/provider/llm"
)

// explanationSystemPrompt puts the model in a language-teacher role for
// answering "why did you change that" follow-ups.
const explanationSystemPrompt = `You are a language teacher. The user's text was edited and the user is asking about the changes. Explain the edit clearly and briefly, in the language of the user's question.`

// Explainer answers follow-up questions about a previous correction. It is
// safe for concurrent use.
type Explainer struct {
	llm      llm.Provider
	settings settings
}

// NewExplainer returns an [Explainer] backed by the given provider. A nil
// provider is allowed and makes every Explain call return [ErrNotConfigured].
func NewExplainer(provider llm.Provider, opts ...Option) *Explainer {
	e := &Explainer{
		llm:      provider,
		settings: settings{temperature: defaultTemperature},
	}
	for _, o := range opts {
		o(&e.settings)
	}
	return e
}

// Explain asks the model why raw became corrected, in response to question.
// All three pieces travel in a single user message so the model sees the full
// before/after pair alongside the question.
func (e *Explainer) Explain(ctx context.Context, raw, corrected, question string) (string, error) {
	if e.llm == nil {
		return "", ErrNotConfigured
	}

	content := fmt.Sprintf("Before: %s\nAfter: %s\nQuestion: %s", raw, corrected, question)

	req := llm.CompletionRequest{
		SystemPrompt: explanationSystemPrompt,
		Temperature:  e.settings.temperature,
		Messages: []llm.Message{
			{Role: "user", Content: content},
		},
	}

	resp, err := e.llm.Complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("editor: explain: %w", err)
	}

	explanation := strings.TrimSpace(resp.Content)
	if explanation == "" {
		return "", fmt.Errorf("editor: explain: model returned empty text")
	}
	return explanation, nil
}
