package resilience

import (
	"context"

	"github.com/pravkabot/pravka/pkg/provider/llm"
)

// LLMFallback implements [llm.Provider] with ordered failover across multiple
// LLM backends. Each request walks the candidate list from the top; the first
// successful completion wins and later candidates are not contacted.
type LLMFallback struct {
	group *FallbackGroup[llm.Provider]
}

// Compile-time interface assertion.
var _ llm.Provider = (*LLMFallback)(nil)

// NewLLMFallback creates an [LLMFallback] with primary as the preferred backend.
func NewLLMFallback(primary llm.Provider, primaryName string) *LLMFallback {
	return &LLMFallback{
		group: NewFallbackGroup(primary, primaryName),
	}
}

// AddFallback registers an additional LLM provider as a fallback.
func (f *LLMFallback) AddFallback(name string, provider llm.Provider) {
	f.group.AddFallback(name, provider)
}

// Len returns the number of registered backends.
func (f *LLMFallback) Len() int { return f.group.Len() }

// Complete sends the request to each backend in order and returns the first
// successful response. If all backends fail, the returned error wraps
// [ErrAllFailed] around the last backend's error.
func (f *LLMFallback) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return ExecuteWithResult(f.group, func(p llm.Provider) (*llm.CompletionResponse, error) {
		return p.Complete(ctx, req)
	})
}
