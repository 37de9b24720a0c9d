package resilience

import (
	"context"

	"github.com/pravkabot/pravka/pkg/provider/stt"
)

// STTFallback implements [stt.Provider] with ordered failover across multiple
// speech backends. A NoSpeech result is a success, not a failure: it means
// the audio was understood to contain no words, so later backends are not
// consulted.
type STTFallback struct {
	group *FallbackGroup[stt.Provider]
}

// Compile-time interface assertion.
var _ stt.Provider = (*STTFallback)(nil)

// NewSTTFallback creates an [STTFallback] with primary as the preferred backend.
func NewSTTFallback(primary stt.Provider, primaryName string) *STTFallback {
	return &STTFallback{
		group: NewFallbackGroup(primary, primaryName),
	}
}

// AddFallback registers an additional STT provider as a fallback.
func (f *STTFallback) AddFallback(name string, provider stt.Provider) {
	f.group.AddFallback(name, provider)
}

// Transcribe sends the audio to each backend in order and returns the first
// successful result.
func (f *STTFallback) Transcribe(ctx context.Context, audio stt.Audio) (stt.Result, error) {
	return ExecuteWithResult(f.group, func(p stt.Provider) (stt.Result, error) {
		return p.Transcribe(ctx, audio)
	})
}
