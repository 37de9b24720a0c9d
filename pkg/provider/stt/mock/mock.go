// Package mock provides a configurable in-memory stt.Provider for tests.
package mock

import (
	"context"
	"sync"

	"github.com/pravkabot/pravka/pkg/provider/stt"
)

// Compile-time assertion that Provider implements stt.Provider.
var _ stt.Provider = (*Provider)(nil)

// TranscribeCall records a single invocation of Transcribe.
type TranscribeCall struct {
	Audio stt.Audio
}

// Provider is a mock stt.Provider. Configure the exported fields before use;
// all methods are safe for concurrent use.
type Provider struct {
	mu    sync.Mutex
	calls []TranscribeCall

	// TranscribeResult and TranscribeErr are returned by Transcribe unless
	// TranscribeFunc is set.
	TranscribeResult stt.Result
	TranscribeErr    error

	// TranscribeFunc, when non-nil, overrides the static result fields. It
	// receives the zero-based call index.
	TranscribeFunc func(call int, audio stt.Audio) (stt.Result, error)
}

// Transcribe implements stt.Provider.
func (p *Provider) Transcribe(ctx context.Context, audio stt.Audio) (stt.Result, error) {
	p.mu.Lock()
	idx := len(p.calls)
	p.calls = append(p.calls, TranscribeCall{Audio: audio})
	fn := p.TranscribeFunc
	res, err := p.TranscribeResult, p.TranscribeErr
	p.mu.Unlock()

	if fn != nil {
		return fn(idx, audio)
	}
	return res, err
}

// Calls returns a snapshot of all recorded Transcribe invocations.
func (p *Provider) Calls() []TranscribeCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]TranscribeCall, len(p.calls))
	copy(out, p.calls)
	return out
}

// Reset clears recorded calls.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = nil
}
