// Package pipeline runs the voice path: Opus decode, resample, and speech
// recognition, normalised into a single outcome value the message router can
// switch on.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/pravkabot/pravka/internal/observe"
	"github.com/pravkabot/pravka/pkg/audio"
	"github.com/pravkabot/pravka/pkg/provider/stt"
)

// Status classifies the outcome of a transcription attempt.
type Status int

const (
	// StatusOK means speech was recognized; Text carries the transcript.
	StatusOK Status = iota
	// StatusNoSpeech means the audio decoded fine but contained no
	// recognizable words.
	StatusNoSpeech
	// StatusBadAudio means the voice payload could not be decoded.
	StatusBadAudio
	// StatusServiceError means the recognition service failed; Err carries
	// the cause.
	StatusServiceError
)

// Transcription is the normalised result of one voice note.
type Transcription struct {
	Status Status
	Text   string
	Err    error
}

// defaultTargetRate is the sample rate handed to the speech providers.
const defaultTargetRate = 16000

// Option is a functional option for configuring a [Transcriber].
type Option func(*Transcriber)

// WithLanguage sets the BCP-47 recognition language. Defaults to "en-US".
func WithLanguage(lang string) Option {
	return func(t *Transcriber) { t.language = lang }
}

// WithTargetRate overrides the sample rate audio is resampled to before
// recognition. Defaults to 16000.
func WithTargetRate(rate int) Option {
	return func(t *Transcriber) { t.targetRate = rate }
}

// WithConcurrency caps how many Opus decodes may run at once. Defaults to
// [runtime.NumCPU].
func WithConcurrency(n int) Option {
	return func(t *Transcriber) {
		if n > 0 {
			t.decodeSem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithMetrics attaches metric instruments. When nil, nothing is recorded.
func WithMetrics(m *observe.Metrics) Option {
	return func(t *Transcriber) { t.metrics = m }
}

// Transcriber converts raw Telegram voice payloads into text. It is safe for
// concurrent use; decoding is CPU-bound and bounded by an internal semaphore
// so a burst of voice notes cannot starve the scheduler.
type Transcriber struct {
	stt        stt.Provider
	language   string
	targetRate int
	decodeSem  *semaphore.Weighted
	metrics    *observe.Metrics

	// decode is swapped out in tests.
	decode func(data []byte, targetRate int) ([]byte, error)
}

// NewTranscriber creates a [Transcriber] backed by the given speech provider.
func NewTranscriber(provider stt.Provider, opts ...Option) *Transcriber {
	t := &Transcriber{
		stt:        provider,
		language:   "en-US",
		targetRate: defaultTargetRate,
		decodeSem:  semaphore.NewWeighted(int64(runtime.NumCPU())),
		decode:     audio.DecodeVoiceNote,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Transcribe decodes an Ogg Opus voice payload and runs speech recognition
// on it. The outcome is always a valid [Transcription]; the error cases are
// folded into its Status so the caller has one switch to write.
func (t *Transcriber) Transcribe(ctx context.Context, oggData []byte) Transcription {
	start := time.Now()

	pcm, err := t.decodeBounded(ctx, oggData)
	if err != nil {
		if errors.Is(err, audio.ErrMalformed) {
			return Transcription{Status: StatusBadAudio, Err: err}
		}
		return Transcription{Status: StatusServiceError, Err: err}
	}

	res, err := t.stt.Transcribe(ctx, stt.Audio{
		PCM:        pcm,
		SampleRate: t.targetRate,
		Channels:   1,
		Language:   t.language,
	})
	if t.metrics != nil {
		t.metrics.STTDuration.Record(ctx, time.Since(start).Seconds())
		status := "ok"
		if err != nil {
			status = "error"
		}
		t.metrics.RecordProviderRequest(ctx, "stt", "transcribe", status)
	}
	if err != nil {
		if t.metrics != nil {
			t.metrics.RecordProviderError(ctx, "stt", "transcribe")
		}
		return Transcription{Status: StatusServiceError, Err: fmt.Errorf("pipeline: transcribe: %w", err)}
	}
	if res.NoSpeech {
		return Transcription{Status: StatusNoSpeech}
	}
	return Transcription{Status: StatusOK, Text: res.Text}
}

// decodeBounded runs the Opus decode under the concurrency semaphore.
func (t *Transcriber) decodeBounded(ctx context.Context, oggData []byte) ([]byte, error) {
	if err := t.decodeSem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("pipeline: acquire decode slot: %w", err)
	}
	defer t.decodeSem.Release(1)
	return t.decode(oggData, t.targetRate)
}
