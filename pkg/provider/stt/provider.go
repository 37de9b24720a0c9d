// Package stt defines the Provider interface for speech-to-text backends.
//
// An STT provider wraps a remote transcription service (e.g., the Google Web
// Speech API or an OpenAI Whisper endpoint) and exposes a uniform batch
// interface: one decoded utterance in, one recognition result out.
//
// A failed recognition is not the same as a failed request. When the service
// is reachable but understands no speech in the audio, Transcribe returns a
// Result with NoSpeech set and a nil error. A non-nil error always means the
// remote call itself failed (network, auth, quota).
//
// Implementations must be safe for concurrent use.
package stt

import "context"

// Audio is one complete utterance of raw PCM audio ready for recognition.
type Audio struct {
	// PCM is 16-bit signed little-endian PCM data.
	PCM []byte

	// SampleRate is the sample rate in Hz (e.g., 16000).
	SampleRate int

	// Channels is the number of interleaved channels. Most providers require
	// mono; callers should downmix before Transcribe.
	Channels int

	// Language is the BCP-47 language tag for recognition (e.g., "en-US",
	// "ru-RU"). An empty string uses the provider default.
	Language string
}

// Result is the outcome of a successful recognition request.
type Result struct {
	// Text is the recognised speech. Empty when NoSpeech is set.
	Text string

	// NoSpeech reports that the service processed the audio but found no
	// intelligible speech in it. This is a legitimate terminal outcome, not an
	// error.
	NoSpeech bool

	// Confidence is the provider-reported confidence score (0.0–1.0). Zero if
	// the provider does not report confidence.
	Confidence float64
}

// Provider is the abstraction over any batch STT backend.
type Provider interface {
	// Transcribe submits one utterance for recognition and waits for the
	// result. Returns a non-nil error only when the remote call fails.
	Transcribe(ctx context.Context, audio Audio) (Result, error)
}
