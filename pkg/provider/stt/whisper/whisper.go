// Package whisper provides an stt.Provider backed by the OpenAI audio
// transcription API (Whisper). Unlike the free Google endpoint it needs an
// API key, but it handles long utterances and noisy recordings noticeably
// better.
package whisper

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/pravkabot/pravka/pkg/audio"
	"github.com/pravkabot/pravka/pkg/provider/stt"
)

// Compile-time assertion that Provider implements stt.Provider.
var _ stt.Provider = (*Provider)(nil)

const defaultModel = oai.AudioModelWhisper1

// Option is a functional option for configuring a Provider.
type Option func(*config)

type config struct {
	model   oai.AudioModel
	baseURL string
	timeout time.Duration
}

// WithModel overrides the transcription model. Defaults to whisper-1.
func WithModel(model string) Option {
	return func(c *config) { c.model = oai.AudioModel(model) }
}

// WithBaseURL overrides the default OpenAI API base URL. Primarily used in
// tests to point at a local mock server.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// Provider implements stt.Provider using the OpenAI transcription API.
type Provider struct {
	client oai.Client
	model  oai.AudioModel
}

// New constructs a Whisper transcription provider.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("whisper: apiKey must not be empty")
	}

	cfg := &config{model: defaultModel}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}))
	}

	return &Provider{client: oai.NewClient(reqOpts...), model: cfg.model}, nil
}

// Transcribe implements stt.Provider. The PCM is wrapped in a WAV container
// and uploaded as a multipart file. Whisper returns an empty transcript for
// silence, which maps to the NoSpeech outcome.
func (p *Provider) Transcribe(ctx context.Context, a stt.Audio) (stt.Result, error) {
	if a.SampleRate <= 0 {
		return stt.Result{}, fmt.Errorf("whisper: invalid sample rate %d", a.SampleRate)
	}
	channels := a.Channels
	if channels == 0 {
		channels = 1
	}

	wav := audio.EncodeWAV(a.PCM, a.SampleRate, channels)

	params := oai.AudioTranscriptionNewParams{
		Model: p.model,
		File:  oai.File(bytes.NewReader(wav), "voice.wav", "audio/wav"),
	}
	if lang := baseLanguage(a.Language); lang != "" {
		params.Language = oai.String(lang)
	}

	resp, err := p.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return stt.Result{}, fmt.Errorf("whisper: transcription request: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return stt.Result{NoSpeech: true}, nil
	}
	return stt.Result{Text: text}, nil
}

// baseLanguage reduces a BCP-47 tag like "ru-RU" to the ISO-639-1 code the
// transcription API expects.
func baseLanguage(tag string) string {
	if tag == "" {
		return ""
	}
	if i := strings.IndexByte(tag, '-'); i > 0 {
		return tag[:i]
	}
	return tag
}
