package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/pravkabot/pravka/internal/observe"
	"github.com/pravkabot/pravka/pkg/audio"
	"github.com/pravkabot/pravka/pkg/provider/stt"
	sttmock "github.com/pravkabot/pravka/pkg/provider/stt/mock"
)

// fakePCM short-circuits the Opus decode so tests can drive the recognition
// path without hand-crafting valid Opus packets.
func fakePCM(t *Transcriber, pcm []byte, err error) {
	t.decode = func([]byte, int) ([]byte, error) { return pcm, err }
}

func TestTranscribe_RecognizedSpeech(t *testing.T) {
	p := &sttmock.Provider{TranscribeResult: stt.Result{Text: "hello world"}}
	tr := NewTranscriber(p, WithLanguage("en-US"))
	fakePCM(tr, make([]byte, 320), nil)

	got := tr.Transcribe(context.Background(), []byte("ogg"))
	if got.Status != StatusOK {
		t.Fatalf("Status = %v, want StatusOK (err: %v)", got.Status, got.Err)
	}
	if got.Text != "hello world" {
		t.Errorf("Text = %q, want %q", got.Text, "hello world")
	}
}

func TestTranscribe_PassesFormatAndLanguageToProvider(t *testing.T) {
	p := &sttmock.Provider{TranscribeResult: stt.Result{Text: "ok"}}
	tr := NewTranscriber(p, WithLanguage("ru-RU"), WithTargetRate(8000))
	pcm := make([]byte, 160)
	fakePCM(tr, pcm, nil)

	tr.Transcribe(context.Background(), []byte("ogg"))

	calls := p.Calls()
	if len(calls) != 1 {
		t.Fatalf("provider called %d time(s), want 1", len(calls))
	}
	a := calls[0].Audio
	if a.SampleRate != 8000 || a.Channels != 1 {
		t.Errorf("audio format = %dHz/%dch, want 8000Hz/1ch", a.SampleRate, a.Channels)
	}
	if a.Language != "ru-RU" {
		t.Errorf("language = %q, want ru-RU", a.Language)
	}
	if len(a.PCM) != len(pcm) {
		t.Errorf("PCM length = %d, want %d", len(a.PCM), len(pcm))
	}
}

func TestTranscribe_NoSpeech(t *testing.T) {
	p := &sttmock.Provider{TranscribeResult: stt.Result{NoSpeech: true}}
	tr := NewTranscriber(p)
	fakePCM(tr, make([]byte, 320), nil)

	got := tr.Transcribe(context.Background(), []byte("ogg"))
	if got.Status != StatusNoSpeech {
		t.Fatalf("Status = %v, want StatusNoSpeech", got.Status)
	}
	if got.Text != "" {
		t.Errorf("Text = %q, want empty", got.Text)
	}
}

func TestTranscribe_MalformedAudio_SkipsRecognition(t *testing.T) {
	p := &sttmock.Provider{TranscribeResult: stt.Result{Text: "should not run"}}
	tr := NewTranscriber(p)

	// Real decoder, garbage payload.
	got := tr.Transcribe(context.Background(), []byte("definitely not an ogg container"))
	if got.Status != StatusBadAudio {
		t.Fatalf("Status = %v, want StatusBadAudio", got.Status)
	}
	if !errors.Is(got.Err, audio.ErrMalformed) {
		t.Errorf("Err = %v, want ErrMalformed", got.Err)
	}
	if n := len(p.Calls()); n != 0 {
		t.Errorf("provider called %d time(s) for undecodable audio, want 0", n)
	}
}

func TestTranscribe_ServiceError(t *testing.T) {
	svcErr := errors.New("recognition service down")
	p := &sttmock.Provider{TranscribeErr: svcErr}
	tr := NewTranscriber(p)
	fakePCM(tr, make([]byte, 320), nil)

	got := tr.Transcribe(context.Background(), []byte("ogg"))
	if got.Status != StatusServiceError {
		t.Fatalf("Status = %v, want StatusServiceError", got.Status)
	}
	if !errors.Is(got.Err, svcErr) {
		t.Errorf("Err = %v, want wrapped service error", got.Err)
	}
}

func TestTranscribe_CancelledContext_ReturnsServiceError(t *testing.T) {
	p := &sttmock.Provider{}
	tr := NewTranscriber(p, WithConcurrency(1))
	fakePCM(tr, make([]byte, 320), nil)

	// Hold the only decode slot so Acquire must block, then cancel.
	if err := tr.decodeSem.Acquire(context.Background(), 1); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer tr.decodeSem.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := tr.Transcribe(ctx, []byte("ogg"))
	if got.Status != StatusServiceError {
		t.Fatalf("Status = %v, want StatusServiceError", got.Status)
	}
}

func TestTranscribe_ConcurrentCalls(t *testing.T) {
	p := &sttmock.Provider{TranscribeFunc: func(call int, a stt.Audio) (stt.Result, error) {
		return stt.Result{Text: fmt.Sprintf("utterance %d", call)}, nil
	}}
	tr := NewTranscriber(p, WithConcurrency(2))
	fakePCM(tr, make([]byte, 320), nil)

	done := make(chan Transcription, 8)
	for i := 0; i < 8; i++ {
		go func() {
			done <- tr.Transcribe(context.Background(), []byte("ogg"))
		}()
	}
	for i := 0; i < 8; i++ {
		if got := <-done; got.Status != StatusOK {
			t.Errorf("Status = %v, want StatusOK", got.Status)
		}
	}
	if n := len(p.Calls()); n != 8 {
		t.Errorf("provider called %d time(s), want 8", n)
	}
}

// ---- metrics -----------------------------------------------------------------

func newTestMetrics(t *testing.T) (*observe.Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// counterValue sums all data points of a named Int64 counter in the export.
func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string) (int64, bool) {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s has unexpected data type %T", name, m.Data)
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total, true
		}
	}
	return 0, false
}

func TestTranscribe_RecordsProviderRequest(t *testing.T) {
	m, reader := newTestMetrics(t)
	p := &sttmock.Provider{TranscribeResult: stt.Result{Text: "ok"}}
	tr := NewTranscriber(p, WithMetrics(m))
	fakePCM(tr, make([]byte, 320), nil)

	tr.Transcribe(context.Background(), []byte("ogg"))

	got, ok := counterValue(t, reader, "pravka.provider.requests")
	if !ok || got != 1 {
		t.Errorf("provider request counter = %d (exported %v), want 1", got, ok)
	}
}

func TestTranscribe_RecordsProviderErrorAndRequest(t *testing.T) {
	m, reader := newTestMetrics(t)
	p := &sttmock.Provider{TranscribeErr: errors.New("unreachable")}
	tr := NewTranscriber(p, WithMetrics(m))
	fakePCM(tr, make([]byte, 320), nil)

	tr.Transcribe(context.Background(), []byte("ogg"))

	if got, ok := counterValue(t, reader, "pravka.provider.requests"); !ok || got != 1 {
		t.Errorf("provider request counter = %d (exported %v), want 1", got, ok)
	}
	if got, ok := counterValue(t, reader, "pravka.provider.errors"); !ok || got != 1 {
		t.Errorf("provider error counter = %d (exported %v), want 1", got, ok)
	}
}
