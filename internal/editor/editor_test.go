package editor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pravkabot/pravka/internal/resilience"
	"github.com/pravkabot/pravka/pkg/provider/llm"
	llmmock "github.com/pravkabot/pravka/pkg/provider/llm/mock"
)

// ---- corrector ---------------------------------------------------------------

func TestCorrector_ReturnsTrimmedModelOutput(t *testing.T) {
	p := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "  I am here.  \n"},
	}
	c := NewCorrector(p)

	got, err := c.Correct(context.Background(), "me is here")
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if got != "I am here." {
		t.Errorf("Correct = %q, want %q", got, "I am here.")
	}
}

func TestCorrector_SendsTextInUserMessage(t *testing.T) {
	p := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "ok"},
	}
	c := NewCorrector(p)

	if _, err := c.Correct(context.Background(), "my draft text"); err != nil {
		t.Fatalf("Correct: %v", err)
	}

	calls := p.Calls()
	if len(calls) != 1 {
		t.Fatalf("provider called %d time(s), want 1", len(calls))
	}
	req := calls[0].Req
	if req.SystemPrompt == "" {
		t.Error("request carries no system prompt")
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
		t.Fatalf("messages = %+v, want a single user message", req.Messages)
	}
	if !strings.Contains(req.Messages[0].Content, "my draft text") {
		t.Errorf("user message %q does not contain the input text", req.Messages[0].Content)
	}
	if req.Temperature != defaultTemperature {
		t.Errorf("temperature = %v, want %v", req.Temperature, defaultTemperature)
	}
}

func TestCorrector_NilProvider_ReturnsErrNotConfigured(t *testing.T) {
	c := NewCorrector(nil)
	_, err := c.Correct(context.Background(), "text")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestCorrector_EmptyModelOutput_ReturnsError(t *testing.T) {
	p := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "   "},
	}
	c := NewCorrector(p)
	if _, err := c.Correct(context.Background(), "text"); err == nil {
		t.Fatal("expected error for empty model output, got nil")
	}
}

func TestCorrector_ProviderError_IsWrapped(t *testing.T) {
	provErr := errors.New("model unavailable")
	p := &llmmock.Provider{CompleteErr: provErr}
	c := NewCorrector(p)

	_, err := c.Correct(context.Background(), "text")
	if !errors.Is(err, provErr) {
		t.Fatalf("err = %v, want wrapped provider error", err)
	}
}

func TestCorrector_WithTemperature(t *testing.T) {
	p := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "ok"},
	}
	c := NewCorrector(p, WithTemperature(0.7))

	if _, err := c.Correct(context.Background(), "text"); err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if got := p.Calls()[0].Req.Temperature; got != 0.7 {
		t.Errorf("temperature = %v, want 0.7", got)
	}
}

// TestCorrector_TriesEveryCandidateOnce drives the corrector through an
// ordered fallback of three failing backends and checks each got exactly one
// attempt and the surfaced error is the last backend's.
func TestCorrector_TriesEveryCandidateOnce(t *testing.T) {
	errA := errors.New("backend a down")
	errB := errors.New("backend b down")
	errC := errors.New("backend c down")

	a := &llmmock.Provider{CompleteErr: errA}
	b := &llmmock.Provider{CompleteErr: errB}
	cBackend := &llmmock.Provider{CompleteErr: errC}

	group := resilience.NewLLMFallback(a, "a")
	group.AddFallback("b", b)
	group.AddFallback("c", cBackend)

	c := NewCorrector(group)
	_, err := c.Correct(context.Background(), "text")
	if err == nil {
		t.Fatal("expected error when all backends fail")
	}
	if !errors.Is(err, resilience.ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
	if !strings.Contains(err.Error(), errC.Error()) {
		t.Errorf("err = %v, should carry the last backend's error", err)
	}
	for name, backend := range map[string]*llmmock.Provider{"a": a, "b": b, "c": cBackend} {
		if n := len(backend.Calls()); n != 1 {
			t.Errorf("backend %s called %d time(s), want exactly 1", name, n)
		}
	}
}

func TestCorrector_FallbackRecoversMidList(t *testing.T) {
	a := &llmmock.Provider{CompleteErr: errors.New("down")}
	b := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "Fixed."},
	}
	cBackend := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "should not run"},
	}

	group := resilience.NewLLMFallback(a, "a")
	group.AddFallback("b", b)
	group.AddFallback("c", cBackend)

	got, err := NewCorrector(group).Correct(context.Background(), "text")
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if got != "Fixed." {
		t.Errorf("Correct = %q, want %q", got, "Fixed.")
	}
	if n := len(cBackend.Calls()); n != 0 {
		t.Errorf("backend after the winner called %d time(s), want 0", n)
	}
}

// ---- explainer ---------------------------------------------------------------

func TestExplainer_FoldsContextIntoOneUserMessage(t *testing.T) {
	p := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "Because commas."},
	}
	e := NewExplainer(p)

	got, err := e.Explain(context.Background(), "me is here", "I am here.", "why the comma?")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if got != "Because commas." {
		t.Errorf("Explain = %q, want %q", got, "Because commas.")
	}

	req := p.Calls()[0].Req
	if len(req.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(req.Messages))
	}
	msg := req.Messages[0].Content
	for _, part := range []string{"me is here", "I am here.", "why the comma?"} {
		if !strings.Contains(msg, part) {
			t.Errorf("user message %q missing %q", msg, part)
		}
	}
}

func TestExplainer_NilProvider_ReturnsErrNotConfigured(t *testing.T) {
	e := NewExplainer(nil)
	_, err := e.Explain(context.Background(), "a", "b", "why?")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestExplainer_EmptyModelOutput_ReturnsError(t *testing.T) {
	p := &llmmock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: ""},
	}
	e := NewExplainer(p)
	if _, err := e.Explain(context.Background(), "a", "b", "why?"); err == nil {
		t.Fatal("expected error for empty model output, got nil")
	}
}
