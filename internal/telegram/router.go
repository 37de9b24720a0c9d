package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/pravkabot/pravka/internal/editor"
	"github.com/pravkabot/pravka/internal/observe"
	"github.com/pravkabot/pravka/internal/pipeline"
	"github.com/pravkabot/pravka/internal/session"
)

// Status indicators shown while a request is in flight, and the fixed replies
// for the failure paths.
const (
	indicatorListening  = "🎧 Listening and processing..."
	indicatorEditing    = "✍️ Reading and editing..."
	indicatorCorrecting = "✍️ Speech recognized. Fixing mistakes..."
	indicatorAnalyzing  = "🤔 Analyzing the edits..."

	replyNoSpeech      = "Could not make out any speech (silence or unintelligible)."
	replyBadAudio      = "Could not read that voice note. Please try recording it again."
	replyNotConfigured = "The editor is not configured: no language model API key is set."
	replyGenericError  = "❌ Something went wrong while processing the message."
)

// defaultTriggerWords start a follow-up question about the previous
// correction.
var defaultTriggerWords = []string{"why", "explain", "what's wrong"}

// Transcriber turns a voice payload into a transcription outcome.
// *pipeline.Transcriber is the production implementation.
type Transcriber interface {
	Transcribe(ctx context.Context, oggData []byte) pipeline.Transcription
}

// RouterOption is a functional option for [NewRouter].
type RouterOption func(*Router)

// WithTriggerWords overrides the follow-up question prefixes. Matching is
// case-insensitive.
func WithTriggerWords(words []string) RouterOption {
	return func(r *Router) {
		if len(words) > 0 {
			r.triggers = words
		}
	}
}

// WithRouterMetrics attaches metric instruments. When nil, nothing is
// recorded.
func WithRouterMetrics(m *observe.Metrics) RouterOption {
	return func(r *Router) { r.metrics = m }
}

// Router decides, per incoming message, whether to transcribe, correct, or
// explain, and drives the indicator-message choreography around each path.
// It is safe for concurrent use.
type Router struct {
	transport   Transport
	store       *session.Store
	corrector   *editor.Corrector
	explainer   *editor.Explainer
	transcriber Transcriber
	triggers    []string
	metrics     *observe.Metrics
}

// NewRouter wires the router's collaborators together.
func NewRouter(
	transport Transport,
	store *session.Store,
	corrector *editor.Corrector,
	explainer *editor.Explainer,
	transcriber Transcriber,
	opts ...RouterOption,
) *Router {
	r := &Router{
		transport:   transport,
		store:       store,
		corrector:   corrector,
		explainer:   explainer,
		transcriber: transcriber,
		triggers:    defaultTriggerWords,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// HandleText routes one text message. Commands (any "/" prefix) are ignored;
// a trigger-word prefix with stored context becomes an explanation request;
// everything else is corrected.
func (r *Router) HandleText(ctx context.Context, msg Incoming) {
	text := strings.TrimSpace(msg.Text)
	if text == "" || strings.HasPrefix(text, "/") {
		return
	}
	defer r.trackInFlight(ctx)()

	if r.isQuestion(text) {
		if prev, ok := r.store.Get(msg.UserID); ok {
			r.handleExplanation(ctx, msg, prev, text)
			return
		}
		// No stored context: the question is treated as text to correct.
	}

	r.handleCorrection(ctx, msg, text)
}

// HandleVoice routes one voice note: download, transcribe, then correct.
func (r *Router) HandleVoice(ctx context.Context, msg Incoming) {
	defer r.trackInFlight(ctx)()

	indicator, err := r.transport.SendMessage(ctx, msg.ChatID, indicatorListening, SendOptions{})
	if err != nil {
		slog.Error("send indicator failed", "error", err, "chat_id", msg.ChatID)
		return
	}

	payload, err := r.transport.DownloadFile(ctx, msg.VoiceFileID)
	if err != nil {
		slog.Error("voice download failed", "error", err, "chat_id", msg.ChatID)
		r.editOrLog(ctx, indicator, replyGenericError)
		r.recordMessage(ctx, "voice", "error")
		return
	}

	tr := r.transcriber.Transcribe(ctx, payload)
	switch tr.Status {
	case pipeline.StatusBadAudio:
		slog.Warn("undecodable voice note", "error", tr.Err, "chat_id", msg.ChatID)
		r.editOrLog(ctx, indicator, replyBadAudio)
		r.recordMessage(ctx, "voice", "bad_audio")
		return
	case pipeline.StatusNoSpeech:
		r.editOrLog(ctx, indicator, replyNoSpeech)
		r.recordMessage(ctx, "voice", "no_speech")
		return
	case pipeline.StatusServiceError:
		slog.Error("transcription failed", "error", tr.Err, "chat_id", msg.ChatID)
		r.editOrLog(ctx, indicator, fmt.Sprintf("Speech recognition error: %v", tr.Err))
		r.recordMessage(ctx, "voice", "stt_error")
		return
	}

	r.editOrLog(ctx, indicator, indicatorCorrecting)

	corrected, err := r.correctTimed(ctx, tr.Text)
	if err != nil {
		r.replyCorrectionError(ctx, indicator, err)
		r.recordMessage(ctx, "voice", "llm_error")
		return
	}

	r.store.Set(msg.UserID, session.Context{Raw: tr.Text, Corrected: corrected})
	r.deleteOrLog(ctx, indicator)
	r.sendReply(ctx, msg, corrected)
	r.recordMessage(ctx, "voice", "corrected")
}

// handleCorrection runs the plain text correction path.
func (r *Router) handleCorrection(ctx context.Context, msg Incoming, text string) {
	indicator, err := r.transport.SendMessage(ctx, msg.ChatID, indicatorEditing, SendOptions{})
	if err != nil {
		slog.Error("send indicator failed", "error", err, "chat_id", msg.ChatID)
		return
	}

	corrected, err := r.correctTimed(ctx, text)
	if err != nil {
		r.replyCorrectionError(ctx, indicator, err)
		r.recordMessage(ctx, "text", "llm_error")
		return
	}

	r.store.Set(msg.UserID, session.Context{Raw: text, Corrected: corrected})
	r.deleteOrLog(ctx, indicator)
	r.sendReply(ctx, msg, corrected)
	r.recordMessage(ctx, "text", "corrected")
}

// handleExplanation answers a follow-up question about the user's previous
// correction.
func (r *Router) handleExplanation(ctx context.Context, msg Incoming, prev session.Context, question string) {
	indicator, err := r.transport.SendMessage(ctx, msg.ChatID, indicatorAnalyzing, SendOptions{})
	if err != nil {
		slog.Error("send indicator failed", "error", err, "chat_id", msg.ChatID)
		return
	}

	start := time.Now()
	explanation, err := r.explainer.Explain(ctx, prev.Raw, prev.Corrected, question)
	r.recordLLMCall(ctx, "explain", start, err)
	if err != nil {
		r.replyCorrectionError(ctx, indicator, err)
		r.recordMessage(ctx, "text", "llm_error")
		return
	}

	r.deleteOrLog(ctx, indicator)
	for _, chunk := range chunkText(explanation) {
		if _, err := r.transport.SendMessage(ctx, msg.ChatID, chunk, SendOptions{}); err != nil {
			slog.Error("send explanation failed", "error", err, "chat_id", msg.ChatID)
			return
		}
	}
	r.recordMessage(ctx, "text", "explained")
}

// sendReply delivers the corrected text, prefixing the forward attribution
// when present. The forward header uses HTML formatting, so the body is
// escaped in that case; otherwise the text goes out verbatim.
func (r *Router) sendReply(ctx context.Context, msg Incoming, corrected string) {
	text := corrected
	opts := SendOptions{}
	if msg.Forward != nil {
		text = msg.Forward.Label() + html.EscapeString(corrected)
		opts.HTML = true
	}

	for _, chunk := range chunkText(text) {
		if _, err := r.transport.SendMessage(ctx, msg.ChatID, chunk, opts); err != nil {
			slog.Error("send reply failed", "error", err, "chat_id", msg.ChatID)
			return
		}
	}
}

// correctTimed wraps the corrector call with the LLM request metrics.
func (r *Router) correctTimed(ctx context.Context, text string) (string, error) {
	start := time.Now()
	corrected, err := r.corrector.Correct(ctx, text)
	r.recordLLMCall(ctx, "correct", start, err)
	return corrected, err
}

// replyCorrectionError rewrites the indicator with an error explanation. A
// missing LLM configuration gets its fixed reply; anything else surfaces the
// last backend error so the user knows the request did not silently vanish.
func (r *Router) replyCorrectionError(ctx context.Context, indicator MessageRef, err error) {
	if errors.Is(err, editor.ErrNotConfigured) {
		r.editOrLog(ctx, indicator, replyNotConfigured)
		return
	}
	slog.Error("llm request failed", "error", err)
	r.editOrLog(ctx, indicator, fmt.Sprintf("Could not process the request. API error: %v", err))
}

// isQuestion reports whether text starts with one of the trigger words,
// case-insensitively.
func (r *Router) isQuestion(text string) bool {
	lower := strings.ToLower(text)
	for _, t := range r.triggers {
		if strings.HasPrefix(lower, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

func (r *Router) editOrLog(ctx context.Context, ref MessageRef, text string) {
	if err := r.transport.EditMessage(ctx, ref, text); err != nil {
		slog.Error("edit indicator failed", "error", err, "chat_id", ref.ChatID)
	}
}

func (r *Router) deleteOrLog(ctx context.Context, ref MessageRef) {
	if err := r.transport.DeleteMessage(ctx, ref); err != nil {
		slog.Warn("delete indicator failed", "error", err, "chat_id", ref.ChatID)
	}
}

func (r *Router) recordMessage(ctx context.Context, kind, outcome string) {
	if r.metrics != nil {
		r.metrics.RecordMessage(ctx, kind, outcome)
	}
}

// recordLLMCall records latency and the request counter for one corrector or
// explainer invocation.
func (r *Router) recordLLMCall(ctx context.Context, kind string, start time.Time, err error) {
	if r.metrics == nil {
		return
	}
	r.metrics.LLMDuration.Record(ctx, time.Since(start).Seconds())
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.metrics.RecordProviderRequest(ctx, "llm", kind, status)
}

// trackInFlight bumps the in-flight gauge and returns the matching decrement.
func (r *Router) trackInFlight(ctx context.Context) func() {
	if r.metrics == nil {
		return func() {}
	}
	r.metrics.InFlight.Add(ctx, 1)
	return func() { r.metrics.InFlight.Add(ctx, -1) }
}
