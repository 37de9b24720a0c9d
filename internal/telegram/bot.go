package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// greeting is the /start reply. HTML formatted.
const greeting = "👋 <b>Hi! I'm a free AI editor.</b>\n\n" +
	"🎤 <b>Voice:</b> Send me a voice note of any length and I'll turn it into clean, punctuated text.\n" +
	"📝 <b>Text:</b> Write or forward me any draft and I'll fix the mistakes.\n\n" +
	"<i>Ask \"why\" after a correction and I'll explain the edits.</i>"

// Compile-time assertion that Bot implements Transport.
var _ Transport = (*Bot)(nil)

// BotOption is a functional option for [NewBot].
type BotOption func(*Bot)

// WithHTTPClient overrides the client used for file downloads.
func WithHTTPClient(c *http.Client) BotOption {
	return func(b *Bot) { b.httpClient = c }
}

// Bot connects the router to the Telegram Bot API: it receives updates via
// long polling and implements [Transport] for the outbound side.
type Bot struct {
	api        *bot.Bot
	router     *Router
	httpClient *http.Client
}

// NewBot creates a Bot authenticated with token. Call [Bot.SetRouter] before
// [Bot.Start]; updates arriving without a router are dropped.
func NewBot(token string, opts ...BotOption) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram: token must not be empty")
	}

	b := &Bot{
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, o := range opts {
		o(b)
	}

	api, err := bot.New(token, bot.WithDefaultHandler(b.onUpdate))
	if err != nil {
		return nil, fmt.Errorf("telegram: create bot: %w", err)
	}
	api.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, b.onStart)

	b.api = api
	return b, nil
}

// SetRouter attaches the message router. Must be called before Start.
func (b *Bot) SetRouter(r *Router) { b.router = r }

// Start begins long polling and blocks until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	b.api.Start(ctx)
}

// onStart answers /start with the greeting and removes any leftover custom
// keyboard.
func (b *Bot) onStart(ctx context.Context, api *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	_, err := api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        greeting,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: &models.ReplyKeyboardRemove{RemoveKeyboard: true},
	})
	if err != nil {
		slog.Error("send greeting failed", "error", err, "chat_id", update.Message.Chat.ID)
	}
}

// onUpdate converts a raw update into an [Incoming] and hands it to the
// router. Non-message updates and messages without a sender are ignored.
func (b *Bot) onUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || b.router == nil {
		return
	}

	in := Incoming{
		ChatID:  msg.Chat.ID,
		UserID:  msg.From.ID,
		Text:    msg.Text,
		Forward: OriginFromMessage(msg),
	}

	switch {
	case msg.Voice != nil:
		in.VoiceFileID = msg.Voice.FileID
		b.router.HandleVoice(ctx, in)
	case msg.Text != "":
		b.router.HandleText(ctx, in)
	}
}

// ── Transport implementation ──────────────────────────────────────────────────

// SendMessage implements [Transport].
func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string, opts SendOptions) (MessageRef, error) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if opts.HTML {
		params.ParseMode = models.ParseModeHTML
	}
	if opts.RemoveKeyboard {
		params.ReplyMarkup = &models.ReplyKeyboardRemove{RemoveKeyboard: true}
	}

	sent, err := b.api.SendMessage(ctx, params)
	if err != nil {
		return MessageRef{}, fmt.Errorf("telegram: send message: %w", err)
	}
	return MessageRef{ChatID: chatID, MessageID: sent.ID}, nil
}

// EditMessage implements [Transport].
func (b *Bot) EditMessage(ctx context.Context, ref MessageRef, text string) error {
	_, err := b.api.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    ref.ChatID,
		MessageID: ref.MessageID,
		Text:      text,
	})
	if err != nil {
		return fmt.Errorf("telegram: edit message: %w", err)
	}
	return nil
}

// DeleteMessage implements [Transport].
func (b *Bot) DeleteMessage(ctx context.Context, ref MessageRef) error {
	_, err := b.api.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    ref.ChatID,
		MessageID: ref.MessageID,
	})
	if err != nil {
		return fmt.Errorf("telegram: delete message: %w", err)
	}
	return nil
}

// DownloadFile implements [Transport]. It resolves the file path via getFile
// and fetches the content from the Bot API file endpoint.
func (b *Bot) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	f, err := b.api.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("telegram: get file: %w", err)
	}

	url := b.api.FileDownloadLink(f)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("telegram: create download request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram: download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram: download file: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("telegram: read file body: %w", err)
	}
	return data, nil
}
