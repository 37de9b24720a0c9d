// Package telegram contains the chat-facing half of the bot: the Bot API
// transport, the per-message router, and the reply formatting helpers.
package telegram

import "context"

// MessageRef identifies a message the bot sent, for later edits or deletion.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// SendOptions control formatting of an outgoing message.
type SendOptions struct {
	// HTML enables HTML parse mode. The caller is responsible for escaping
	// user-controlled text.
	HTML bool
	// RemoveKeyboard asks the client to drop any custom reply keyboard.
	RemoveKeyboard bool
}

// Transport is the minimal Bot API surface the router needs. The production
// implementation wraps the Bot API client; tests substitute a recorder.
type Transport interface {
	// SendMessage sends text to a chat and returns a reference to the sent
	// message.
	SendMessage(ctx context.Context, chatID int64, text string, opts SendOptions) (MessageRef, error)

	// EditMessage replaces the text of a previously sent message.
	EditMessage(ctx context.Context, ref MessageRef, text string) error

	// DeleteMessage removes a previously sent message.
	DeleteMessage(ctx context.Context, ref MessageRef) error

	// DownloadFile fetches the content of a file by its Bot API file ID.
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

// Incoming is the transport-agnostic view of one user message.
type Incoming struct {
	ChatID int64
	UserID int64

	// Text is the message text, empty for voice notes.
	Text string

	// VoiceFileID is set for voice notes.
	VoiceFileID string

	// Forward attributes a forwarded message, nil otherwise.
	Forward *Origin
}
