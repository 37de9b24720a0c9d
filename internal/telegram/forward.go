package telegram

import (
	"fmt"
	"html"
	"strings"

	"github.com/go-telegram/bot/models"
)

// Origin attributes a forwarded message to its original author.
type Origin struct {
	// Name is the display name of the original sender: a user's full name, a
	// chat or channel title, or the name a hidden user chose to show.
	Name string
}

// OriginFromMessage extracts forward attribution from a message, or nil when
// the message is not forwarded.
func OriginFromMessage(m *models.Message) *Origin {
	fo := m.ForwardOrigin
	if fo == nil {
		return nil
	}

	name := "forwarded message"
	switch fo.Type {
	case models.MessageOriginTypeUser:
		if fo.MessageOriginUser != nil {
			name = fullName(&fo.MessageOriginUser.SenderUser)
		}
	case models.MessageOriginTypeHiddenUser:
		if fo.MessageOriginHiddenUser != nil && fo.MessageOriginHiddenUser.SenderUserName != "" {
			name = fo.MessageOriginHiddenUser.SenderUserName
		}
	case models.MessageOriginTypeChat:
		name = "chat"
		if fo.MessageOriginChat != nil && fo.MessageOriginChat.SenderChat.Title != "" {
			name = fo.MessageOriginChat.SenderChat.Title
		}
	case models.MessageOriginTypeChannel:
		name = "channel"
		if fo.MessageOriginChannel != nil && fo.MessageOriginChannel.Chat.Title != "" {
			name = fo.MessageOriginChannel.Chat.Title
		}
	}

	return &Origin{Name: name}
}

// Label renders the attribution header prepended to the corrected text,
// separated from the body by a blank line. The name is HTML-escaped because
// the header uses HTML formatting.
func (o *Origin) Label() string {
	return fmt.Sprintf("↩ from <b>%s</b>:\n\n", html.EscapeString(o.Name))
}

// fullName joins a user's first and last name.
func fullName(u *models.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return "forwarded message"
	}
	return name
}
