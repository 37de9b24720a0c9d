package telegram

import (
	"testing"

	"github.com/go-telegram/bot/models"
)

func TestOriginFromMessage_NotForwarded(t *testing.T) {
	if o := OriginFromMessage(&models.Message{}); o != nil {
		t.Errorf("origin = %+v for a plain message, want nil", o)
	}
}

func TestOriginFromMessage_User(t *testing.T) {
	m := &models.Message{ForwardOrigin: &models.MessageOrigin{
		Type: models.MessageOriginTypeUser,
		MessageOriginUser: &models.MessageOriginUser{
			SenderUser: models.User{FirstName: "Anna", LastName: "Petrova"},
		},
	}}
	if got := OriginFromMessage(m).Name; got != "Anna Petrova" {
		t.Errorf("name = %q, want %q", got, "Anna Petrova")
	}
}

func TestOriginFromMessage_UserFirstNameOnly(t *testing.T) {
	m := &models.Message{ForwardOrigin: &models.MessageOrigin{
		Type: models.MessageOriginTypeUser,
		MessageOriginUser: &models.MessageOriginUser{
			SenderUser: models.User{FirstName: "Boris"},
		},
	}}
	if got := OriginFromMessage(m).Name; got != "Boris" {
		t.Errorf("name = %q, want %q", got, "Boris")
	}
}

func TestOriginFromMessage_HiddenUser(t *testing.T) {
	m := &models.Message{ForwardOrigin: &models.MessageOrigin{
		Type: models.MessageOriginTypeHiddenUser,
		MessageOriginHiddenUser: &models.MessageOriginHiddenUser{
			SenderUserName: "Someone",
		},
	}}
	if got := OriginFromMessage(m).Name; got != "Someone" {
		t.Errorf("name = %q, want %q", got, "Someone")
	}
}

func TestOriginFromMessage_Chat(t *testing.T) {
	m := &models.Message{ForwardOrigin: &models.MessageOrigin{
		Type: models.MessageOriginTypeChat,
		MessageOriginChat: &models.MessageOriginChat{
			SenderChat: models.Chat{Title: "Book Club"},
		},
	}}
	if got := OriginFromMessage(m).Name; got != "Book Club" {
		t.Errorf("name = %q, want %q", got, "Book Club")
	}
}

func TestOriginFromMessage_Channel(t *testing.T) {
	m := &models.Message{ForwardOrigin: &models.MessageOrigin{
		Type: models.MessageOriginTypeChannel,
		MessageOriginChannel: &models.MessageOriginChannel{
			Chat: models.Chat{Title: "Daily News"},
		},
	}}
	if got := OriginFromMessage(m).Name; got != "Daily News" {
		t.Errorf("name = %q, want %q", got, "Daily News")
	}
}

func TestOriginFromMessage_MissingDetails(t *testing.T) {
	m := &models.Message{ForwardOrigin: &models.MessageOrigin{
		Type: models.MessageOriginTypeUser,
	}}
	if got := OriginFromMessage(m).Name; got != "forwarded message" {
		t.Errorf("name = %q, want the generic label", got)
	}
}

func TestOriginFromMessage_ChannelWithoutTitle(t *testing.T) {
	m := &models.Message{ForwardOrigin: &models.MessageOrigin{
		Type:                 models.MessageOriginTypeChannel,
		MessageOriginChannel: &models.MessageOriginChannel{},
	}}
	if got := OriginFromMessage(m).Name; got != "channel" {
		t.Errorf("name = %q, want %q", got, "channel")
	}
}

func TestOriginLabel_Format(t *testing.T) {
	o := &Origin{Name: "Anna Petrova"}
	got := o.Label()
	want := "↩ from <b>Anna Petrova</b>:\n\n"
	if got != want {
		t.Errorf("label = %q, want %q", got, want)
	}
}

func TestOriginLabel_EscapesName(t *testing.T) {
	o := &Origin{Name: "A <b> & B"}
	got := o.Label()
	want := "↩ from <b>A &lt;b&gt; &amp; B</b>:\n\n"
	if got != want {
		t.Errorf("label = %q, want %q", got, want)
	}
}
