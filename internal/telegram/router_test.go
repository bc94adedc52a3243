package telegram

import (
	"context"
	"errors"
	"io"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	texts []string
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.texts = append(f.texts, m.Text)
	}
	return tgbotapi.Message{}, nil
}

type recordingHandler struct {
	args []string
	err  error
}

func (h *recordingHandler) Handle(_ context.Context, _ Sender, _ *tgbotapi.Message, args []string) error {
	h.args = args
	return h.err
}

func command(text string, length int) *tgbotapi.Message {
	return &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: 100},
		From: &tgbotapi.User{ID: 7},
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: length},
		},
	}
}

func newRouter() *Router {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return NewRouter(l)
}

func TestRouter_DispatchesWithArgs(t *testing.T) {
	r := newRouter()
	h := &recordingHandler{}
	r.RegisterCommand("wish", "Add a wish", h)

	sender := &fakeSender{}
	r.HandleMessage(context.Background(), sender, command("/wish Tom  Coffee mug", 5))

	require.Equal(t, []string{"Tom", "Coffee", "mug"}, h.args)
	require.Empty(t, sender.texts)
}

func TestRouter_UnknownCommand(t *testing.T) {
	r := newRouter()
	sender := &fakeSender{}
	r.HandleMessage(context.Background(), sender, command("/reserve 5", 8))

	require.Len(t, sender.texts, 1)
	require.Contains(t, sender.texts[0], "/help")
}

func TestRouter_HandlerErrorIsReported(t *testing.T) {
	r := newRouter()
	r.RegisterCommand("members", "List members", &recordingHandler{err: errors.New("boom")})

	sender := &fakeSender{}
	r.HandleMessage(context.Background(), sender, command("/members", 8))

	require.Len(t, sender.texts, 1)
	require.Contains(t, sender.texts[0], "An error occurred")
}

func TestRouter_IgnoresPlainText(t *testing.T) {
	r := newRouter()
	h := &recordingHandler{}
	r.RegisterCommand("wish", "Add a wish", h)

	sender := &fakeSender{}
	msg := command("hello there", 0)
	msg.Entities = nil
	r.HandleMessage(context.Background(), sender, msg)

	require.Nil(t, h.args)
	require.Empty(t, sender.texts)
}

func TestRouter_Commands(t *testing.T) {
	r := newRouter()
	r.RegisterCommand("wishlist", "Show a wishlist", &recordingHandler{})
	r.RegisterCommand("help", "Show help", &recordingHandler{})

	require.Equal(t, []tgbotapi.BotCommand{
		{Command: "help", Description: "Show help"},
		{Command: "wishlist", Description: "Show a wishlist"},
	}, r.Commands())
}
