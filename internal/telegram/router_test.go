package telegram

import (
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/dayplan/pkg/logger"
)

type recorder struct{ texts []string }

func (r *recorder) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		r.texts = append(r.texts, msg.Text)
	}
	return tgbotapi.Message{}, nil
}

type handlerFunc func(bot Sender, message *tgbotapi.Message, args []string) error

func (f handlerFunc) Handle(bot Sender, message *tgbotapi.Message, args []string) error {
	return f(bot, message, args)
}

func command(text string) *tgbotapi.Message {
	length := len(text)
	for i, r := range text {
		if r == ' ' {
			length = i
			break
		}
	}
	return &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: 5},
		From:     &tgbotapi.User{ID: 77, FirstName: "Ann"},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}
}

func TestRouterDispatchesArgs(t *testing.T) {
	r := NewRouter(logger.Discard())
	var got []string
	r.RegisterCommand("order", handlerFunc(func(_ Sender, _ *tgbotapi.Message, args []string) error {
		got = args
		return nil
	}))

	r.HandleMessage(&recorder{}, command("/order training 2 1"))
	assert.Equal(t, []string{"training", "2", "1"}, got)
}

func TestRouterReportsFailures(t *testing.T) {
	r := NewRouter(logger.Discard())
	r.RegisterCommand("boom", handlerFunc(func(Sender, *tgbotapi.Message, []string) error {
		return errors.New("boom")
	}))

	rec := &recorder{}
	r.HandleMessage(rec, command("/boom"))
	r.HandleMessage(rec, command("/nope"))
	r.HandleMessage(rec, &tgbotapi.Message{Text: "hello", Chat: &tgbotapi.Chat{ID: 5}, From: &tgbotapi.User{ID: 77}})

	require.Len(t, rec.texts, 2)
	assert.Contains(t, rec.texts[0], "error occurred")
	assert.Contains(t, rec.texts[1], "Unknown command")
}
