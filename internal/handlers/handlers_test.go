package handlers

import (
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/dayplan/internal/repository/memory"
	"github.com/Kerhoff/dayplan/internal/service"
	"github.com/Kerhoff/dayplan/internal/telegram"
	"github.com/Kerhoff/dayplan/pkg/logger"
)

type recorder struct{ texts []string }

func (r *recorder) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		r.texts = append(r.texts, msg.Text)
	}
	return tgbotapi.Message{}, nil
}

func (r *recorder) last() string {
	if len(r.texts) == 0 {
		return ""
	}
	return r.texts[len(r.texts)-1]
}

type chat struct {
	t   *testing.T
	svc *service.Service
	bot *recorder
}

func newChat(t *testing.T) *chat {
	now := time.Date(2024, time.January, 6, 9, 0, 0, 0, time.UTC) // Saturday
	svc := service.New(memory.New(), logger.Discard(), service.WithClock(func() time.Time { return now }))
	return &chat{t: t, svc: svc, bot: &recorder{}}
}

func (c *chat) run(h telegram.CommandHandler, args ...string) string {
	c.t.Helper()
	message := &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: 5},
		From: &tgbotapi.User{ID: 77, FirstName: "Ann", UserName: "ann"},
	}
	require.NoError(c.t, h.Handle(c.bot, message, args))
	return c.bot.last()
}

func TestAddAndToday(t *testing.T) {
	c := newChat(t)
	l := logger.Discard()

	assert.Contains(t, c.run(NewAddHandler(c.svc, l), "training", "Morning", "run", "07:00"), "Morning run")
	c.run(NewAddHandler(c.svc, l), "check-in", "Weigh", "in")

	out := c.run(NewTodayHandler(c.svc, l))
	assert.Contains(t, out, "1. ⬜ Morning run  🕒 07:00")
	assert.Contains(t, out, "2. ⬜ Weigh in")

	assert.Contains(t, c.run(NewAddHandler(c.svc, l), "garden", "Water"), "unknown grouping context")
	assert.Contains(t, c.run(NewTodayHandler(c.svc, l), "garden"), "Unknown list")
}

func TestDoneSkipRestore(t *testing.T) {
	c := newChat(t)
	l := logger.Discard()
	c.run(NewAddHandler(c.svc, l), "training", "Run")
	c.run(NewAddHandler(c.svc, l), "training", "Swim")

	assert.Contains(t, c.run(NewDoneHandler(c.svc, l), "1"), "Done")
	assert.Contains(t, c.run(NewTodayHandler(c.svc, l)), "1. ✅ Run")
	assert.Contains(t, c.run(NewDoneHandler(c.svc, l), "1"), "Reopened")

	c.run(NewSkipHandler(c.svc, l), "2")
	out := c.run(NewTodayHandler(c.svc, l))
	assert.Contains(t, out, "Skipped today")
	assert.NotContains(t, out, "2. ⬜ Swim")

	assert.Contains(t, c.run(NewRestoreHandler(c.svc, l), "1"), "Swim")
	assert.Contains(t, c.run(NewTodayHandler(c.svc, l)), "2. ⬜ Swim")

	assert.Contains(t, c.run(NewDoneHandler(c.svc, l), "9"), "No such item")
}

func TestOrderAndLock(t *testing.T) {
	c := newChat(t)
	l := logger.Discard()
	c.run(NewAddHandler(c.svc, l), "training", "A")
	c.run(NewAddHandler(c.svc, l), "training", "B")

	assert.Contains(t, c.run(NewOrderHandler(c.svc, l), "training", "2", "1"), "reordered")
	assert.Contains(t, c.run(NewTodayHandler(c.svc, l), "training"), "1. ⬜ B")

	assert.Contains(t, c.run(NewLockHandler(c.svc, l), "day"), "locked")
	assert.Contains(t, c.run(NewOrderHandler(c.svc, l), "training", "2", "1"), "Ordering is locked")
	c.run(NewUnlockHandler(c.svc, l))

	// Saturday: a Monday to Friday lock waits for Monday.
	assert.Contains(t, c.run(NewLockHandler(c.svc, l), "week", "mon", "tue", "wed", "thu", "fri"), "starts on the next chosen day")
	assert.Contains(t, c.run(NewOrderHandler(c.svc, l), "training", "2", "1"), "reordered")

	assert.Contains(t, c.run(NewModeHandler(c.svc, l), "auto"), "auto")
	assert.Contains(t, c.run(NewOrderHandler(c.svc, l), "training", "2", "1"), "auto mode")
}

func TestTemplates(t *testing.T) {
	c := newChat(t)
	l := logger.Discard()
	c.run(NewAddHandler(c.svc, l), "check-in", "Wake", "06:30")

	assert.Contains(t, c.run(NewTemplatesHandler(c.svc, l)), "No templates")
	assert.Contains(t, c.run(NewApplyHandler(c.svc, l)), "no default template")
	assert.Contains(t, c.run(NewSaveTemplateHandler(c.svc, l), "Workday", "default"), "now the default")
	assert.Contains(t, c.run(NewSaveTemplateHandler(c.svc, l), "Weekend"), "Weekend")

	out := c.run(NewTemplatesHandler(c.svc, l))
	assert.Contains(t, out, "1. Workday ⭐")
	assert.Contains(t, out, "2. Weekend")

	assert.Contains(t, c.run(NewDefaultHandler(c.svc, l), "2"), "Weekend")
	assert.Contains(t, c.run(NewApplyHandler(c.svc, l)), "Default template applied")
	assert.Contains(t, c.run(NewApplyHandler(c.svc, l), "2"), "applied")
	assert.Contains(t, c.run(NewDefaultHandler(c.svc, l), "none"), "No default")
}

func TestPrograms(t *testing.T) {
	c := newChat(t)
	l := logger.Discard()
	assert.Contains(t, c.run(NewProgramsHandler(c.svc, l)), "No programs")
	assert.Contains(t, c.run(NewWeeksHandler(c.svc, l), "1"), "No such program")
}
