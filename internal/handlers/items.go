package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/dayplan/internal/models"
	"github.com/Kerhoff/dayplan/internal/service"
	"github.com/Kerhoff/dayplan/internal/telegram"
)

// ---------------------------------------------------------------------------
// AddHandler – /add <context> <title> [HH:MM]
// ---------------------------------------------------------------------------

// AddHandler handles the /add command to create an every-week item.
type AddHandler struct {
	base
}

// NewAddHandler creates a new AddHandler.
func NewAddHandler(svc *service.Service, logger *logrus.Logger) *AddHandler {
	return &AddHandler{base{svc: svc, logger: logger}}
}

// Handle processes the /add command.
func (h *AddHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	if len(args) < 2 {
		return send(bot, message.Chat.ID,
			"❌ Please provide a context and a title.\nUsage: `/add training Morning run 07:00`")
	}

	item := &models.Item{Context: models.GroupingContext(strings.ToLower(args[0]))}
	words := args[1:]
	if last := words[len(words)-1]; len(words) > 1 {
		if _, err := time.Parse(models.TimeLayout, last); err == nil {
			item.StartTime = &last
			words = words[:len(words)-1]
		}
	}
	item.Title = strings.Join(words, " ")

	ctx := context.Background()
	p, err := h.planner(ctx, message)
	if err != nil {
		return err
	}
	created, err := p.CreateItem(ctx, item)
	if err != nil {
		return explain(bot, message.Chat.ID, err)
	}

	text := fmt.Sprintf("✅ *Added to %s:* %s", created.Context, created.Title)
	if created.StartTime != nil {
		text += fmt.Sprintf(" 🕒 %s", *created.StartTime)
	}
	if err := send(bot, message.Chat.ID, text); err != nil {
		return err
	}

	h.log(message).WithField("item_id", created.ID).Info("Item created")
	return nil
}

// ---------------------------------------------------------------------------
// DeleteHandler – /delete <n>
// ---------------------------------------------------------------------------

// DeleteHandler handles the /delete command. n is the position on today's
// timeline.
type DeleteHandler struct {
	base
}

// NewDeleteHandler creates a new DeleteHandler.
func NewDeleteHandler(svc *service.Service, logger *logrus.Logger) *DeleteHandler {
	return &DeleteHandler{base{svc: svc, logger: logger}}
}

// Handle processes the /delete command.
func (h *DeleteHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		return send(bot, message.Chat.ID, "❌ Please provide an item number.\nUsage: `/delete 2`")
	}

	ctx := context.Background()
	p, err := h.planner(ctx, message)
	if err != nil {
		return err
	}
	view, err := p.View(ctx, models.ScopeTimeline)
	if err != nil {
		return explain(bot, message.Chat.ID, err)
	}
	i, ok := position(args[0], len(view.Items))
	if !ok {
		return send(bot, message.Chat.ID, "❌ No such item. Check /today for numbers.")
	}
	item := view.Items[i]

	if err := p.DeleteItem(ctx, item.ID); err != nil {
		return explain(bot, message.Chat.ID, err)
	}
	if err := send(bot, message.Chat.ID, fmt.Sprintf("🗑 Deleted: %s", item.Title)); err != nil {
		return err
	}

	h.log(message).WithField("item_id", item.ID).Info("Item deleted")
	return nil
}
