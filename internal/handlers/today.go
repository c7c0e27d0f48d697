package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/dayplan/internal/models"
	"github.com/Kerhoff/dayplan/internal/schedule"
	"github.com/Kerhoff/dayplan/internal/service"
	"github.com/Kerhoff/dayplan/internal/telegram"
)

// skippedItems returns today's manually skipped items in view order.
func skippedItems(view *service.View) []*models.Item {
	var out []*models.Item
	for _, h := range view.Hidden {
		if h.Reason == schedule.HiddenManualSkip {
			out = append(out, h.Item)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// TodayHandler – /today [scope]
// ---------------------------------------------------------------------------

// TodayHandler handles the /today command to show one ordered list.
type TodayHandler struct {
	base
}

// NewTodayHandler creates a new TodayHandler.
func NewTodayHandler(svc *service.Service, logger *logrus.Logger) *TodayHandler {
	return &TodayHandler{base{svc: svc, logger: logger}}
}

// Handle processes the /today command.
func (h *TodayHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	scope := models.ScopeTimeline
	if len(args) > 0 {
		var ok bool
		if scope, ok = parseScope(args[0]); !ok {
			return send(bot, message.Chat.ID, "❌ Unknown list.\nUsage: `/today training`")
		}
	}

	ctx := context.Background()
	p, err := h.planner(ctx, message)
	if err != nil {
		return err
	}
	view, err := p.View(ctx, scope)
	if err != nil {
		return explain(bot, message.Chat.ID, err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 *%s* %s _(%s)_\n\n", scope, view.Date, view.Mode))
	if len(view.Items) == 0 {
		sb.WriteString("Nothing planned. Add one with `/add <context> <title>`\n")
	}
	for i, item := range view.Items {
		sb.WriteString(itemLine(i, item))
	}

	if skipped := skippedItems(view); len(skipped) > 0 {
		sb.WriteString("\n⏭ *Skipped today:*\n")
		for i, item := range skipped {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, item.Title))
		}
	}
	var off []string
	for _, hidden := range view.Hidden {
		if hidden.Reason == schedule.HiddenScheduleExcluded {
			off = append(off, hidden.Item.Title)
		}
	}
	if len(off) > 0 {
		sb.WriteString(fmt.Sprintf("\n💤 _Not scheduled today: %s_\n", strings.Join(off, ", ")))
	}

	switch {
	case view.Lock.Active:
		sb.WriteString(fmt.Sprintf("\n🔒 Order locked until %s", view.Lock.ExpiresAt.Format("Mon 15:04")))
	case view.Lock.Dormant:
		sb.WriteString("\n🔓 Week lock set, not active today")
	}

	if err := send(bot, message.Chat.ID, sb.String()); err != nil {
		return err
	}

	h.log(message).WithField("count", len(view.Items)).Info("Listed today")
	return nil
}

// ---------------------------------------------------------------------------
// DoneHandler – /done <n>
// ---------------------------------------------------------------------------

// DoneHandler handles the /done command to toggle completion of an item
// on today's timeline.
type DoneHandler struct {
	base
}

// NewDoneHandler creates a new DoneHandler.
func NewDoneHandler(svc *service.Service, logger *logrus.Logger) *DoneHandler {
	return &DoneHandler{base{svc: svc, logger: logger}}
}

// Handle processes the /done command.
func (h *DoneHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		return send(bot, message.Chat.ID, "❌ Please provide an item number.\nUsage: `/done 2`")
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

	if err := p.SetCompleted(ctx, item.ID, !item.Completed); err != nil {
		return explain(bot, message.Chat.ID, err)
	}

	text := fmt.Sprintf("🎉 Done: ~%s~", item.Title)
	if item.Completed {
		text = fmt.Sprintf("↩️ Reopened: %s", item.Title)
	}
	if err := send(bot, message.Chat.ID, text); err != nil {
		return err
	}

	h.log(message).WithField("item_id", item.ID).Info("Item completion toggled")
	return nil
}

// ---------------------------------------------------------------------------
// SkipHandler – /skip <n>
// ---------------------------------------------------------------------------

// SkipHandler handles the /skip command to hide an item for today.
type SkipHandler struct {
	base
}

// NewSkipHandler creates a new SkipHandler.
func NewSkipHandler(svc *service.Service, logger *logrus.Logger) *SkipHandler {
	return &SkipHandler{base{svc: svc, logger: logger}}
}

// Handle processes the /skip command.
func (h *SkipHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		return send(bot, message.Chat.ID, "❌ Please provide an item number.\nUsage: `/skip 2`")
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

	if err := p.Skip(ctx, item.ID); err != nil {
		return explain(bot, message.Chat.ID, err)
	}
	if err := send(bot, message.Chat.ID, fmt.Sprintf("⏭ Skipped for today: %s", item.Title)); err != nil {
		return err
	}

	h.log(message).WithField("item_id", item.ID).Info("Item skipped")
	return nil
}

// ---------------------------------------------------------------------------
// RestoreHandler – /restore <n>
// ---------------------------------------------------------------------------

// RestoreHandler handles the /restore command to undo today's skip.
type RestoreHandler struct {
	base
}

// NewRestoreHandler creates a new RestoreHandler.
func NewRestoreHandler(svc *service.Service, logger *logrus.Logger) *RestoreHandler {
	return &RestoreHandler{base{svc: svc, logger: logger}}
}

// Handle processes the /restore command. n counts the skipped list shown
// by /today.
func (h *RestoreHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		return send(bot, message.Chat.ID, "❌ Please provide a skipped item number.\nUsage: `/restore 1`")
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
	skipped := skippedItems(view)
	i, ok := position(args[0], len(skipped))
	if !ok {
		return send(bot, message.Chat.ID, "❌ No such skipped item. Check /today for numbers.")
	}
	item := skipped[i]

	if err := p.Restore(ctx, item.ID); err != nil {
		return explain(bot, message.Chat.ID, err)
	}
	if err := send(bot, message.Chat.ID, fmt.Sprintf("↩️ Back on today's list: %s", item.Title)); err != nil {
		return err
	}

	h.log(message).WithField("item_id", item.ID).Info("Item restored")
	return nil
}
