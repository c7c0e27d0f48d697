package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/dayplan/internal/models"
	"github.com/Kerhoff/dayplan/internal/service"
	"github.com/Kerhoff/dayplan/internal/telegram"
)

// ---------------------------------------------------------------------------
// OrderHandler – /order <scope> <n...>
// ---------------------------------------------------------------------------

// OrderHandler handles the /order command. The numbers are positions in
// the list as /today shows it, written in their new order.
type OrderHandler struct {
	base
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc *service.Service, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{base{svc: svc, logger: logger}}
}

// Handle processes the /order command.
func (h *OrderHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	const usage = "❌ Usage: `/order training 3 1 2`"
	if len(args) < 2 {
		return send(bot, message.Chat.ID, usage)
	}
	scope, ok := parseScope(args[0])
	if !ok {
		return send(bot, message.Chat.ID, usage)
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

	ids := make([]string, 0, len(args)-1)
	for _, arg := range args[1:] {
		i, ok := position(arg, len(view.Items))
		if !ok {
			return send(bot, message.Chat.ID, fmt.Sprintf("❌ No item number %s in %s.", arg, scope))
		}
		ids = append(ids, view.Items[i].ID)
	}

	if err := p.Reorder(ctx, scope, ids); err != nil {
		return explain(bot, message.Chat.ID, err)
	}
	if err := send(bot, message.Chat.ID, fmt.Sprintf("✅ *%s* reordered. See `/today %s`", scope, scope)); err != nil {
		return err
	}

	h.log(message).WithField("scope", scope).Info("List reordered")
	return nil
}

// ---------------------------------------------------------------------------
// ModeHandler – /mode [auto|manual|timeline]
// ---------------------------------------------------------------------------

// ModeHandler handles the /mode command to show or switch sorting.
type ModeHandler struct {
	base
}

// NewModeHandler creates a new ModeHandler.
func NewModeHandler(svc *service.Service, logger *logrus.Logger) *ModeHandler {
	return &ModeHandler{base{svc: svc, logger: logger}}
}

// Handle processes the /mode command.
func (h *ModeHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	ctx := context.Background()
	p, err := h.planner(ctx, message)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		mode, err := p.SortMode(ctx)
		if err != nil {
			return explain(bot, message.Chat.ID, err)
		}
		return send(bot, message.Chat.ID, fmt.Sprintf("🔀 Sorting is *%s*.\nSwitch with `/mode auto|manual|timeline`", mode))
	}

	mode := models.SortMode(strings.ToLower(args[0]))
	if err := p.SetSortMode(ctx, mode); err != nil {
		return explain(bot, message.Chat.ID, err)
	}
	if err := send(bot, message.Chat.ID, fmt.Sprintf("🔀 Sorting set to *%s*.", mode)); err != nil {
		return err
	}

	h.log(message).WithField("mode", mode).Info("Sort mode changed")
	return nil
}

// ---------------------------------------------------------------------------
// LockHandler – /lock day | /lock week <days>
// ---------------------------------------------------------------------------

// LockHandler handles the /lock command.
type LockHandler struct {
	base
}

// NewLockHandler creates a new LockHandler.
func NewLockHandler(svc *service.Service, logger *logrus.Logger) *LockHandler {
	return &LockHandler{base{svc: svc, logger: logger}}
}

// Handle processes the /lock command.
func (h *LockHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	const usage = "❌ Usage: `/lock day` or `/lock week mon tue wed thu fri`"
	if len(args) == 0 {
		return send(bot, message.Chat.ID, usage)
	}

	kind := models.LockKind(strings.ToLower(args[0]))
	weekdays, err := parseWeekdays(args[1:])
	if err != nil {
		return send(bot, message.Chat.ID, "❌ "+err.Error())
	}

	ctx := context.Background()
	p, err := h.planner(ctx, message)
	if err != nil {
		return err
	}
	status, err := p.Lock(ctx, kind, weekdays)
	if err != nil {
		return explain(bot, message.Chat.ID, err)
	}

	text := fmt.Sprintf("🔒 Order locked until %s.", status.ExpiresAt.Format("Mon 15:04"))
	if status.Dormant {
		text = fmt.Sprintf("🔒 Week lock set. It starts on the next chosen day and ends %s.", status.ExpiresAt.Format("Mon Jan 2"))
	}
	if err := send(bot, message.Chat.ID, text); err != nil {
		return err
	}

	h.log(message).WithField("kind", kind).Info("Order locked")
	return nil
}

// ---------------------------------------------------------------------------
// UnlockHandler – /unlock
// ---------------------------------------------------------------------------

// UnlockHandler handles the /unlock command.
type UnlockHandler struct {
	base
}

// NewUnlockHandler creates a new UnlockHandler.
func NewUnlockHandler(svc *service.Service, logger *logrus.Logger) *UnlockHandler {
	return &UnlockHandler{base{svc: svc, logger: logger}}
}

// Handle processes the /unlock command.
func (h *UnlockHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	ctx := context.Background()
	p, err := h.planner(ctx, message)
	if err != nil {
		return err
	}
	if err := p.Unlock(ctx); err != nil {
		return explain(bot, message.Chat.ID, err)
	}
	return send(bot, message.Chat.ID, "🔓 Order unlocked.")
}
