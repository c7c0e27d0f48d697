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

// ---------------------------------------------------------------------------
// ProgramsHandler – /programs
// ---------------------------------------------------------------------------

// ProgramsHandler handles the /programs command.
type ProgramsHandler struct {
	base
}

// NewProgramsHandler creates a new ProgramsHandler.
func NewProgramsHandler(svc *service.Service, logger *logrus.Logger) *ProgramsHandler {
	return &ProgramsHandler{base{svc: svc, logger: logger}}
}

// Handle processes the /programs command.
func (h *ProgramsHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	ctx := context.Background()
	p, err := h.planner(ctx, message)
	if err != nil {
		return err
	}
	programs, err := p.Programs(ctx)
	if err != nil {
		return explain(bot, message.Chat.ID, err)
	}
	if len(programs) == 0 {
		return send(bot, message.Chat.ID, "🗂 *No programs yet.*")
	}

	var sb strings.Builder
	sb.WriteString("🗂 *Programs*\n\n")
	for i, prog := range programs {
		sb.WriteString(fmt.Sprintf("%d. %s", i+1, prog.Name))
		if week, ok := schedule.CurrentWeek(prog, h.svc.Now()); ok {
			sb.WriteString(fmt.Sprintf(" _(week %d of %d)_", week, prog.LengthWeeks))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n_Show the weeks with /weeks <n>_")
	return send(bot, message.Chat.ID, sb.String())
}

// ---------------------------------------------------------------------------
// WeeksHandler – /weeks <n>
// ---------------------------------------------------------------------------

// WeeksHandler handles the /weeks command to browse every bucket of a
// program.
type WeeksHandler struct {
	base
}

// NewWeeksHandler creates a new WeeksHandler.
func NewWeeksHandler(svc *service.Service, logger *logrus.Logger) *WeeksHandler {
	return &WeeksHandler{base{svc: svc, logger: logger}}
}

// Handle processes the /weeks command.
func (h *WeeksHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		return send(bot, message.Chat.ID, "❌ Please provide a program number.\nUsage: `/weeks 1`")
	}

	ctx := context.Background()
	p, err := h.planner(ctx, message)
	if err != nil {
		return err
	}
	programs, err := p.Programs(ctx)
	if err != nil {
		return explain(bot, message.Chat.ID, err)
	}
	i, ok := position(args[0], len(programs))
	if !ok {
		return send(bot, message.Chat.ID, "❌ No such program. Check /programs for numbers.")
	}
	buckets, err := p.Buckets(ctx, programs[i].ID)
	if err != nil {
		return explain(bot, message.Chat.ID, err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🗂 *%s*\n", programs[i].Name))
	writeBucket(&sb, "Every week", buckets.EveryWeek)
	for n := range buckets.Weeks {
		title := fmt.Sprintf("Week %d", n+1)
		if n+1 == buckets.CurrentWeek {
			title += " 👈"
		}
		writeBucket(&sb, title, buckets.Week(n+1))
	}
	if len(buckets.Dormant) > 0 {
		writeBucket(&sb, "Beyond the last week", buckets.Dormant)
	}
	return send(bot, message.Chat.ID, sb.String())
}

func writeBucket(sb *strings.Builder, title string, items []*models.Item) {
	sb.WriteString(fmt.Sprintf("\n*%s*\n", title))
	if len(items) == 0 {
		sb.WriteString("_empty_\n")
		return
	}
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("• %s\n", item.Title))
	}
}
