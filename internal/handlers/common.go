package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/dayplan/internal/models"
	"github.com/Kerhoff/dayplan/internal/repository"
	"github.com/Kerhoff/dayplan/internal/schedule"
	"github.com/Kerhoff/dayplan/internal/service"
	"github.com/Kerhoff/dayplan/internal/telegram"
)

// base carries what every planner command needs.
type base struct {
	svc    *service.Service
	logger *logrus.Logger
}

// planner returns the planner of the message sender, registering them on
// first contact.
func (b *base) planner(ctx context.Context, message *tgbotapi.Message) (*service.Planner, error) {
	from := message.From
	user, err := b.svc.EnsureUser(ctx, from.ID, from.UserName, from.FirstName, from.LastName, message.Chat.ID)
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	return b.svc.Planner(ctx, user.ID)
}

func (b *base) log(message *tgbotapi.Message) *logrus.Entry {
	return b.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
	})
}

// send sends a Markdown message.
func send(bot telegram.Sender, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// explain answers expected planner failures. Anything else is returned
// for the router to report.
func explain(bot telegram.Sender, chatID int64, err error) error {
	switch {
	case errors.Is(err, schedule.ErrLocked):
		return send(bot, chatID, "🔒 Ordering is locked. Use /unlock first.")
	case errors.Is(err, schedule.ErrValidation):
		return send(bot, chatID, "❌ "+strings.TrimPrefix(err.Error(), schedule.ErrValidation.Error()+": "))
	case errors.Is(err, repository.ErrNotFound):
		return send(bot, chatID, "❌ Not found. Check /today for current numbers.")
	case errors.Is(err, schedule.ErrPersistence):
		return send(bot, chatID, "⚠️ Could not save, nothing was changed. Please try again.")
	default:
		return err
	}
}

// position parses a 1-based list number.
func position(arg string, n int) (int, bool) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 1 || i > n {
		return 0, false
	}
	return i - 1, true
}

var weekdayNames = map[string]int{
	"sun": 0, "mon": 1, "tue": 2, "wed": 3, "thu": 4, "fri": 5, "sat": 6,
}

// parseWeekdays accepts numbers (0 = Sunday) and three-letter names.
func parseWeekdays(args []string) ([]int, error) {
	days := make([]int, 0, len(args))
	for _, arg := range args {
		if d, ok := weekdayNames[strings.ToLower(arg)]; ok {
			days = append(days, d)
			continue
		}
		d, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("unknown weekday %q", arg)
		}
		days = append(days, d)
	}
	return days, nil
}

// parseScope accepts a grouping context or "timeline".
func parseScope(arg string) (models.Scope, bool) {
	scope := models.Scope(strings.ToLower(arg))
	if scope == models.ScopeTimeline || models.GroupingContext(scope).Valid() {
		return scope, true
	}
	return "", false
}

func itemLine(i int, item *models.Item) string {
	mark := "⬜"
	if item.Completed {
		mark = "✅"
	}
	line := fmt.Sprintf("%d. %s %s", i+1, mark, item.Title)
	if item.StartTime != nil {
		line += fmt.Sprintf("  🕒 %s", *item.StartTime)
	}
	return line + "\n"
}
