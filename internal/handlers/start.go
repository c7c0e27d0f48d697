package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/dayplan/internal/service"
	"github.com/Kerhoff/dayplan/internal/telegram"
)

// StartHandler handles the /start command
type StartHandler struct {
	base
}

// NewStartHandler creates a new start command handler
func NewStartHandler(svc *service.Service, logger *logrus.Logger) *StartHandler {
	return &StartHandler{base{svc: svc, logger: logger}}
}

// Handle registers the sender and sends the welcome text.
func (h *StartHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	if _, err := h.planner(context.Background(), message); err != nil {
		return err
	}

	welcomeText := `🎯 *Welcome to Dayplan!*

I keep your daily routine in order: check-ins, training, tracking and anything custom.

*Get started:*
• /add training Morning run 07:00 - Add an item
• /today - See what is on today
• /done 1 - Tick off the first item
• /help - All commands`

	if err := send(bot, message.Chat.ID, welcomeText); err != nil {
		return fmt.Errorf("failed to send start message: %w", err)
	}

	h.log(message).Info("Sent start message")
	return nil
}
