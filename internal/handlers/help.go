package handlers

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/dayplan/internal/telegram"
)

// HelpHandler handles the /help command
type HelpHandler struct {
	logger *logrus.Logger
}

func NewHelpHandler(logger *logrus.Logger) *HelpHandler {
	return &HelpHandler{logger: logger}
}

func (h *HelpHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	helpText := `📚 *Dayplan Help*

*Today:*
• /today [scope] - Show today's list
• /done <n> - Toggle item n done
• /skip <n> - Hide item n for today
• /restore <n> - Bring back skipped item n

*Items:*
• /add <context> <title> [HH:MM] - Add an item
• /delete <n> - Delete item n

*Order:*
• /order <scope> <n...> - Reorder, e.g. /order training 3 1 2
• /mode [auto|manual|timeline] - Show or set sorting
• /lock day - Freeze order for today
• /lock week <days> - Freeze order on weekdays, e.g. /lock week mon tue wed
• /unlock - Remove the lock

*Templates:*
• /templates - List templates
• /savetemplate <name> [default] - Save the timeline
• /apply [n] - Apply template n or the default
• /default <n|none> - Choose the default template

*Programs:*
• /programs - List programs
• /weeks <n> - Show the weeks of program n

_Contexts: check-in, training, tracking, custom. Scopes add timeline._`

	if err := send(bot, message.Chat.ID, helpText); err != nil {
		return fmt.Errorf("failed to send help message: %w", err)
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
	}).Info("Sent help message")

	return nil
}
