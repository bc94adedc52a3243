package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/wishlist/internal/telegram"
)

// HelpHandler handles the /help command
type HelpHandler struct {
	logger *logrus.Logger
}

func NewHelpHandler(logger *logrus.Logger) *HelpHandler {
	return &HelpHandler{logger: logger}
}

func (h *HelpHandler) Handle(_ context.Context, bot telegram.Sender, message *tgbotapi.Message, _ []string) error {
	helpText := `📚 *Wishlist Help*

*Family:*
• /members - Show the family roster
• /iam <name> - Tell me which member you are

*Wishlists:*
• /wishlist <name> - Show a member's wishlist
• /wish <name> <item> [| link | size | color | notes] - Add an item
• /bought <name> <id> - Toggle an item as bought
• /unwish <name> <id> - Remove an item

_Bought marks are hidden when you view your own list._`

	if err := sendMarkdown(bot, message.Chat.ID, helpText); err != nil {
		return fmt.Errorf("failed to send help message: %w", err)
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
	}).Info("Sent help message")

	return nil
}
