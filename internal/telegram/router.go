package telegram

import (
	"context"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// CommandHandler defines the interface for command handlers
type CommandHandler interface {
	Handle(ctx context.Context, bot Sender, message *tgbotapi.Message, args []string) error
}

type route struct {
	description string
	handler     CommandHandler
}

// Router handles message routing and command parsing
type Router struct {
	logger *logrus.Logger
	routes map[string]route
}

// NewRouter creates a new message router
func NewRouter(logger *logrus.Logger) *Router {
	return &Router{
		logger: logger,
		routes: make(map[string]route),
	}
}

// RegisterCommand registers a command handler
func (r *Router) RegisterCommand(command, description string, handler CommandHandler) {
	r.routes[command] = route{description: description, handler: handler}
	r.logger.Debugf("Registered command: %s", command)
}

// Commands returns the registered commands sorted by name, for the bot menu.
func (r *Router) Commands() []tgbotapi.BotCommand {
	cmds := make([]tgbotapi.BotCommand, 0, len(r.routes))
	for name, rt := range r.routes {
		cmds = append(cmds, tgbotapi.BotCommand{Command: name, Description: rt.description})
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Command < cmds[j].Command })
	return cmds
}

// HandleMessage handles incoming messages
func (r *Router) HandleMessage(ctx context.Context, bot Sender, message *tgbotapi.Message) {
	// Only process text commands from users
	if message.Text == "" || message.From == nil || message.Chat == nil || !message.IsCommand() {
		return
	}

	command := message.Command()
	args := strings.Fields(message.CommandArguments())

	fields := logrus.Fields{
		"command": command,
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
	}
	r.logger.WithFields(fields).Debug("Received command")

	rt, exists := r.routes[command]
	if !exists {
		r.logger.WithFields(fields).Warn("Unknown command")
		reply(r.logger, bot, message.Chat.ID, "❓ Unknown command. Use /help to see available commands.")
		return
	}

	if err := rt.handler.Handle(ctx, bot, message, args); err != nil {
		r.logger.WithFields(fields).WithError(err).Error("Command handler failed")
		reply(r.logger, bot, message.Chat.ID, "❌ An error occurred while processing your command. Please try again.")
	}
}

func reply(logger *logrus.Logger, bot Sender, chatID int64, text string) {
	if _, err := bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logger.WithError(err).Error("Failed to send message")
	}
}
