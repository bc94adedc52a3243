package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/wishlist/internal/service"
	"github.com/Kerhoff/wishlist/internal/telegram"
)

// ---------------------------------------------------------------------------
// MembersHandler – /members
// ---------------------------------------------------------------------------

// MembersHandler lists the family roster.
type MembersHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewMembersHandler creates a new MembersHandler.
func NewMembersHandler(svc *service.Service, logger *logrus.Logger) *MembersHandler {
	return &MembersHandler{svc: svc, logger: logger}
}

// Handle processes the /members command.
func (h *MembersHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, _ []string) error {
	members, err := h.svc.Members(ctx)
	if err != nil {
		return fmt.Errorf("list members: %w", err)
	}

	if len(members) == 0 {
		return sendMarkdown(bot, message.Chat.ID, "👪 *The family roster is empty.*")
	}

	var sb strings.Builder
	sb.WriteString("👪 *Family Members*\n\n")
	for _, m := range members {
		sb.WriteString(fmt.Sprintf("%s %s\n", m.Avatar, esc(m.Name)))
	}
	sb.WriteString("\n_Tell me who you are with_ `/iam <name>`")

	return sendMarkdown(bot, message.Chat.ID, sb.String())
}

// ---------------------------------------------------------------------------
// IAmHandler – /iam <name>
// ---------------------------------------------------------------------------

// IAmHandler binds the sender to a roster member so their own list is shown
// without bought marks.
type IAmHandler struct {
	svc        *service.Service
	identities *Identities
	logger     *logrus.Logger
}

// NewIAmHandler creates a new IAmHandler.
func NewIAmHandler(svc *service.Service, identities *Identities, logger *logrus.Logger) *IAmHandler {
	return &IAmHandler{svc: svc, identities: identities, logger: logger}
}

// Handle processes the /iam command.
func (h *IAmHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		return sendMarkdown(bot, message.Chat.ID,
			"❌ Please tell me your name.\nUsage: `/iam Kait`")
	}

	member, err := h.svc.MemberByName(ctx, strings.Join(args, " "))
	if err != nil {
		return replyDomainError(bot, message.Chat.ID, err)
	}

	h.identities.Bind(message.From.ID, member.ID)

	h.logger.WithFields(logrus.Fields{
		"user_id":   message.From.ID,
		"member_id": member.ID,
	}).Info("Bound chat user to family member")

	return sendMarkdown(bot, message.Chat.ID,
		fmt.Sprintf("%s Hi *%s*! Bought marks on your own list stay hidden from you.", member.Avatar, esc(member.Name)))
}
