package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/wishlist/internal/models"
	"github.com/Kerhoff/wishlist/internal/service"
	"github.com/Kerhoff/wishlist/internal/telegram"
)

// ---------------------------------------------------------------------------
// WishlistHandler – /wishlist <name>
// ---------------------------------------------------------------------------

// WishlistHandler handles the /wishlist command.
//
// Bought marks are hidden when the sender has bound themselves (/iam) to the
// list owner, so surprises are not spoiled; other viewers see which items
// were bought.
type WishlistHandler struct {
	svc        *service.Service
	identities *Identities
	logger     *logrus.Logger
}

// NewWishlistHandler creates a new WishlistHandler.
func NewWishlistHandler(svc *service.Service, identities *Identities, logger *logrus.Logger) *WishlistHandler {
	return &WishlistHandler{svc: svc, identities: identities, logger: logger}
}

// Handle processes the /wishlist command.
func (h *WishlistHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		return sendMarkdown(bot, message.Chat.ID,
			"❌ Whose wishlist?\nUsage: `/wishlist Tom`")
	}

	owner, err := h.svc.MemberByName(ctx, strings.Join(args, " "))
	if err != nil {
		return replyDomainError(bot, message.Chat.ID, err)
	}

	items, err := h.svc.GetWishlist(ctx, owner.ID)
	if err != nil {
		return fmt.Errorf("get wishlist: %w", err)
	}

	viewerID := h.identities.MemberFor(message.From.ID)
	isOwnList := viewerID == owner.ID
	items = service.VisibleWishlist(items, owner.ID, viewerID)

	if len(items) == 0 {
		if isOwnList {
			return sendMarkdown(bot, message.Chat.ID,
				"🎁 *Your wishlist is empty!*\n\nAdd items with `/wish <name> <item>`")
		}
		return sendMarkdown(bot, message.Chat.ID,
			fmt.Sprintf("🎁 *%s's wishlist is empty.*", esc(owner.Name)))
	}

	var sb strings.Builder
	if isOwnList {
		sb.WriteString("🎁 *Your Wishlist*\n\n")
	} else {
		sb.WriteString(fmt.Sprintf("%s *%s's Wishlist*\n\n", owner.Avatar, esc(owner.Name)))
	}
	for _, item := range items {
		sb.WriteString(formatItem(item))
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("\n_%d items_", len(items)))
	if !isOwnList {
		sb.WriteString(fmt.Sprintf("\n\n_Use_ `/bought %s <id>` _after buying a gift_", owner.Name))
	}

	if err := sendMarkdown(bot, message.Chat.ID, sb.String()); err != nil {
		return err
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id":   message.Chat.ID,
		"member_id": owner.ID,
		"own_list":  isOwnList,
		"count":     len(items),
	}).Info("Listed wishlist")

	return nil
}

func formatItem(item models.WishlistItem) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*#%d* %s", item.ID, esc(item.Item)))

	var details []string
	if item.Size != "" {
		details = append(details, "size "+esc(item.Size))
	}
	if item.Color != "" {
		details = append(details, esc(item.Color))
	}
	if len(details) > 0 {
		sb.WriteString(" (" + strings.Join(details, ", ") + ")")
	}
	if item.Link != "" {
		sb.WriteString(fmt.Sprintf(" [link](%s)", item.Link))
	}
	if item.Notes != "" {
		sb.WriteString(" - _" + esc(item.Notes) + "_")
	}
	if item.Purchased {
		sb.WriteString(" ✅")
	}
	return sb.String()
}

// ---------------------------------------------------------------------------
// WishAddHandler – /wish <name> <item> [| link | size | color | notes]
// ---------------------------------------------------------------------------

// WishAddHandler handles the /wish command to add an item to a member's
// wishlist. Optional fields follow the item name, separated by "|".
type WishAddHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewWishAddHandler creates a new WishAddHandler.
func NewWishAddHandler(svc *service.Service, logger *logrus.Logger) *WishAddHandler {
	return &WishAddHandler{svc: svc, logger: logger}
}

// Handle processes the /wish command.
func (h *WishAddHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	if len(args) < 2 {
		return sendMarkdown(bot, message.Chat.ID,
			"❌ Please provide a member and an item.\n"+
				"Usage: `/wish Tom Coffee grinder | https://example.com | | Black`")
	}

	member, err := h.svc.MemberByName(ctx, args[0])
	if err != nil {
		return replyDomainError(bot, message.Chat.ID, err)
	}

	item, err := h.svc.AddItem(ctx, member.ID, parseDraft(strings.Join(args[1:], " ")))
	if err != nil {
		return replyDomainError(bot, message.Chat.ID, err)
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id":   message.Chat.ID,
		"user_id":   message.From.ID,
		"member_id": member.ID,
		"item_id":   item.ID,
	}).Info("Wishlist item added from chat")

	return sendMarkdown(bot, message.Chat.ID,
		fmt.Sprintf("🎁 *Added to %s's wishlist!*\n\n%s", esc(member.Name), formatItem(item)))
}

// parseDraft splits "item | link | size | color | notes" into a draft.
// Missing trailing fields stay empty.
func parseDraft(text string) models.ItemDraft {
	parts := strings.SplitN(text, "|", 5)
	field := func(i int) string {
		if i < len(parts) {
			return strings.TrimSpace(parts[i])
		}
		return ""
	}
	return models.ItemDraft{
		Item:  field(0),
		Link:  field(1),
		Size:  field(2),
		Color: field(3),
		Notes: field(4),
	}
}

// ---------------------------------------------------------------------------
// BoughtHandler – /bought <name> <id>
// ---------------------------------------------------------------------------

// BoughtHandler toggles the purchased flag of a wishlist item.
type BoughtHandler struct {
	svc        *service.Service
	identities *Identities
	logger     *logrus.Logger
}

// NewBoughtHandler creates a new BoughtHandler.
func NewBoughtHandler(svc *service.Service, identities *Identities, logger *logrus.Logger) *BoughtHandler {
	return &BoughtHandler{svc: svc, identities: identities, logger: logger}
}

// Handle processes the /bought command.
func (h *BoughtHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	member, itemID, ok, err := memberAndItem(ctx, h.svc, bot, message, args, "/bought Tom 3")
	if !ok {
		return err
	}

	item, err := h.svc.ToggleItem(ctx, member.ID, itemID)
	if err != nil {
		return replyDomainError(bot, message.Chat.ID, err)
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id":   message.Chat.ID,
		"user_id":   message.From.ID,
		"member_id": member.ID,
		"item_id":   item.ID,
	}).Info("Wishlist item toggled from chat")

	if h.identities.MemberFor(message.From.ID) == member.ID {
		return sendMarkdown(bot, message.Chat.ID, fmt.Sprintf("👌 Item *#%d* updated.", item.ID))
	}
	if item.Purchased {
		return sendMarkdown(bot, message.Chat.ID,
			fmt.Sprintf("✅ *#%d* %s marked as bought.\n\n_%s won't see this._", item.ID, esc(item.Item), esc(member.Name)))
	}
	return sendMarkdown(bot, message.Chat.ID,
		fmt.Sprintf("↩️ *#%d* %s is no longer marked as bought.", item.ID, esc(item.Item)))
}

// ---------------------------------------------------------------------------
// UnwishHandler – /unwish <name> <id>
// ---------------------------------------------------------------------------

// UnwishHandler removes an item from a member's wishlist.
type UnwishHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewUnwishHandler creates a new UnwishHandler.
func NewUnwishHandler(svc *service.Service, logger *logrus.Logger) *UnwishHandler {
	return &UnwishHandler{svc: svc, logger: logger}
}

// Handle processes the /unwish command.
func (h *UnwishHandler) Handle(ctx context.Context, bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	member, itemID, ok, err := memberAndItem(ctx, h.svc, bot, message, args, "/unwish Tom 3")
	if !ok {
		return err
	}

	if err := h.svc.RemoveItem(ctx, member.ID, itemID); err != nil {
		return replyDomainError(bot, message.Chat.ID, err)
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id":   message.Chat.ID,
		"user_id":   message.From.ID,
		"member_id": member.ID,
		"item_id":   itemID,
	}).Info("Wishlist item removed from chat")

	return sendMarkdown(bot, message.Chat.ID,
		fmt.Sprintf("🗑 Item *#%d* removed from %s's wishlist.", itemID, esc(member.Name)))
}

// memberAndItem parses "<name> <id>". When ok is false the user has already
// been answered and err is what the handler should return.
func memberAndItem(
	ctx context.Context,
	svc *service.Service,
	bot telegram.Sender,
	message *tgbotapi.Message,
	args []string,
	usage string,
) (member models.FamilyMember, itemID int64, ok bool, err error) {
	if len(args) != 2 {
		return member, 0, false, sendMarkdown(bot, message.Chat.ID,
			fmt.Sprintf("❌ Please provide a member and an item ID.\nUsage: `%s`", usage))
	}

	itemID, parseErr := strconv.ParseInt(args[1], 10, 64)
	if parseErr != nil {
		return member, 0, false, sendMarkdown(bot, message.Chat.ID,
			"❌ Invalid ID. Please provide a numeric item ID.")
	}

	member, err = svc.MemberByName(ctx, args[0])
	if err != nil {
		return member, 0, false, replyDomainError(bot, message.Chat.ID, err)
	}
	return member, itemID, true, nil
}
