package handlers

import (
	"errors"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Kerhoff/wishlist/internal/service"
	"github.com/Kerhoff/wishlist/internal/telegram"
)

// Identities maps Telegram users to roster members. Bindings live in memory
// and are lost on restart.
type Identities struct {
	mu     sync.RWMutex
	byUser map[int64]int64
}

// NewIdentities creates an empty binding table.
func NewIdentities() *Identities {
	return &Identities{byUser: make(map[int64]int64)}
}

// Bind records that the Telegram user is the given roster member.
func (i *Identities) Bind(userID, memberID int64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.byUser[userID] = memberID
}

// MemberFor returns the member bound to the Telegram user, or 0.
func (i *Identities) MemberFor(userID int64) int64 {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.byUser[userID]
}

func sendMarkdown(bot telegram.Sender, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

// replyDomainError answers validation and not-found failures in chat and
// swallows them. Anything else is returned for the router to report.
func replyDomainError(bot telegram.Sender, chatID int64, err error) error {
	var text string
	switch {
	case errors.Is(err, service.ErrItemRequired):
		text = "❌ Item name is required."
	case errors.Is(err, service.ErrMemberNotFound):
		text = "❌ Family member not found. Use /members to see the roster."
	case errors.Is(err, service.ErrWishlistNotFound):
		text = "❌ That member has no wishlist yet."
	case errors.Is(err, service.ErrItemNotFound):
		text = "❌ Item not found on that wishlist."
	default:
		return err
	}
	return sendMarkdown(bot, chatID, text)
}
