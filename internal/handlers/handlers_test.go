package handlers

import (
	"context"
	"io"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/wishlist/internal/models"
	"github.com/Kerhoff/wishlist/internal/repository/memory"
	"github.com/Kerhoff/wishlist/internal/service"
)

type fakeSender struct {
	texts []string
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.texts = append(f.texts, m.Text)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) last() string {
	if len(f.texts) == 0 {
		return ""
	}
	return f.texts[len(f.texts)-1]
}

const (
	tomID  int64 = 1
	kaitID int64 = 2

	tomTelegramUser int64 = 501
)

func setup(t *testing.T) (*service.Service, *logrus.Logger) {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)

	seed := models.NewState()
	seed.FamilyMembers = []models.FamilyMember{
		{ID: tomID, Name: "Tom", Avatar: "💎"},
		{ID: kaitID, Name: "Kait", Avatar: "🗺"},
	}
	seed.Wishlists[tomID] = []models.WishlistItem{
		{ID: 1, Item: "Coffee grinder", Purchased: true},
	}

	svc := service.New(memory.NewStore(), l)
	require.NoError(t, svc.EnsureInitialized(context.Background(), seed))
	return svc, l
}

func msgFrom(userID int64) *tgbotapi.Message {
	return &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: 100},
		From: &tgbotapi.User{ID: userID},
	}
}

func TestIdentities(t *testing.T) {
	ids := NewIdentities()
	require.Zero(t, ids.MemberFor(7))
	ids.Bind(7, kaitID)
	require.Equal(t, kaitID, ids.MemberFor(7))
}

func TestMembersHandler(t *testing.T) {
	svc, l := setup(t)
	bot := &fakeSender{}

	require.NoError(t, NewMembersHandler(svc, l).Handle(context.Background(), bot, msgFrom(1), nil))
	require.Contains(t, bot.last(), "Tom")
	require.Contains(t, bot.last(), "Kait")
}

func TestIAmHandler(t *testing.T) {
	svc, l := setup(t)
	ids := NewIdentities()
	h := NewIAmHandler(svc, ids, l)
	bot := &fakeSender{}

	require.NoError(t, h.Handle(context.Background(), bot, msgFrom(tomTelegramUser), []string{"tom"}))
	require.Equal(t, tomID, ids.MemberFor(tomTelegramUser))

	require.NoError(t, h.Handle(context.Background(), bot, msgFrom(tomTelegramUser), []string{"Nobody"}))
	require.Contains(t, bot.last(), "not found")
	require.Equal(t, tomID, ids.MemberFor(tomTelegramUser))

	require.NoError(t, h.Handle(context.Background(), bot, msgFrom(tomTelegramUser), nil))
	require.Contains(t, bot.last(), "Usage")
}

func TestWishlistHandler_HidesPurchasesFromOwner(t *testing.T) {
	svc, l := setup(t)
	ids := NewIdentities()
	h := NewWishlistHandler(svc, ids, l)
	bot := &fakeSender{}

	require.NoError(t, h.Handle(context.Background(), bot, msgFrom(tomTelegramUser), []string{"Tom"}))
	require.Contains(t, bot.last(), "Coffee grinder")
	require.Contains(t, bot.last(), "✅")

	ids.Bind(tomTelegramUser, tomID)
	require.NoError(t, h.Handle(context.Background(), bot, msgFrom(tomTelegramUser), []string{"Tom"}))
	require.Contains(t, bot.last(), "Your Wishlist")
	require.NotContains(t, bot.last(), "✅")

	require.NoError(t, h.Handle(context.Background(), bot, msgFrom(tomTelegramUser), []string{"Kait"}))
	require.Contains(t, bot.last(), "empty")
}

func TestWishAddHandler(t *testing.T) {
	svc, l := setup(t)
	h := NewWishAddHandler(svc, l)
	bot := &fakeSender{}
	ctx := context.Background()

	args := []string{"Kait", "Rain", "jacket", "|", "https://shop.example/jacket", "|", "M", "|", "Yellow"}
	require.NoError(t, h.Handle(ctx, bot, msgFrom(1), args))
	require.Contains(t, bot.last(), "Added to Kait's wishlist")

	items, err := svc.GetWishlist(ctx, kaitID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, models.WishlistItem{
		ID: 2, Item: "Rain jacket", Link: "https://shop.example/jacket", Size: "M", Color: "Yellow",
	}, items[0])

	require.NoError(t, h.Handle(ctx, bot, msgFrom(1), []string{"Kait", "|", "link"}))
	require.Contains(t, bot.last(), "Item name is required")

	require.NoError(t, h.Handle(ctx, bot, msgFrom(1), []string{"Ghost", "Mug"}))
	require.Contains(t, bot.last(), "Family member not found")

	require.NoError(t, h.Handle(ctx, bot, msgFrom(1), []string{"Kait"}))
	require.Contains(t, bot.last(), "Usage")
}

func TestParseDraft(t *testing.T) {
	require.Equal(t, models.ItemDraft{Item: "Book"}, parseDraft("Book"))
	require.Equal(t, models.ItemDraft{Item: "Scarf", Color: "Red", Notes: "wool | soft"},
		parseDraft("Scarf | | | Red | wool | soft"))
}

func TestBoughtHandler(t *testing.T) {
	svc, l := setup(t)
	ids := NewIdentities()
	h := NewBoughtHandler(svc, ids, l)
	bot := &fakeSender{}
	ctx := context.Background()

	require.NoError(t, h.Handle(ctx, bot, msgFrom(1), []string{"Tom", "1"}))
	require.Contains(t, bot.last(), "no longer marked")

	require.NoError(t, h.Handle(ctx, bot, msgFrom(1), []string{"Tom", "1"}))
	require.Contains(t, bot.last(), "marked as bought")

	ids.Bind(tomTelegramUser, tomID)
	require.NoError(t, h.Handle(ctx, bot, msgFrom(tomTelegramUser), []string{"Tom", "1"}))
	require.Contains(t, bot.last(), "updated")
	require.NotContains(t, bot.last(), "bought")

	require.NoError(t, h.Handle(ctx, bot, msgFrom(1), []string{"Tom", "99"}))
	require.Contains(t, bot.last(), "Item not found")

	require.NoError(t, h.Handle(ctx, bot, msgFrom(1), []string{"Kait", "1"}))
	require.Contains(t, bot.last(), "no wishlist")

	require.NoError(t, h.Handle(ctx, bot, msgFrom(1), []string{"Tom", "one"}))
	require.Contains(t, bot.last(), "Invalid ID")
}

func TestUnwishHandler(t *testing.T) {
	svc, l := setup(t)
	h := NewUnwishHandler(svc, l)
	bot := &fakeSender{}
	ctx := context.Background()

	require.NoError(t, h.Handle(ctx, bot, msgFrom(1), []string{"Tom", "1"}))
	require.Contains(t, bot.last(), "removed")

	items, err := svc.GetWishlist(ctx, tomID)
	require.NoError(t, err)
	require.Empty(t, items)

	require.NoError(t, h.Handle(ctx, bot, msgFrom(1), []string{"Tom", "1"}))
	require.Contains(t, bot.last(), "Item not found")

	require.NoError(t, h.Handle(ctx, bot, msgFrom(1), []string{"Tom"}))
	require.Contains(t, bot.last(), "Usage")
}

func TestStartAndHelp(t *testing.T) {
	_, l := setup(t)
	bot := &fakeSender{}

	require.NoError(t, NewStartHandler(l).Handle(context.Background(), bot, msgFrom(1), nil))
	require.Contains(t, bot.last(), "/iam")

	require.NoError(t, NewHelpHandler(l).Handle(context.Background(), bot, msgFrom(1), nil))
	require.Contains(t, bot.last(), "/unwish")
}
