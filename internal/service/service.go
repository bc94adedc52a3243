package service

import (
	"context"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/wishlist/internal/models"
	"github.com/Kerhoff/wishlist/internal/repository"
)

// Service is the wishlist business logic. It holds no state of its own:
// every call loads the aggregate from the store, and every mutation is a
// single atomic store update.
type Service struct {
	store  repository.StateStore
	logger *logrus.Logger
}

// New creates a new Service on top of the given store.
func New(store repository.StateStore, logger *logrus.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// EnsureInitialized persists seed when the store is empty. It is meant to be
// called once at startup and is safe to call again.
func (s *Service) EnsureInitialized(ctx context.Context, seed *models.State) error {
	if err := ValidateSeed(seed); err != nil {
		return err
	}
	seeded, err := s.store.Init(ctx, seed)
	if err != nil {
		return storeError("initialize store", err)
	}
	if seeded {
		s.logger.WithFields(logrus.Fields{
			"members": len(seed.FamilyMembers),
			"items":   countItems(seed),
		}).Info("Store initialized with seed data")
	} else {
		s.logger.Debug("Store already initialized")
	}
	return nil
}

// GetAll returns the whole roster and every wishlist.
func (s *Service) GetAll(ctx context.Context) (*models.State, error) {
	state, err := s.store.Load(ctx)
	if err != nil {
		return nil, storeError("read data", err)
	}
	return state, nil
}

// GetWishlist returns the member's items in creation order. A member without
// a recorded list gets an empty slice.
func (s *Service) GetWishlist(ctx context.Context, memberID int64) ([]models.WishlistItem, error) {
	state, err := s.store.Load(ctx)
	if err != nil {
		return nil, storeError("get wishlist", err)
	}
	items := state.Wishlists[memberID]
	if items == nil {
		return []models.WishlistItem{}, nil
	}
	return items, nil
}

// AddItem appends a new item to the member's wishlist. The item ID is one
// more than the highest ID anywhere in the store.
func (s *Service) AddItem(ctx context.Context, memberID int64, draft models.ItemDraft) (models.WishlistItem, error) {
	name := strings.TrimSpace(draft.Item)
	if name == "" {
		return models.WishlistItem{}, ErrItemRequired
	}

	var created models.WishlistItem
	err := s.store.Update(ctx, func(state *models.State) error {
		if _, ok := state.Member(memberID); !ok {
			return ErrMemberNotFound
		}
		created = models.WishlistItem{
			ID:        state.MaxItemID() + 1,
			Item:      name,
			Link:      strings.TrimSpace(draft.Link),
			Size:      strings.TrimSpace(draft.Size),
			Color:     strings.TrimSpace(draft.Color),
			Notes:     strings.TrimSpace(draft.Notes),
			Purchased: false,
		}
		state.Wishlists[memberID] = append(state.Wishlists[memberID], created)
		return nil
	})
	if err != nil {
		return models.WishlistItem{}, storeError("add item", err)
	}

	s.logger.WithFields(logrus.Fields{
		"member_id": memberID,
		"item_id":   created.ID,
	}).Info("Wishlist item added")

	return created, nil
}

// ToggleItem flips the purchased flag of an item and returns the result.
func (s *Service) ToggleItem(ctx context.Context, memberID, itemID int64) (models.WishlistItem, error) {
	var updated models.WishlistItem
	err := s.store.Update(ctx, func(state *models.State) error {
		idx, err := locate(state, memberID, itemID)
		if err != nil {
			return err
		}
		state.Wishlists[memberID][idx].Purchased = !state.Wishlists[memberID][idx].Purchased
		updated = state.Wishlists[memberID][idx]
		return nil
	})
	if err != nil {
		return models.WishlistItem{}, storeError("update item", err)
	}

	s.logger.WithFields(logrus.Fields{
		"member_id": memberID,
		"item_id":   itemID,
		"purchased": updated.Purchased,
	}).Info("Wishlist item toggled")

	return updated, nil
}

// RemoveItem deletes an item, keeping the order of the remaining entries.
// Removed IDs are never handed out again unless they were the maximum.
func (s *Service) RemoveItem(ctx context.Context, memberID, itemID int64) error {
	err := s.store.Update(ctx, func(state *models.State) error {
		idx, err := locate(state, memberID, itemID)
		if err != nil {
			return err
		}
		state.Wishlists[memberID] = slices.Delete(state.Wishlists[memberID], idx, idx+1)
		return nil
	})
	if err != nil {
		return storeError("delete item", err)
	}

	s.logger.WithFields(logrus.Fields{
		"member_id": memberID,
		"item_id":   itemID,
	}).Info("Wishlist item removed")

	return nil
}

// Members returns the family roster in roster order.
func (s *Service) Members(ctx context.Context) ([]models.FamilyMember, error) {
	state, err := s.store.Load(ctx)
	if err != nil {
		return nil, storeError("read roster", err)
	}
	return state.FamilyMembers, nil
}

// MemberByName finds a roster member by name, ignoring case and surrounding
// whitespace.
func (s *Service) MemberByName(ctx context.Context, name string) (models.FamilyMember, error) {
	members, err := s.Members(ctx)
	if err != nil {
		return models.FamilyMember{}, err
	}
	name = strings.TrimSpace(name)
	for _, m := range members {
		if strings.EqualFold(m.Name, name) {
			return m, nil
		}
	}
	return models.FamilyMember{}, ErrMemberNotFound
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return storeError("reach store", s.store.Ping(ctx))
}

// VisibleWishlist returns the items as seen by viewerID. Owners never learn
// which of their own gifts were bought, so purchased is cleared when the
// viewer owns the list. A zero viewer sees everything.
func VisibleWishlist(items []models.WishlistItem, ownerID, viewerID int64) []models.WishlistItem {
	out := make([]models.WishlistItem, len(items))
	copy(out, items)
	if viewerID == 0 || viewerID != ownerID {
		return out
	}
	for i := range out {
		out[i].Purchased = false
	}
	return out
}

func locate(state *models.State, memberID, itemID int64) (int, error) {
	idx, listExists := state.IndexOf(memberID, itemID)
	if !listExists {
		return -1, ErrWishlistNotFound
	}
	if idx < 0 {
		return -1, ErrItemNotFound
	}
	return idx, nil
}

func countItems(state *models.State) int {
	n := 0
	for _, items := range state.Wishlists {
		n += len(items)
	}
	return n
}
