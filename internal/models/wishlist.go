package models

import (
	"slices"
	"sort"
)

// WishlistItem represents a single gift idea on a member's wishlist.
// The owning member is implied by the wishlist it lives in, so it is not
// part of the JSON shape.
type WishlistItem struct {
	ID        int64  `json:"id" yaml:"id" db:"id"`
	Item      string `json:"item" yaml:"item" db:"item"`
	Link      string `json:"link" yaml:"link" db:"link"`
	Size      string `json:"size" yaml:"size" db:"size"`
	Color     string `json:"color" yaml:"color" db:"color"`
	Notes     string `json:"notes" yaml:"notes" db:"notes"`
	Purchased bool   `json:"purchased" yaml:"purchased" db:"purchased"`
}

// ItemDraft is the input accepted when adding an item. Only Item is required.
type ItemDraft struct {
	Item  string `json:"item"`
	Link  string `json:"link"`
	Size  string `json:"size"`
	Color string `json:"color"`
	Notes string `json:"notes"`
}

// State is the whole persisted aggregate: the roster plus every wishlist,
// keyed by member ID.
type State struct {
	FamilyMembers []FamilyMember           `json:"familyMembers" yaml:"familyMembers"`
	Wishlists     map[int64][]WishlistItem `json:"wishlists" yaml:"wishlists"`
}

// NewState returns an empty, non-nil state.
func NewState() *State {
	return &State{
		FamilyMembers: []FamilyMember{},
		Wishlists:     make(map[int64][]WishlistItem),
	}
}

// Clone returns a deep copy of the state. Nil slices are normalized to empty
// ones so the JSON encoding never contains null lists.
func (s *State) Clone() *State {
	out := NewState()
	if s == nil {
		return out
	}
	out.FamilyMembers = append(out.FamilyMembers, s.FamilyMembers...)
	for memberID, items := range s.Wishlists {
		cp := make([]WishlistItem, len(items))
		copy(cp, items)
		out.Wishlists[memberID] = cp
	}
	return out
}

// Member returns the roster entry with the given ID.
func (s *State) Member(id int64) (FamilyMember, bool) {
	for _, m := range s.FamilyMembers {
		if m.ID == id {
			return m, true
		}
	}
	return FamilyMember{}, false
}

// MaxItemID returns the highest item ID across every wishlist, or 0 when the
// state holds no items.
func (s *State) MaxItemID() int64 {
	var maxID int64
	for _, items := range s.Wishlists {
		for _, it := range items {
			if it.ID > maxID {
				maxID = it.ID
			}
		}
	}
	return maxID
}

// IndexOf returns the position of itemID in the member's wishlist and whether
// the member has a wishlist at all.
func (s *State) IndexOf(memberID, itemID int64) (idx int, listExists bool) {
	items, ok := s.Wishlists[memberID]
	if !ok {
		return -1, false
	}
	return slices.IndexFunc(items, func(it WishlistItem) bool { return it.ID == itemID }), true
}

// MemberIDs returns the wishlist keys in ascending order.
func (s *State) MemberIDs() []int64 {
	ids := make([]int64, 0, len(s.Wishlists))
	for id := range s.Wishlists {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// IsEmpty reports whether the state holds neither members nor wishlists.
func (s *State) IsEmpty() bool {
	return s == nil || (len(s.FamilyMembers) == 0 && len(s.Wishlists) == 0)
}
