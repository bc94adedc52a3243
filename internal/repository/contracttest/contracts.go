// Package contracttest holds the behaviour every StateStore must satisfy.
package contracttest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/wishlist/internal/models"
	"github.com/Kerhoff/wishlist/internal/repository"
)

type CleanupFunc = func()

type StoreFactory func(t *testing.T) (repository.StateStore, CleanupFunc)

func seedState() *models.State {
	s := models.NewState()
	s.FamilyMembers = []models.FamilyMember{
		{ID: 1, Name: "Tom", Avatar: "T"},
		{ID: 2, Name: "Kait", Avatar: "K"},
	}
	s.Wishlists[1] = []models.WishlistItem{
		{ID: 1, Item: "Coffee grinder", Link: "https://example.com/grinder"},
		{ID: 2, Item: "Book", Purchased: true},
	}
	return s
}

// RunStateStore exercises a StateStore implementation against the shared
// contract.
func RunStateStore(t *testing.T, newStore StoreFactory) {
	t.Helper()

	t.Run("empty store loads empty state", func(t *testing.T) {
		store, cleanup := newStore(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}
		state, err := store.Load(context.Background())
		require.NoError(t, err)
		require.True(t, state.IsEmpty())
		require.NotNil(t, state.Wishlists)
	})

	t.Run("init seeds once", func(t *testing.T) {
		store, cleanup := newStore(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}
		ctx := context.Background()

		seeded, err := store.Init(ctx, seedState())
		require.NoError(t, err)
		require.True(t, seeded)

		other := models.NewState()
		other.FamilyMembers = []models.FamilyMember{{ID: 9, Name: "Nobody"}}
		seeded, err = store.Init(ctx, other)
		require.NoError(t, err)
		require.False(t, seeded)

		state, err := store.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, seedState().FamilyMembers, state.FamilyMembers)
		require.Equal(t, seedState().Wishlists[1], state.Wishlists[1])
	})

	t.Run("update persists mutation", func(t *testing.T) {
		store, cleanup := newStore(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}
		ctx := context.Background()
		_, err := store.Init(ctx, seedState())
		require.NoError(t, err)

		err = store.Update(ctx, func(s *models.State) error {
			s.Wishlists[1][0].Purchased = true
			s.Wishlists[1] = s.Wishlists[1][:1]
			s.Wishlists[2] = append(s.Wishlists[2], models.WishlistItem{ID: 3, Item: "Mug"})
			return nil
		})
		require.NoError(t, err)

		state, err := store.Load(ctx)
		require.NoError(t, err)
		require.Len(t, state.Wishlists[1], 1)
		require.True(t, state.Wishlists[1][0].Purchased)
		require.Equal(t, []models.WishlistItem{{ID: 3, Item: "Mug"}}, state.Wishlists[2])
	})

	t.Run("failed update leaves state untouched", func(t *testing.T) {
		store, cleanup := newStore(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}
		ctx := context.Background()
		_, err := store.Init(ctx, seedState())
		require.NoError(t, err)

		boom := errors.New("boom")
		err = store.Update(ctx, func(s *models.State) error {
			s.Wishlists[1] = nil
			s.Wishlists[2] = []models.WishlistItem{{ID: 5, Item: "x"}}
			return boom
		})
		require.ErrorIs(t, err, boom)

		state, err := store.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, seedState().Wishlists[1], state.Wishlists[1])
		_, ok := state.Wishlists[2]
		require.False(t, ok)
	})

	t.Run("load returns a private copy", func(t *testing.T) {
		store, cleanup := newStore(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}
		ctx := context.Background()
		_, err := store.Init(ctx, seedState())
		require.NoError(t, err)

		state, err := store.Load(ctx)
		require.NoError(t, err)
		state.Wishlists[1][0].Item = "mutated"

		again, err := store.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, "Coffee grinder", again.Wishlists[1][0].Item)
	})

	t.Run("concurrent updates are serialized", func(t *testing.T) {
		store, cleanup := newStore(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}
		ctx := context.Background()
		_, err := store.Init(ctx, seedState())
		require.NoError(t, err)

		const writers = 20
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = store.Update(ctx, func(s *models.State) error {
					s.Wishlists[2] = append(s.Wishlists[2], models.WishlistItem{ID: s.MaxItemID() + 1, Item: "gift"})
					return nil
				})
			}()
		}
		wg.Wait()

		state, err := store.Load(ctx)
		require.NoError(t, err)
		require.Len(t, state.Wishlists[2], writers)
		seen := make(map[int64]bool)
		for _, it := range state.Wishlists[2] {
			require.False(t, seen[it.ID], "duplicate id %d", it.ID)
			seen[it.ID] = true
		}
	})
}
