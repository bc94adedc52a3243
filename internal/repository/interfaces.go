package repository

import (
	"context"

	"github.com/Kerhoff/wishlist/internal/models"
)

// UpdateFunc mutates the aggregate in place. Returning an error aborts the
// update and leaves the persisted state untouched.
type UpdateFunc func(state *models.State) error

// StateStore defines the persistence contract for the wishlist aggregate.
//
// Implementations serialize Update calls and persist all-or-nothing: either
// the whole mutated state is stored, or the previous state stays
// authoritative.
type StateStore interface {
	// Load returns a private copy of the persisted state. A store that was
	// never initialized yields an empty state, not an error.
	Load(ctx context.Context) (*models.State, error)
	// Update runs fn against a private copy of the state under the store's
	// write lock and persists the result when fn succeeds.
	Update(ctx context.Context, fn UpdateFunc) error
	// Init persists seed when the store is empty and reports whether it did.
	Init(ctx context.Context, seed *models.State) (bool, error)
	// Ping reports whether the backing storage is reachable.
	Ping(ctx context.Context) error
	Close() error
}
