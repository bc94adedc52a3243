// Package memory provides an in-process StateStore. Data is lost on restart.
package memory

import (
	"context"
	"sync"

	"github.com/Kerhoff/wishlist/internal/models"
	"github.com/Kerhoff/wishlist/internal/repository"
)

// Store is an in-memory implementation of repository.StateStore.
// It is safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	state *models.State
}

var _ repository.StateStore = (*Store)(nil)

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{state: models.NewState()}
}

func (s *Store) Load(_ context.Context) (*models.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone(), nil
}

func (s *Store) Update(ctx context.Context, fn repository.UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	if err := fn(next); err != nil {
		return err
	}
	s.state = next
	return nil
}

func (s *Store) Init(_ context.Context, seed *models.State) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.IsEmpty() {
		return false, nil
	}
	s.state = seed.Clone()
	return true, nil
}

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) Close() error { return nil }
