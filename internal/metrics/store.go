package metrics

import (
	"context"
	"time"

	"github.com/Kerhoff/wishlist/internal/models"
	"github.com/Kerhoff/wishlist/internal/repository"
)

type instrumentedStore struct {
	next    repository.StateStore
	metrics *Metrics
}

// InstrumentStore wraps a StateStore so every call is counted and timed.
// Errors returned from inside an update callback count as "error" too.
func InstrumentStore(next repository.StateStore, m *Metrics) repository.StateStore {
	return &instrumentedStore{next: next, metrics: m}
}

func (s *instrumentedStore) observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.metrics.StoreOperations.WithLabelValues(op, result).Inc()
	s.metrics.StoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (s *instrumentedStore) Load(ctx context.Context) (*models.State, error) {
	start := time.Now()
	state, err := s.next.Load(ctx)
	s.observe("load", start, err)
	return state, err
}

func (s *instrumentedStore) Update(ctx context.Context, fn repository.UpdateFunc) error {
	start := time.Now()
	err := s.next.Update(ctx, fn)
	s.observe("update", start, err)
	return err
}

func (s *instrumentedStore) Init(ctx context.Context, seed *models.State) (bool, error) {
	start := time.Now()
	seeded, err := s.next.Init(ctx, seed)
	s.observe("init", start, err)
	return seeded, err
}

func (s *instrumentedStore) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.next.Ping(ctx)
	s.observe("ping", start, err)
	return err
}

func (s *instrumentedStore) Close() error {
	return s.next.Close()
}
