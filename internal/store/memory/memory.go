package memory

import (
	"context"
	"fmt"
	"sync"

	"habits/internal/core"
	"habits/internal/store"

	"github.com/google/uuid"
)

// Store keeps activities in process memory. Used for tests and for running
// the app without any backing service.
type Store struct {
	mu    sync.Mutex
	items []core.Activity
}

var (
	_ store.ActivityWriter  = (*Store)(nil)
	_ store.ActivityLister  = (*Store)(nil)
	_ store.ActivityDeleter = (*Store)(nil)
)

func New() *Store {
	return &Store{}
}

// Create validates, assigns a UUID and stores the activity.
func (s *Store) Create(_ context.Context, a core.Activity) (core.Activity, error) {
	if err := a.Validate(); err != nil {
		return core.Activity{}, fmt.Errorf("%w: %w", store.ErrValidation, err)
	}
	a.ID = uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, a)
	return a, nil
}

// List returns a copy of all stored activities.
func (s *Store) List(_ context.Context) ([]core.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Activity, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.items {
		if a.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", store.ErrNotFound, id)
}
