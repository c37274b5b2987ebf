package adapters

import (
	"context"
	"fmt"
	"strconv"

	"habits/internal/core"
	"habits/internal/services"
	"habits/internal/storage"
	"habits/internal/store"
)

// SQLiteAdapter adapts SQLiteRepository and ActivityService to the store
// ports, so the HTTP handlers work unchanged against the SQLite + AMQP
// backend.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.ActivityService
}

var (
	_ store.ActivityWriter  = (*SQLiteAdapter)(nil)
	_ store.ActivityLister  = (*SQLiteAdapter)(nil)
	_ store.ActivityDeleter = (*SQLiteAdapter)(nil)
)

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.ActivityService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

func (a *SQLiteAdapter) Create(ctx context.Context, act core.Activity) (core.Activity, error) {
	id, err := a.service.CreateActivity(ctx, act)
	if err != nil {
		return core.Activity{}, err
	}
	act.ID = strconv.FormatInt(id, 10)
	return act, nil
}

func (a *SQLiteAdapter) List(ctx context.Context) ([]core.Activity, error) {
	return a.storage.List(ctx)
}

func (a *SQLiteAdapter) Delete(ctx context.Context, id string) error {
	rowID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad activity id %q", store.ErrNotFound, id)
	}
	return a.service.DeleteActivity(ctx, rowID)
}
