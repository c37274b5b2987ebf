package store

import (
	"context"
	"errors"

	"habits/internal/core"
)

// Ports for outbound adapters.
type (
	ActivityWriter interface {
		// Create persists the activity and returns it with the store-assigned ID.
		Create(ctx context.Context, a core.Activity) (core.Activity, error)
	}

	ActivityLister interface {
		// List returns every stored activity in unspecified order.
		List(ctx context.Context) ([]core.Activity, error)
	}

	ActivityDeleter interface {
		Delete(ctx context.Context, id string) error
	}
)

var (
	// ErrNotFound is returned by Delete when no activity has the given ID.
	ErrNotFound = errors.New("activity not found")
	// ErrUnavailable marks transient backend failures worth retrying.
	ErrUnavailable = errors.New("store unavailable")
	// ErrValidation wraps rejected writes.
	ErrValidation = errors.New("invalid activity")
)
