package backend

import (
	"context"

	"habits/internal/store"
)

// Backend is the unified set of store operations the HTTP layer needs.
type Backend interface {
	store.ActivityWriter
	store.ActivityLister
	store.ActivityDeleter
}

// CleanupFunc releases backend resources at shutdown.
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function.
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Firestore specific
	FirestoreProjectID  string
	FirestoreDatabase   string
	FirestoreCollection string
}

// BackendType represents the type of backend.
type BackendType string

const (
	SQLiteBackend    BackendType = "sqlite"
	FirestoreBackend BackendType = "firestore"
	MemoryBackend    BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid.
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, FirestoreBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
