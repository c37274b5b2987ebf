package services

import (
	"context"
	"fmt"
	"log/slog"

	"habits/internal/amqp"
	"habits/internal/core"
	"habits/internal/storage"
)

// ActivityService orchestrates activity writes across SQLite and AMQP.
// Writes land in SQLite first; remote sync is queued and must never fail
// the user request.
type ActivityService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewActivityService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *ActivityService {
	return &ActivityService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// CreateActivity saves an activity locally and publishes a sync message.
func (s *ActivityService) CreateActivity(ctx context.Context, a core.Activity) (int64, error) {
	id, err := s.storage.Append(ctx, a)
	if err != nil {
		return 0, fmt.Errorf("save activity: %w", err)
	}

	// New rows start at version 1.
	if err := s.publishSyncMessage(ctx, id, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", id, "error", err)
		// Don't fail the request, the activity is saved locally.
	}

	return id, nil
}

// DeleteActivity soft deletes locally and queues removal of the remote document.
func (s *ActivityService) DeleteActivity(ctx context.Context, id int64) error {
	// Resolve the remote ref before the delete bumps the version.
	remoteRef := ""
	version := int64(1)
	if sa, err := s.storage.Get(ctx, id); err == nil {
		remoteRef = sa.RemoteRef
		version = sa.Version + 1
	}

	if err := s.storage.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("soft delete activity: %w", err)
	}

	if err := s.publishDeleteMessage(ctx, id, version, remoteRef); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"id", id, "error", err)
		// Don't fail the request, the activity is deleted locally.
	}

	return nil
}

func (s *ActivityService) publishSyncMessage(ctx context.Context, id, version int64) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.amqpClient.PublishActivitySync(ctx, id, version)
}

func (s *ActivityService) publishDeleteMessage(ctx context.Context, id, version int64, remoteRef string) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping delete message")
		return nil
	}
	return s.amqpClient.PublishActivityDelete(ctx, id, version, remoteRef)
}

// Close closes both storage and AMQP connections.
func (s *ActivityService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close activity service: %v", errs)
	}

	return nil
}
