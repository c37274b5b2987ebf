package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"habits/internal/amqp"
	"habits/internal/storage"
	"habits/internal/store"
)

// SyncWorker pushes locally stored activities to the remote document store
// and removes remote documents for soft-deleted rows.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	writer    store.ActivityWriter
	deleter   store.ActivityDeleter
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, writer store.ActivityWriter, deleter store.ActivityDeleter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		writer:    writer,
		deleter:   deleter,
		batchSize: batchSize,
	}
}

// HandleMessage dispatches a queue message to the matching handler.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.SyncMessage) error {
	switch msg.Op {
	case amqp.OpSync:
		return w.HandleSyncMessage(ctx, msg)
	case amqp.OpDelete:
		return w.HandleDeleteMessage(ctx, msg)
	default:
		return fmt.Errorf("unknown sync operation %q", msg.Op)
	}
}

// HandleSyncMessage pushes one activity to the remote store and records the
// resulting document ID.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.SyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	sa, err := w.storage.Get(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get activity from storage: %w", err)
	}
	if sa.Deleted {
		// A delete raced the sync message; the delete handler owns cleanup.
		slog.InfoContext(ctx, "Skipping sync for deleted activity", "id", msg.ID)
		return nil
	}
	if sa.SyncStatus == storage.SyncSynced && sa.RemoteRef != "" {
		slog.InfoContext(ctx, "Activity already synced", "id", msg.ID, "remote_ref", sa.RemoteRef)
		return nil
	}

	return w.syncToRemote(ctx, sa)
}

// HandleDeleteMessage removes the remote document for a soft-deleted row.
// A missing remote document counts as success.
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.SyncMessage) error {
	slog.InfoContext(ctx, "Processing delete message",
		"id", msg.ID,
		"remote_ref", msg.RemoteRef)

	if w.deleter == nil {
		slog.WarnContext(ctx, "No remote deleter configured, skipping remote deletion",
			"id", msg.ID)
		return nil
	}

	remoteRef := msg.RemoteRef
	if remoteRef == "" {
		// Fall back to the row in case the publisher had no ref yet.
		sa, err := w.storage.Get(ctx, msg.ID)
		if err == nil {
			remoteRef = sa.RemoteRef
		}
	}
	if remoteRef == "" {
		slog.InfoContext(ctx, "Activity was never synced, nothing to delete remotely", "id", msg.ID)
		return w.storage.MarkSynced(ctx, msg.ID, "")
	}

	if err := w.deleter.Delete(ctx, remoteRef); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.InfoContext(ctx, "Remote document already gone",
				"id", msg.ID, "remote_ref", remoteRef)
			return w.storage.MarkSynced(ctx, msg.ID, "")
		}
		return fmt.Errorf("delete remote document: %w", err)
	}

	slog.InfoContext(ctx, "Remote document deleted",
		"id", msg.ID, "remote_ref", remoteRef)
	return w.storage.MarkSynced(ctx, msg.ID, "")
}

// ProcessPending syncs activities still marked pending. Backup path for lost
// queue messages.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.GetPendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending activities: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending activities", "count", len(pending))

	for _, p := range pending {
		if err := w.syncPendingRow(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync pending activity", "id", p.ID, "error", err)
		}
	}
	return nil
}

// StartupSyncCheck drains the pending backlog at worker startup, recovering
// from missed queue messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending activities for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending activities found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending activities on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0
	for _, p := range pending {
		if err := w.syncPendingRow(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync activity during startup",
				"id", p.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

func (w *SyncWorker) syncPendingRow(ctx context.Context, id int64) error {
	sa, err := w.storage.Get(ctx, id)
	if err != nil {
		if merr := w.storage.MarkSyncError(ctx, id); merr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", merr)
		}
		return fmt.Errorf("get activity: %w", err)
	}

	if sa.Deleted {
		return w.HandleDeleteMessage(ctx, &amqp.SyncMessage{
			Op:        amqp.OpDelete,
			ID:        sa.ID,
			Version:   sa.Version,
			RemoteRef: sa.RemoteRef,
		})
	}
	return w.syncToRemote(ctx, sa)
}

func (w *SyncWorker) syncToRemote(ctx context.Context, sa *storage.StoredActivity) error {
	created, err := w.writer.Create(ctx, sa.Activity)
	if err != nil {
		if !errors.Is(err, store.ErrUnavailable) {
			if merr := w.storage.MarkSyncError(ctx, sa.ID); merr != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", sa.ID, "error", merr)
			}
		}
		return fmt.Errorf("create remote document: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, sa.ID, created.ID); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}

	slog.InfoContext(ctx, "Activity synced to remote store",
		"id", sa.ID, "remote_ref", created.ID)
	return nil
}
