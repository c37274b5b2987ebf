package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"habits/internal/amqp"
	"habits/internal/core"
	"habits/internal/storage"
	"habits/internal/store/memory"
)

func newTestWorker(t *testing.T) (*SyncWorker, *storage.SQLiteRepository, *memory.Store) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "habits.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	remote := memory.New()
	return NewSyncWorker(repo, remote, remote, 10), repo, remote
}

func appendActivity(t *testing.T, repo *storage.SQLiteRepository) int64 {
	t.Helper()
	id, err := repo.Append(context.Background(), core.Activity{
		Name:     core.NameColdPlunge,
		Date:     time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		Duration: 10,
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	return id
}

func TestHandleSyncMessage(t *testing.T) {
	w, repo, remote := newTestWorker(t)
	ctx := context.Background()
	id := appendActivity(t, repo)

	if err := w.HandleSyncMessage(ctx, amqp.NewActivitySyncMessage(id, 1)); err != nil {
		t.Fatalf("HandleSyncMessage: %v", err)
	}

	list, _ := remote.List(ctx)
	if len(list) != 1 {
		t.Fatalf("remote has %d activities, want 1", len(list))
	}

	sa, _ := repo.Get(ctx, id)
	if sa.SyncStatus != storage.SyncSynced || sa.RemoteRef != list[0].ID {
		t.Fatalf("row not marked synced: %+v", sa)
	}
}

func TestHandleSyncMessageIdempotent(t *testing.T) {
	w, repo, remote := newTestWorker(t)
	ctx := context.Background()
	id := appendActivity(t, repo)

	msg := amqp.NewActivitySyncMessage(id, 1)
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatalf("first handle: %v", err)
	}
	// Redelivery of the same message must not create a second document.
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatalf("second handle: %v", err)
	}

	list, _ := remote.List(ctx)
	if len(list) != 1 {
		t.Fatalf("remote has %d activities after redelivery, want 1", len(list))
	}
}

func TestHandleDeleteMessage(t *testing.T) {
	w, repo, remote := newTestWorker(t)
	ctx := context.Background()
	id := appendActivity(t, repo)

	if err := w.HandleSyncMessage(ctx, amqp.NewActivitySyncMessage(id, 1)); err != nil {
		t.Fatalf("sync: %v", err)
	}
	sa, _ := repo.Get(ctx, id)

	if err := repo.SoftDelete(ctx, id); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	msg := amqp.NewActivityDeleteMessage(id, 2, sa.RemoteRef)
	if err := w.HandleDeleteMessage(ctx, msg); err != nil {
		t.Fatalf("HandleDeleteMessage: %v", err)
	}

	list, _ := remote.List(ctx)
	if len(list) != 0 {
		t.Fatalf("remote still has %d activities", len(list))
	}

	// A redelivered delete finds the document gone and still succeeds.
	if err := w.HandleDeleteMessage(ctx, msg); err != nil {
		t.Fatalf("redelivered delete: %v", err)
	}
}

func TestHandleDeleteNeverSynced(t *testing.T) {
	w, repo, _ := newTestWorker(t)
	ctx := context.Background()
	id := appendActivity(t, repo)

	if err := repo.SoftDelete(ctx, id); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if err := w.HandleDeleteMessage(ctx, amqp.NewActivityDeleteMessage(id, 2, "")); err != nil {
		t.Fatalf("HandleDeleteMessage: %v", err)
	}

	sa, _ := repo.Get(ctx, id)
	if sa.SyncStatus != storage.SyncSynced {
		t.Fatalf("unsynced delete should settle the row: %+v", sa)
	}
}

func TestStartupSyncCheck(t *testing.T) {
	w, repo, remote := newTestWorker(t)
	ctx := context.Background()

	first := appendActivity(t, repo)
	second := appendActivity(t, repo)
	deleted := appendActivity(t, repo)
	if err := repo.SoftDelete(ctx, deleted); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	if err := w.StartupSyncCheck(ctx); err != nil {
		t.Fatalf("StartupSyncCheck: %v", err)
	}

	list, _ := remote.List(ctx)
	if len(list) != 2 {
		t.Fatalf("remote has %d activities, want 2", len(list))
	}
	for _, id := range []int64{first, second, deleted} {
		sa, _ := repo.Get(ctx, id)
		if sa.SyncStatus != storage.SyncSynced {
			t.Errorf("row %d not settled: %+v", id, sa)
		}
	}

	pending, _ := repo.GetPendingSync(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("still %d pending after startup check", len(pending))
	}
}

func TestProcessPendingEmpty(t *testing.T) {
	w, _, _ := newTestWorker(t)
	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("ProcessPending with empty backlog: %v", err)
	}
}
