package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"habits/internal/core"
	"habits/internal/store"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "habits.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testActivity() core.Activity {
	return core.Activity{
		Name:     core.NameColdPlunge,
		Date:     time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		Duration: 10,
	}
}

func TestAppendAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Append(ctx, testActivity())
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero row id")
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d activities, want 1", len(list))
	}
	got := list[0]
	if got.Name != core.NameColdPlunge || got.Duration != 10 {
		t.Errorf("unexpected activity: %+v", got)
	}
	if !got.Date.Equal(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %s", got.Date)
	}
}

func TestAppendRejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.Append(context.Background(), core.Activity{Name: "x"})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, _ := repo.Append(ctx, testActivity())

	sa, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sa.SyncStatus != SyncPending {
		t.Errorf("sync status = %q, want pending", sa.SyncStatus)
	}
	if sa.Version != 1 || sa.Deleted || sa.RemoteRef != "" {
		t.Errorf("unexpected row state: %+v", sa)
	}

	if _, err := repo.Get(ctx, 9999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestSoftDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, _ := repo.Append(ctx, testActivity())
	if err := repo.SoftDelete(ctx, id); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	list, _ := repo.List(ctx)
	if len(list) != 0 {
		t.Fatalf("deleted activity still listed: %+v", list)
	}

	// The row survives for the sync worker and carries a bumped version.
	sa, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get after delete: %v", err)
	}
	if !sa.Deleted || sa.Version != 2 || sa.SyncStatus != SyncPending {
		t.Errorf("unexpected row state after delete: %+v", sa)
	}

	if err := repo.SoftDelete(ctx, id); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
	if err := repo.SoftDelete(ctx, 9999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing id: want ErrNotFound, got %v", err)
	}
}

func TestSyncLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, _ := repo.Append(ctx, testActivity())
	second, _ := repo.Append(ctx, core.Activity{
		Name:     core.NameMeditation,
		Date:     time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Duration: 20,
	})

	pending, err := repo.GetPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSync: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("got %d pending, want 2", len(pending))
	}

	if err := repo.MarkSynced(ctx, first, "remote-abc"); err != nil {
		t.Fatalf("MarkSynced: %v", err)
	}
	if err := repo.MarkSyncError(ctx, second); err != nil {
		t.Fatalf("MarkSyncError: %v", err)
	}

	pending, _ = repo.GetPendingSync(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("got %d pending after marking, want 0", len(pending))
	}

	sa, _ := repo.Get(ctx, first)
	if sa.SyncStatus != SyncSynced || sa.RemoteRef != "remote-abc" {
		t.Errorf("first row: %+v", sa)
	}
	sa, _ = repo.Get(ctx, second)
	if sa.SyncStatus != SyncError {
		t.Errorf("second row: %+v", sa)
	}
}

func TestGetPendingSyncLimit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := repo.Append(ctx, testActivity()); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	pending, err := repo.GetPendingSync(ctx, 3)
	if err != nil {
		t.Fatalf("GetPendingSync: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("got %d pending, want 3", len(pending))
	}
}
