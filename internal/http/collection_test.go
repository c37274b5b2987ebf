package http

import (
	"context"
	"errors"
	"testing"
	"time"

	"habits/internal/core"
	"habits/internal/store"
	"habits/internal/store/memory"
)

type failingDeleter struct {
	err error
}

func (f *failingDeleter) Delete(ctx context.Context, id string) error { return f.err }

type countingLister struct {
	inner store.ActivityLister
	calls int
}

func (l *countingLister) List(ctx context.Context) ([]core.Activity, error) {
	l.calls++
	return l.inner.List(ctx)
}

func seedActivity(t *testing.T, m *memory.Store, name string) core.Activity {
	t.Helper()
	a, err := m.Create(context.Background(), core.Activity{
		Name:     name,
		Date:     time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		Duration: 10,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return a
}

func TestCollectionLoadsOnce(t *testing.T) {
	m := memory.New()
	seedActivity(t, m, core.NameColdPlunge)
	lister := &countingLister{inner: m}
	c := NewCollection(m, lister, m)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		snap, err := c.Snapshot(ctx)
		if err != nil {
			t.Fatalf("Snapshot: %v", err)
		}
		if len(snap) != 1 {
			t.Fatalf("snapshot has %d items", len(snap))
		}
	}
	if lister.calls != 1 {
		t.Fatalf("List called %d times, want 1", lister.calls)
	}
}

func TestCollectionCreateAppends(t *testing.T) {
	m := memory.New()
	c := NewCollection(m, m, m)
	ctx := context.Background()

	created, err := c.Create(ctx, core.Activity{
		Name:     core.NameMeditation,
		Date:     time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Duration: 20,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("Create did not assign an ID")
	}

	snap, _ := c.Snapshot(ctx)
	if len(snap) != 1 || snap[0].ID != created.ID {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestCollectionCreateRejectedKeepsSetClean(t *testing.T) {
	m := memory.New()
	c := NewCollection(m, m, m)
	ctx := context.Background()

	_, err := c.Create(ctx, core.Activity{Name: "", Duration: 10})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
	snap, _ := c.Snapshot(ctx)
	if len(snap) != 0 {
		t.Fatalf("rejected write leaked into working set: %+v", snap)
	}
}

func TestCollectionDeleteRemoves(t *testing.T) {
	m := memory.New()
	a := seedActivity(t, m, core.NameColdPlunge)
	c := NewCollection(m, m, m)
	ctx := context.Background()

	if err := c.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	snap, _ := c.Snapshot(ctx)
	if len(snap) != 0 {
		t.Fatalf("snapshot after delete = %+v", snap)
	}
}

func TestCollectionDeleteRevertsOnStoreError(t *testing.T) {
	m := memory.New()
	first := seedActivity(t, m, core.NameColdPlunge)
	second := seedActivity(t, m, core.NameMeditation)

	storeErr := errors.New("backend down")
	c := NewCollection(m, m, &failingDeleter{err: storeErr})
	ctx := context.Background()

	if err := c.Delete(ctx, first.ID); !errors.Is(err, storeErr) {
		t.Fatalf("err = %v, want %v", err, storeErr)
	}

	// The tentative removal is reverted at its original position.
	snap, _ := c.Snapshot(ctx)
	if len(snap) != 2 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap[0].ID != first.ID || snap[1].ID != second.ID {
		t.Fatalf("order not preserved: %+v", snap)
	}
}

func TestCollectionDeleteMissingSurfacesNotFound(t *testing.T) {
	m := memory.New()
	seedActivity(t, m, core.NameColdPlunge)
	c := NewCollection(m, m, m)

	err := c.Delete(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, store.ErrNotFound)
	}
	snap, _ := c.Snapshot(context.Background())
	if len(snap) != 1 {
		t.Fatalf("working set changed: %+v", snap)
	}
}

func TestCollectionInvalidateReloads(t *testing.T) {
	m := memory.New()
	c := NewCollection(m, m, m)
	ctx := context.Background()

	if snap, _ := c.Snapshot(ctx); len(snap) != 0 {
		t.Fatalf("initial snapshot = %+v", snap)
	}

	// A write that bypasses the collection is invisible until Invalidate.
	seedActivity(t, m, core.NameColdPlunge)
	if snap, _ := c.Snapshot(ctx); len(snap) != 0 {
		t.Fatalf("stale snapshot should be served, got %+v", snap)
	}

	c.Invalidate()
	if snap, _ := c.Snapshot(ctx); len(snap) != 1 {
		t.Fatalf("snapshot after invalidate = %+v", snap)
	}
}
