package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"habits/internal/core"
	"habits/internal/store"

	_ "modernc.org/sqlite"
)

// Sync states for the local activity queue.
const (
	SyncPending = "pending"
	SyncSynced  = "synced"
	SyncError   = "error"
)

// StoredActivity is an activities row including sync bookkeeping columns.
type StoredActivity struct {
	ID         int64
	Activity   core.Activity
	SyncStatus string
	Version    int64
	RemoteRef  string
	Deleted    bool
	CreatedAt  time.Time
}

// PendingSyncActivity is the minimal row data needed for sync queue messages.
type PendingSyncActivity struct {
	ID        int64
	Version   int64
	CreatedAt time.Time
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append inserts the activity in pending sync state and returns its row ID.
func (r *SQLiteRepository) Append(ctx context.Context, a core.Activity) (int64, error) {
	if err := a.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", store.ErrValidation, err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO activities (name, date, duration_minutes) VALUES (?, ?, ?)`,
		a.Name, a.Date.Format(time.RFC3339), a.Duration)
	if err != nil {
		return 0, fmt.Errorf("insert activity: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Activity saved to SQLite",
		"id", id,
		"name", a.Name,
		"date", a.Date.Format("2006-01-02"),
		"duration_minutes", a.Duration)

	return id, nil
}

// List returns all non-deleted activities. Rows with an unparsable date are
// skipped with a warning rather than failing the listing.
func (r *SQLiteRepository) List(ctx context.Context) ([]core.Activity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, date, duration_minutes FROM activities WHERE deleted = 0`)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var out []core.Activity
	for rows.Next() {
		var (
			id       int64
			name     string
			rawDate  string
			duration int
		)
		if err := rows.Scan(&id, &name, &rawDate, &duration); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		date, err := time.Parse(time.RFC3339, rawDate)
		if err != nil {
			slog.WarnContext(ctx, "Skipping activity row with malformed date",
				"id", id, "date", rawDate, "error", err)
			continue
		}
		out = append(out, core.Activity{
			ID:       strconv.FormatInt(id, 10),
			Name:     name,
			Date:     date,
			Duration: duration,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}
	return out, nil
}

// Get retrieves a single row by ID, including soft-deleted rows so the sync
// worker can still resolve remote references after a delete.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (*StoredActivity, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, date, duration_minutes, sync_status, version, remote_ref, deleted, created_at
		 FROM activities WHERE id = ?`, id)

	var (
		sa      StoredActivity
		rawDate string
		deleted int
	)
	err := row.Scan(&sa.ID, &sa.Activity.Name, &rawDate, &sa.Activity.Duration,
		&sa.SyncStatus, &sa.Version, &sa.RemoteRef, &deleted, &sa.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("activity %d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}

	sa.Activity.ID = strconv.FormatInt(sa.ID, 10)
	sa.Deleted = deleted != 0
	if date, perr := time.Parse(time.RFC3339, rawDate); perr == nil {
		sa.Activity.Date = date
	} else {
		slog.WarnContext(ctx, "Activity row has malformed date", "id", id, "date", rawDate)
	}
	return &sa, nil
}

// SoftDelete marks an activity deleted and queues it for remote removal.
func (r *SQLiteRepository) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE activities
		 SET deleted = 1, sync_status = ?, version = version + 1
		 WHERE id = ? AND deleted = 0`, SyncPending, id)
	if err != nil {
		return fmt.Errorf("soft delete activity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("activity %d: %w", id, store.ErrNotFound)
	}

	slog.InfoContext(ctx, "Activity soft deleted", "id", id)
	return nil
}

// GetPendingSync returns up to limit activities awaiting remote sync,
// oldest first.
func (r *SQLiteRepository) GetPendingSync(ctx context.Context, limit int) ([]PendingSyncActivity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, version, created_at FROM activities
		 WHERE sync_status = ? ORDER BY created_at ASC, id ASC LIMIT ?`, SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync activities: %w", err)
	}
	defer rows.Close()

	var out []PendingSyncActivity
	for rows.Next() {
		var p PendingSyncActivity
		if err := rows.Scan(&p.ID, &p.Version, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending activity: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending activities: %w", err)
	}
	return out, nil
}

// MarkSynced records a successful remote sync and the remote document ID.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64, remoteRef string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE activities SET sync_status = ?, remote_ref = ? WHERE id = ?`,
		SyncSynced, remoteRef, id)
	if err != nil {
		return fmt.Errorf("mark activity synced: %w", err)
	}

	slog.InfoContext(ctx, "Activity marked as synced", "id", id, "remote_ref", remoteRef)
	return nil
}

// MarkSyncError flags an activity whose remote sync keeps failing.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE activities SET sync_status = ? WHERE id = ?`, SyncError, id)
	if err != nil {
		return fmt.Errorf("mark activity sync error: %w", err)
	}

	slog.WarnContext(ctx, "Activity marked with sync error", "id", id)
	return nil
}
