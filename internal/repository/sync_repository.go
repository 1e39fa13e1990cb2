package repository

import (
	"context"
	"database/sql"
	"time"
)

// SyncRepo stores the point-of-sale ingestion watermark: the moment
// the database was last brought up to date.  Sales at or before the
// watermark are skipped on the next sync.
type SyncRepo struct {
	db *sql.DB
}

// NewSyncRepo returns a new SyncRepo bound to the given database.
func NewSyncRepo(db *sql.DB) *SyncRepo { return &SyncRepo{db: db} }

// GetLastUpdated returns the stored watermark, or the zero time when
// no sync has ever run (the first sync then ingests everything).
func (r *SyncRepo) GetLastUpdated(ctx context.Context) (time.Time, error) {
	var t time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT last_updated FROM sync_state WHERE id = 1`).Scan(&t)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// SetLastUpdated advances the watermark.
func (r *SyncRepo) SetLastUpdated(ctx context.Context, t time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sync_state (id, last_updated) VALUES (1, ?)
		 ON DUPLICATE KEY UPDATE last_updated = VALUES(last_updated)`,
		t.UTC())
	return err
}
