package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/studiolotus/yoga-attendance/internal/model"
)

// ClassRepo persists scheduled classes and their accepted ticket
// types.  The class ref (YYYYMMDDHHmm) is the primary key, so creating
// a class at an already-known time merges into the existing record.
type ClassRepo struct {
	db *sql.DB
}

// NewClassRepo returns a new ClassRepo bound to the given database.
func NewClassRepo(db *sql.DB) *ClassRepo { return &ClassRepo{db: db} }

// GetByID loads a class and its accepted ticket types.  Participants
// are loaded separately through ParticipantRepo.
func (r *ClassRepo) GetByID(ctx context.Context, id model.ClassRef) (*model.Class, error) {
	const q = `SELECT id, time, notes FROM classes WHERE id = ?`
	var cl model.Class
	var rawID string
	err := r.db.QueryRowContext(ctx, q, string(id)).Scan(&rawID, &cl.Time, &cl.Notes)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	cl.ID = model.ClassRef(rawID)

	const tq = `SELECT product_id, product_line_id FROM class_valid_tickets WHERE class_id = ?`
	rows, err := r.db.QueryContext(ctx, tq, string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var t model.TicketType
		if err := rows.Scan(&t.ProductID, &t.ProductLineID); err != nil {
			return nil, err
		}
		cl.ValidTickets = append(cl.ValidTickets, t)
	}
	return &cl, rows.Err()
}

// ListRange returns the classes in one of three windows relative to
// the current ISO week: "past" (before Monday of this week), "week"
// (Monday through Sunday) or "future" (after this week).  Only the
// basic class fields are populated.
func (r *ClassRepo) ListRange(ctx context.Context, window string, now time.Time) ([]model.Class, error) {
	weekStart := startOfISOWeek(now)
	weekEnd := weekStart.AddDate(0, 0, 7)

	var q string
	var args []interface{}
	switch window {
	case "past":
		q = `SELECT id, time, notes FROM classes WHERE time < ? ORDER BY time DESC`
		args = []interface{}{weekStart}
	case "future":
		q = `SELECT id, time, notes FROM classes WHERE time >= ? ORDER BY time`
		args = []interface{}{weekEnd}
	default: // "week"
		q = `SELECT id, time, notes FROM classes WHERE time >= ? AND time < ? ORDER BY time`
		args = []interface{}{weekStart, weekEnd}
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Class, 0)
	for rows.Next() {
		var cl model.Class
		var rawID string
		if err := rows.Scan(&rawID, &cl.Time, &cl.Notes); err != nil {
			return nil, err
		}
		cl.ID = model.ClassRef(rawID)
		out = append(out, cl)
	}
	return out, rows.Err()
}

// CreateOrMerge inserts the class, or when a class already exists at
// that time, replaces its accepted ticket types and appends the notes.
// It reports whether a new class row was created.
func (r *ClassRepo) CreateOrMerge(ctx context.Context, cl *model.Class) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var existingNotes string
	err = tx.QueryRowContext(ctx, `SELECT notes FROM classes WHERE id = ?`, string(cl.ID)).Scan(&existingNotes)
	created := false
	switch {
	case err == sql.ErrNoRows:
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO classes (id, time, notes) VALUES (?, ?, ?)`,
			string(cl.ID), cl.Time, cl.Notes); err != nil {
			return false, err
		}
		created = true
	case err != nil:
		return false, err
	default:
		notes := cl.Notes
		if existingNotes != "" && notes != "" {
			notes = existingNotes + "\n" + notes
		} else if existingNotes != "" {
			notes = existingNotes
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE classes SET notes = ? WHERE id = ?`, notes, string(cl.ID)); err != nil {
			return false, err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM class_valid_tickets WHERE class_id = ?`, string(cl.ID)); err != nil {
			return false, err
		}
	}

	for _, t := range cl.ValidTickets {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO class_valid_tickets (class_id, product_id, product_line_id) VALUES (?, ?, ?)`,
			string(cl.ID), t.ProductID, t.ProductLineID); err != nil {
			return false, err
		}
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return created, nil
}

// UpdateNotes replaces the free-text notes of a class.
func (r *ClassRepo) UpdateNotes(ctx context.Context, id model.ClassRef, notes string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE classes SET notes = ? WHERE id = ?`, notes, string(id))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		// RowsAffected is also 0 when the notes are unchanged, which
		// is a valid no-op; verify existence before reporting not found.
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM classes WHERE id = ?`, string(id)).Scan(&one); err == sql.ErrNoRows {
			return ErrClassNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}

// startOfISOWeek returns Monday 00:00 UTC of the week containing t.
func startOfISOWeek(t time.Time) time.Time {
	t = t.UTC()
	weekday := int(t.Weekday())
	if weekday == 0 { // Sunday belongs to the week that started six days earlier
		weekday = 7
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -(weekday - 1))
}
