package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/studiolotus/yoga-attendance/internal/model"
)

// ParticipantRepo persists class rosters.  A participant row joins one
// student to one class occurrence; the attended and missing_class_pass
// flags mirror the participant state driven by the coordinator UI.
// The Student on returned participants is shallow (name fields only);
// callers load orders through StudentRepo when they need them.
type ParticipantRepo struct {
	db *sql.DB
}

// NewParticipantRepo returns a new ParticipantRepo bound to the given database.
func NewParticipantRepo(db *sql.DB) *ParticipantRepo { return &ParticipantRepo{db: db} }

// ListByClass returns the roster sorted by surname.
func (r *ParticipantRepo) ListByClass(ctx context.Context, classID model.ClassRef) ([]model.Participant, error) {
	const q = `SELECT p.student_login, p.attended, p.missing_class_pass,
	                  s.cid, s.first_name, s.surname, s.email, s.is_member
	           FROM class_participants p
	           JOIN students s ON s.login = p.student_login
	           WHERE p.class_id = ?
	           ORDER BY s.surname, s.first_name`
	rows, err := r.db.QueryContext(ctx, q, string(classID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Participant, 0)
	for rows.Next() {
		var p model.Participant
		st := &model.Student{}
		if err := rows.Scan(&p.Login, &p.Attended, &p.MissingClassPass,
			&st.CID, &st.FirstName, &st.Surname, &st.Email, &st.IsMember); err != nil {
			return nil, err
		}
		st.Login = p.Login
		p.Student = st
		out = append(out, p)
	}
	return out, rows.Err()
}

// Get returns one roster entry.
func (r *ParticipantRepo) Get(ctx context.Context, classID model.ClassRef, login string) (model.Participant, error) {
	const q = `SELECT p.student_login, p.attended, p.missing_class_pass,
	                  s.cid, s.first_name, s.surname, s.email, s.is_member
	           FROM class_participants p
	           JOIN students s ON s.login = p.student_login
	           WHERE p.class_id = ? AND p.student_login = ?`
	var p model.Participant
	st := &model.Student{}
	err := r.db.QueryRowContext(ctx, q, string(classID), login).Scan(
		&p.Login, &p.Attended, &p.MissingClassPass,
		&st.CID, &st.FirstName, &st.Surname, &st.Email, &st.IsMember)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Participant{}, ErrParticipantNotFound
		}
		return model.Participant{}, err
	}
	st.Login = p.Login
	p.Student = st
	return p, nil
}

// Add puts a student on the roster with both flags cleared.
// ErrConflict is returned when the student is already on it.
func (r *ParticipantRepo) Add(ctx context.Context, classID model.ClassRef, login string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO class_participants (class_id, student_login, attended, missing_class_pass)
		 VALUES (?, ?, FALSE, FALSE)`,
		string(classID), login)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	return nil
}

// AddIfAbsent is Add without the conflict error, used by roster
// ingestion where re-importing a CSV must be idempotent.
func (r *ParticipantRepo) AddIfAbsent(ctx context.Context, classID model.ClassRef, login string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT IGNORE INTO class_participants (class_id, student_login, attended, missing_class_pass)
		 VALUES (?, ?, FALSE, FALSE)`,
		string(classID), login)
	return err
}

// SetAttended stores the attendance flag.
func (r *ParticipantRepo) SetAttended(ctx context.Context, classID model.ClassRef, login string, attended bool) error {
	return r.setFlag(ctx, classID, login, "attended", attended)
}

// SetMissingClassPass stores the pass-missing flag.
func (r *ParticipantRepo) SetMissingClassPass(ctx context.Context, classID model.ClassRef, login string, missing bool) error {
	return r.setFlag(ctx, classID, login, "missing_class_pass", missing)
}

func (r *ParticipantRepo) setFlag(ctx context.Context, classID model.ClassRef, login, column string, value bool) error {
	// column is one of two fixed names, never caller input.
	res, err := r.db.ExecContext(ctx,
		`UPDATE class_participants SET `+column+` = ? WHERE class_id = ? AND student_login = ?`,
		value, string(classID), login)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx,
			`SELECT 1 FROM class_participants WHERE class_id = ? AND student_login = ?`,
			string(classID), login).Scan(&one); err == sql.ErrNoRows {
			return ErrParticipantNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}
