package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/studiolotus/yoga-attendance/internal/model"
)

// StudentRepo persists studio customers and loads them together with
// their owned orders.  Students are keyed by their login, the natural
// key used by the point-of-sale API.
type StudentRepo struct {
	db *sql.DB
}

// NewStudentRepo returns a new StudentRepo bound to the given database.
func NewStudentRepo(db *sql.DB) *StudentRepo { return &StudentRepo{db: db} }

// GetByLogin loads a student with all owned orders and their
// consumption ledgers.  A malformed order row is skipped with a log
// line instead of failing the whole fetch; a malformed student row is
// a ValidationError.
func (r *StudentRepo) GetByLogin(ctx context.Context, login string) (*model.Student, error) {
	const q = `SELECT login, cid, first_name, surname, email, is_member
	           FROM students WHERE login = ?`
	var st model.Student
	err := r.db.QueryRowContext(ctx, q, login).Scan(
		&st.Login, &st.CID, &st.FirstName, &st.Surname, &st.Email, &st.IsMember)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("%w: student %s: %v", ErrValidation, login, err)
	}
	orders, err := r.loadOrders(ctx, login)
	if err != nil {
		return nil, err
	}
	st.Orders = orders
	return &st, nil
}

// Search finds students whose login, first name or surname matches the
// query, ordered by surname.  Orders are not loaded.
func (r *StudentRepo) Search(ctx context.Context, query string, limit int) ([]model.Student, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	like := "%" + query + "%"
	const q = `SELECT login, cid, first_name, surname, email, is_member
	           FROM students
	           WHERE login LIKE ? OR first_name LIKE ? OR surname LIKE ?
	           ORDER BY surname, first_name
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, like, like, like, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Student, 0)
	for rows.Next() {
		var st model.Student
		if err := rows.Scan(&st.Login, &st.CID, &st.FirstName, &st.Surname, &st.Email, &st.IsMember); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// CreateIfAbsent inserts a student unless the login is already known.
// It reports whether a row was created.
func (r *StudentRepo) CreateIfAbsent(ctx context.Context, st *model.Student) (bool, error) {
	const q = `INSERT IGNORE INTO students (login, cid, first_name, surname, email, is_member)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, st.Login, st.CID, st.FirstName, st.Surname, st.Email, st.IsMember)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetMember flips the membership flag, used when a membership purchase
// is ingested.
func (r *StudentRepo) SetMember(ctx context.Context, login string, member bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE students SET is_member = ? WHERE login = ?`, member, login)
	return err
}

// loadOrders fetches every order of the student in one pass: order
// rows first, then all ledger entries joined against classes so that
// entries pointing at deleted classes drop out, exactly like the
// per-order load in OrderRepo.
func (r *StudentRepo) loadOrders(ctx context.Context, login string) ([]*model.Order, error) {
	const q = `SELECT order_number, product_id, product_line_id, num_total, status_class_pass
	           FROM orders WHERE student_login = ?`
	rows, err := r.db.QueryContext(ctx, q, login)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*model.Order, 0)
	index := make(map[string]*model.Order)
	for rows.Next() {
		var o model.Order
		var status string
		if err := rows.Scan(&o.ID, &o.ProductID, &o.ProductLineID, &o.NumTotal, &status); err != nil {
			// Skip the malformed order, keep the rest of the aggregate.
			log.Printf("students: skipping malformed order for %s: %v", login, err)
			continue
		}
		o.Status = model.ParseClassPassStatus(status)
		index[o.ID] = &o
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	const cq = `SELECT oc.order_number, oc.class_id, oc.ticked
	            FROM order_classes oc
	            JOIN orders o ON o.order_number = oc.order_number
	            JOIN classes c ON c.id = oc.class_id
	            WHERE o.student_login = ?`
	crows, err := r.db.QueryContext(ctx, cq, login)
	if err != nil {
		return nil, err
	}
	defer crows.Close()
	for crows.Next() {
		var orderID, classID string
		var ticked bool
		if err := crows.Scan(&orderID, &classID, &ticked); err != nil {
			return nil, err
		}
		if o, ok := index[orderID]; ok {
			o.Classes = append(o.Classes, model.Consumption{Class: model.ClassRef(classID), Ticked: ticked})
		}
	}
	if err := crows.Err(); err != nil {
		return nil, err
	}
	for _, o := range orders {
		o.SortClasses()
	}
	return orders, nil
}
