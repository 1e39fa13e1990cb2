package repository

import (
	"context"
	"database/sql"

	"github.com/studiolotus/yoga-attendance/internal/model"
)

// OrderRepo provides persistence for orders and their consumption
// ledgers.  The ledger lives in the order_classes table: appending a
// consumption entry is an INSERT, returning one is a DELETE and a tick
// correction is an UPDATE in place.  Every ledger mutation stores the
// order's derived status in the same transaction, mirroring how the
// reconciler updates both together; there is deliberately no
// transaction spanning several orders.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// DB exposes the underlying handle for callers that need to open a
// transaction across repositories.
func (r *OrderRepo) DB() *sql.DB { return r.db }

// GetByID loads one order with its consumption ledger.  Consumption
// rows referencing a class that no longer exists are skipped.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*model.Order, error) {
	const q = `SELECT order_number, product_id, product_line_id, num_total, status_class_pass
	           FROM orders WHERE order_number = ?`
	var o model.Order
	var status string
	err := r.db.QueryRowContext(ctx, q, id).Scan(&o.ID, &o.ProductID, &o.ProductLineID, &o.NumTotal, &status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	o.Status = model.ParseClassPassStatus(status)

	// The JOIN drops entries whose class record is gone.
	const cq = `SELECT oc.class_id, oc.ticked
	            FROM order_classes oc
	            JOIN classes c ON c.id = oc.class_id
	            WHERE oc.order_number = ?`
	rows, err := r.db.QueryContext(ctx, cq, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c model.Consumption
		var classID string
		if err := rows.Scan(&classID, &c.Ticked); err != nil {
			return nil, err
		}
		c.Class = model.ClassRef(classID)
		o.Classes = append(o.Classes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	o.SortClasses()
	return &o, nil
}

// CreateIfAbsent inserts an order owned by the given student unless an
// order with the same number already exists.  It reports whether a row
// was created.
func (r *OrderRepo) CreateIfAbsent(ctx context.Context, studentLogin string, o *model.Order) (bool, error) {
	const q = `INSERT IGNORE INTO orders
	           (order_number, student_login, product_id, product_line_id, num_total, status_class_pass)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, o.ID, studentLogin, o.ProductID, o.ProductLineID, o.NumTotal, o.Status.String())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AppendConsumption adds a ledger entry and stores the new status.
func (r *OrderRepo) AppendConsumption(ctx context.Context, orderID string, c model.Consumption, status model.ClassPassStatus) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO order_classes (order_number, class_id, ticked) VALUES (?, ?, ?)`,
			orderID, string(c.Class), c.Ticked); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE orders SET status_class_pass = ? WHERE order_number = ?`,
			status.String(), orderID)
		return err
	})
}

// RemoveConsumption deletes the ledger entry for a class and stores
// the new status.
func (r *OrderRepo) RemoveConsumption(ctx context.Context, orderID string, classID model.ClassRef, status model.ClassPassStatus) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM order_classes WHERE order_number = ? AND class_id = ?`,
			orderID, string(classID)); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE orders SET status_class_pass = ? WHERE order_number = ?`,
			status.String(), orderID)
		return err
	})
}

// SetConsumptionTicked flips the ticked flag on the ledger entry for a
// class and stores the new status.  ErrOrderNotFound is returned when
// no such entry exists.
func (r *OrderRepo) SetConsumptionTicked(ctx context.Context, orderID string, classID model.ClassRef, ticked bool, status model.ClassPassStatus) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE order_classes SET ticked = ? WHERE order_number = ? AND class_id = ?`,
			ticked, orderID, string(classID))
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrOrderNotFound
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE orders SET status_class_pass = ? WHERE order_number = ?`,
			status.String(), orderID)
		return err
	})
}

// UpdateStatus stores a status change alone.
func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID string, status model.ClassPassStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status_class_pass = ? WHERE order_number = ?`,
		status.String(), orderID)
	return err
}

func (r *OrderRepo) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
