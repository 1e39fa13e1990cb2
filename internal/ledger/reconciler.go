// Package ledger implements the ticket and pass reconciliation engine:
// deciding which purchased order an attendance consumes, updating the
// consumption ledger when attendance is toggled, and propagating
// status corrections across the student's other passes.
package ledger

import (
	"context"

	"github.com/studiolotus/yoga-attendance/internal/model"
)

// OrderStore is the persistence surface the reconciler writes through.
// Each method persists one order mutation atomically; there is no
// transaction spanning several orders, so a failure mid-sequence can
// leave earlier writes applied (callers re-fetch on error).
type OrderStore interface {
	// AppendConsumption adds a ledger entry and stores the new status.
	AppendConsumption(ctx context.Context, orderID string, c model.Consumption, status model.ClassPassStatus) error
	// RemoveConsumption deletes the entry for a class and stores the new status.
	RemoveConsumption(ctx context.Context, orderID string, classID model.ClassRef, status model.ClassPassStatus) error
	// SetConsumptionTicked flips the ticked flag on the entry for a
	// class and stores the new status.
	SetConsumptionTicked(ctx context.Context, orderID string, classID model.ClassRef, ticked bool, status model.ClassPassStatus) error
	// UpdateStatus stores a status change alone.
	UpdateStatus(ctx context.Context, orderID string, status model.ClassPassStatus) error
}

// Reconciler applies attendance transitions to a student's orders.
// Methods mutate the passed-in student in place, persist every order
// they change and return the full set of touched orders so callers and
// tests can see exactly which records moved.  The reconciler performs
// no locking: one class/ticket is assumed to have a single writer at a
// time.
type Reconciler struct {
	store OrderStore
}

// NewReconciler returns a Reconciler writing through the given store.
func NewReconciler(store OrderStore) *Reconciler {
	if store == nil {
		panic("nil store passed to NewReconciler")
	}
	return &Reconciler{store: store}
}

// SetAttendance records or undoes one attendance of the student on the
// class and reconciles the status of every affected order.
func (r *Reconciler) SetAttendance(ctx context.Context, st *model.Student, cl *model.Class, attended bool) ([]*model.Order, error) {
	if attended {
		return r.attend(ctx, st, cl)
	}
	return r.unattend(ctx, st, cl)
}

// attend charges the selected ticket with one consumption entry and
// then settles strictly older passes: a fresh tick on a later pass
// confirms the student's pass was present, which resolves the
// ambiguity on older exhausted passes still marked MissingTicks.
func (r *Reconciler) attend(ctx context.Context, st *model.Student, cl *model.Class) ([]*model.Order, error) {
	ticket := st.CurrentTicket(cl.ID, cl.ValidTickets)
	if ticket == nil {
		return nil, &NoTicketError{Login: st.Login, Class: cl.ID}
	}

	entry := model.Consumption{Class: cl.ID, Ticked: true}
	ticket.Classes = append(ticket.Classes, entry)
	ticket.SortClasses()
	ticket.Status = ticket.CalculateStatus()

	if err := r.store.AppendConsumption(ctx, ticket.ID, entry, ticket.Status); err != nil {
		return nil, &StoreError{Op: "append consumption", OrderID: ticket.ID, Err: err}
	}
	touched := []*model.Order{ticket}

	for _, o := range st.Orders {
		if o.ID == ticket.ID {
			continue
		}
		if o.Status == model.StatusMissingTicks && o.IsOlder(ticket) {
			o.Status = model.StatusAllTicked
			if err := r.store.UpdateStatus(ctx, o.ID, o.Status); err != nil {
				return touched, &StoreError{Op: "correct status", OrderID: o.ID, Err: err}
			}
			touched = append(touched, o)
		}
	}
	return touched, nil
}

// unattend scans every order of the student.  The order that consumed
// the class gives the entry back; any other order optimistically
// promoted to AllTicked whose own last entry was never ticked is
// demoted again, since the confirming attendance may just have been
// the one undone.
func (r *Reconciler) unattend(ctx context.Context, st *model.Student, cl *model.Class) ([]*model.Order, error) {
	touched := make([]*model.Order, 0, 1)
	for _, o := range st.Orders {
		if o.HasClass(cl.ID) {
			kept := o.Classes[:0]
			for _, c := range o.Classes {
				if c.Class != cl.ID {
					kept = append(kept, c)
				}
			}
			o.Classes = kept
			o.Status = o.CalculateStatus()
			if err := r.store.RemoveConsumption(ctx, o.ID, cl.ID, o.Status); err != nil {
				return touched, &StoreError{Op: "remove consumption", OrderID: o.ID, Err: err}
			}
			touched = append(touched, o)
			continue
		}
		if o.Status == model.StatusAllTicked && len(o.Classes) > 0 && !o.Classes[len(o.Classes)-1].Ticked {
			o.Status = model.StatusMissingTicks
			if err := r.store.UpdateStatus(ctx, o.ID, o.Status); err != nil {
				return touched, &StoreError{Op: "correct status", OrderID: o.ID, Err: err}
			}
			touched = append(touched, o)
		}
	}
	return touched, nil
}

// SetPassMissing flips the ticked flag on the ledger entry the class
// consumed.  The input is the participant-level "pass missing" flag;
// the stored field is its opposite.  Older orders are corrected in the
// matching direction: presenting the pass settles older MissingTicks
// passes, while reporting it missing demotes older AllTicked passes
// whose settlement depended on this entry.
func (r *Reconciler) SetPassMissing(ctx context.Context, st *model.Student, cl *model.Class, missing bool) ([]*model.Order, error) {
	ticket := st.CurrentTicket(cl.ID, cl.ValidTickets)
	if ticket == nil {
		return nil, &NoTicketError{Login: st.Login, Class: cl.ID}
	}

	idx := -1
	for i := range ticket.Classes {
		if ticket.Classes[i].Class == cl.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, &ConsumptionNotFoundError{OrderID: ticket.ID, Class: cl.ID}
	}

	ticket.Classes[idx].Ticked = !missing
	ticket.Status = ticket.CalculateStatus()
	if err := r.store.SetConsumptionTicked(ctx, ticket.ID, cl.ID, !missing, ticket.Status); err != nil {
		return nil, &StoreError{Op: "set ticked", OrderID: ticket.ID, Err: err}
	}
	touched := []*model.Order{ticket}

	for _, o := range st.Orders {
		if o.ID == ticket.ID || !o.IsOlder(ticket) {
			continue
		}
		changed := false
		if !missing {
			if o.Status == model.StatusMissingTicks {
				o.Status = model.StatusAllTicked
				changed = true
			}
		} else if o.Status == model.StatusAllTicked && len(o.Classes) > 0 {
			last := o.Classes[len(o.Classes)-1]
			if !last.Ticked || last.Class == cl.ID {
				o.Status = model.StatusMissingTicks
				changed = true
			}
		}
		if changed {
			if err := r.store.UpdateStatus(ctx, o.ID, o.Status); err != nil {
				return touched, &StoreError{Op: "correct status", OrderID: o.ID, Err: err}
			}
			touched = append(touched, o)
		}
	}
	return touched, nil
}
