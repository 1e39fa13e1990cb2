package ledger

import (
	"fmt"

	"github.com/studiolotus/yoga-attendance/internal/model"
)

// NoTicketError is returned when ticket selection finds no usable
// order for a student on a class.  Attendance is not recorded.
type NoTicketError struct {
	Login string
	Class model.ClassRef
}

func (e *NoTicketError) Error() string {
	return fmt.Sprintf("student %s has no usable ticket for class %s", e.Login, e.Class)
}

// ConsumptionNotFoundError is returned when the ledger entry expected
// for a class is absent from the selected order.  This indicates
// inconsistent stored state, not a user mistake.
type ConsumptionNotFoundError struct {
	OrderID string
	Class   model.ClassRef
}

func (e *ConsumptionNotFoundError) Error() string {
	return fmt.Sprintf("order %s has no consumption entry for class %s", e.OrderID, e.Class)
}

// StoreError wraps a persistence failure with the sub-operation and
// order it happened on.  A StoreError aborts the transition; local
// in-memory state may already be partially mutated and callers must
// re-fetch authoritative state instead of trusting it.
type StoreError struct {
	Op      string
	OrderID string
	Err     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s for order %s: %v", e.Op, e.OrderID, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
