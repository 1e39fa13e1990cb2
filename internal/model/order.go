package model

import "sort"

// Consumption is one entry in an order's ledger: the class the order
// was applied to and whether the physical pass was ticked at the time
// of attendance.  Ticked is only meaningful for ten-class passes.
type Consumption struct {
	Class  ClassRef
	Ticked bool
}

// Order is a single purchased ticket or pass as synced from the
// point-of-sale API.  NumTotal is the capacity fixed at purchase time:
// 1 for a single ticket, 10 for a ten-class pass and 0 for products
// that cannot be used for a class (memberships).  Classes holds the
// consumption ledger and is kept sorted by class chronology after
// every mutation.
type Order struct {
	ID            string // external order number
	ProductID     int
	ProductLineID int
	NumTotal      int
	Classes       []Consumption
	Status        ClassPassStatus
}

// IsTenClassPass reports whether the order is the dedicated ten-class
// pass product.
func (o *Order) IsTenClassPass() bool {
	return o.ProductID == ProductTenClassPass && o.ProductLineID == LineTenClassPass
}

// Matches reports whether the order's product is one of the accepted
// ticket types.
func (o *Order) Matches(valid []TicketType) bool {
	for _, t := range valid {
		if t.ProductID == o.ProductID && t.ProductLineID == o.ProductLineID {
			return true
		}
	}
	return false
}

// CalculateStatus derives the pass status from the current ledger.
// Once a pass is full only the chronologically last entry decides
// between AllTicked and MissingTicks: a tick on the most recent use
// settles the whole pass regardless of earlier entries.
func (o *Order) CalculateStatus() ClassPassStatus {
	if !o.IsTenClassPass() {
		return StatusNotApplicable
	}
	if len(o.Classes) < o.NumTotal {
		return StatusInUse
	}
	if o.Classes[len(o.Classes)-1].Ticked {
		return StatusAllTicked
	}
	return StatusMissingTicks
}

// NumberMissingTicks counts the run of un-ticked entries at the end of
// the ledger, stopping at the first ticked one.  It is zero unless the
// status is InUse or MissingTicks.
func (o *Order) NumberMissingTicks() int {
	if o.Status != StatusInUse && o.Status != StatusMissingTicks {
		return 0
	}
	missing := 0
	for i := len(o.Classes) - 1; i >= 0; i-- {
		if o.Classes[i].Ticked {
			break
		}
		missing++
	}
	return missing
}

// SortClasses re-sorts the ledger by ascending class chronology.  It
// must run after every mutation, before any status derivation or
// last-entry lookup.
func (o *Order) SortClasses() {
	sort.SliceStable(o.Classes, func(i, j int) bool {
		return o.Classes[i].Class.Compare(o.Classes[j].Class) < 0
	})
}

// IsOlder reports whether this order's last consumed class is strictly
// earlier than other's.  An order with no consumption yet is never
// older.
func (o *Order) IsOlder(other *Order) bool {
	if len(o.Classes) == 0 || len(other.Classes) == 0 {
		return false
	}
	last := o.Classes[len(o.Classes)-1].Class
	otherLast := other.Classes[len(other.Classes)-1].Class
	return last.Compare(otherLast) < 0
}

// HasClass reports whether the ledger contains an entry for the class.
func (o *Order) HasClass(id ClassRef) bool {
	for _, c := range o.Classes {
		if c.Class == id {
			return true
		}
	}
	return false
}

// ConsumptionFor returns the ledger entry for the class, if present.
func (o *Order) ConsumptionFor(id ClassRef) (Consumption, bool) {
	for _, c := range o.Classes {
		if c.Class == id {
			return c, true
		}
	}
	return Consumption{}, false
}

// Clone returns a deep copy of the order.
func (o *Order) Clone() *Order {
	cp := *o
	cp.Classes = make([]Consumption, len(o.Classes))
	copy(cp.Classes, o.Classes)
	return &cp
}
