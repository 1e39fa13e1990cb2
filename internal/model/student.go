package model

import "sort"

// Student is a studio customer synced from the point-of-sale API.  The
// Login (university account) is the natural key; orders accumulate
// over the student's lifetime and are owned exclusively by them.
type Student struct {
	Login     string
	CID       string
	FirstName string
	Surname   string
	Email     string
	IsMember  bool
	Orders    []*Order
}

// CurrentTicket picks the order an attendance on the given class should
// charge, or nil when no usable order exists.
//
// An exactly full order of an accepted type that already lists the
// class wins immediately, so that toggling attendance off and on again
// re-selects the order it already used.  Otherwise the accepted orders
// with spare capacity are considered, ten-class passes ahead of other
// types, and the most nearly full candidate is charged first so that
// partially used passes drain before a fresh one is opened.
func (s *Student) CurrentTicket(classID ClassRef, valid []TicketType) *Order {
	for _, o := range s.Orders {
		if o.Matches(valid) && len(o.Classes) == o.NumTotal && o.HasClass(classID) {
			return o
		}
	}

	candidates := make([]*Order, 0, len(s.Orders))
	for _, o := range s.Orders {
		if o.Matches(valid) && len(o.Classes) < o.NumTotal {
			candidates = append(candidates, o)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	// Ten-class passes first; ties among other types keep filter order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].IsTenClassPass() && !candidates[j].IsTenClassPass()
	})

	best := candidates[0]
	for _, o := range candidates[1:] {
		if len(o.Classes) > len(best.Classes) {
			best = o
		}
	}
	return best
}

// TotalMissingTicks sums the missing-tick counts over all owned
// orders.  Pure read, no mutation.
func (s *Student) TotalMissingTicks() int {
	total := 0
	for _, o := range s.Orders {
		total += o.NumberMissingTicks()
	}
	return total
}

// OrderByID returns the owned order with the given id, if any.
func (s *Student) OrderByID(id string) *Order {
	for _, o := range s.Orders {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// Clone returns a deep copy of the student, orders included.
func (s *Student) Clone() *Student {
	cp := *s
	cp.Orders = make([]*Order, len(s.Orders))
	for i, o := range s.Orders {
		cp.Orders[i] = o.Clone()
	}
	return &cp
}
