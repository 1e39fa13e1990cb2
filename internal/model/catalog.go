package model

import "time"

// Product and product-line identifiers from the upstream point-of-sale
// catalog.  The ten-class pass and the two single-class tickets predate
// the current academic year but are still being sold, so their ids are
// pinned here rather than discovered through the products endpoint.
const (
	ProductTenClassPass = 47764
	LineTenClassPass    = 79740

	ProductSingleClassMember = 47776
	LineSingleClassMember    = 79759

	ProductSingleClassNonMember = 47777
	LineSingleClassNonMember    = 79760

	ProductMembership = 50311
	LineMembership    = 83799
)

// MonthNewAcademicYear is the month in which the studio's sales year
// rolls over.  Sales made through August still belong to the previous
// label (e.g. "24-25").
const MonthNewAcademicYear = time.August

// TicketType identifies a purchasable ticket by its catalog pair.
type TicketType struct {
	ProductID     int `json:"product_id"`
	ProductLineID int `json:"product_line_id"`
}

// DefaultTickets lists the ticket types accepted by a class unless the
// coordinator overrides them at creation time.
var DefaultTickets = []TicketType{
	{ProductID: ProductTenClassPass, ProductLineID: LineTenClassPass},
	{ProductID: ProductSingleClassMember, ProductLineID: LineSingleClassMember},
	{ProductID: ProductSingleClassNonMember, ProductLineID: LineSingleClassNonMember},
}

// ClassPassStatus is the derived tick-keeping state of an order.  Only
// ten-class passes carry a meaningful status; every other product is
// NotApplicable.
type ClassPassStatus uint8

const (
	StatusNotApplicable ClassPassStatus = iota
	StatusInUse
	StatusAllTicked
	StatusMissingTicks
)

// String returns the wire form stored in the database and returned to
// clients.
func (s ClassPassStatus) String() string {
	switch s {
	case StatusAllTicked:
		return "allTicked"
	case StatusMissingTicks:
		return "missingTicks"
	case StatusInUse:
		return "inUse"
	default:
		return "notApplicable"
	}
}

// ParseClassPassStatus maps a stored status string back to its enum
// value.  Unknown strings decode to NotApplicable.
func ParseClassPassStatus(s string) ClassPassStatus {
	switch s {
	case "allTicked":
		return StatusAllTicked
	case "missingTicks":
		return StatusMissingTicks
	case "inUse":
		return StatusInUse
	default:
		return StatusNotApplicable
	}
}

// MarshalJSON encodes the status as its wire string.
func (s ClassPassStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON decodes the wire string form.
func (s *ClassPassStatus) UnmarshalJSON(b []byte) error {
	v := string(b)
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		v = v[1 : len(v)-1]
	}
	*s = ParseClassPassStatus(v)
	return nil
}
