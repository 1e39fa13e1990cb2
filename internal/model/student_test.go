package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func single(id string, member bool, used ...ClassRef) *Order {
	o := &Order{ID: id, NumTotal: 1}
	if member {
		o.ProductID, o.ProductLineID = ProductSingleClassMember, LineSingleClassMember
	} else {
		o.ProductID, o.ProductLineID = ProductSingleClassNonMember, LineSingleClassNonMember
	}
	for _, c := range used {
		o.Classes = append(o.Classes, Consumption{Class: c, Ticked: true})
	}
	o.Status = o.CalculateStatus()
	return o
}

func TestCurrentTicketReselectsFullOrder(t *testing.T) {
	classID := ClassRef("202503051800")
	used := single("s1", true, classID)
	fresh := single("s2", true)
	st := &Student{Login: "abc123", Orders: []*Order{used, fresh}}

	// The full order already charged for this class wins, so toggling
	// attendance off and on re-selects the same order.
	got := st.CurrentTicket(classID, DefaultTickets)
	require.NotNil(t, got)
	assert.Equal(t, "s1", got.ID)
}

func TestCurrentTicketPrefersTenClassPass(t *testing.T) {
	st := &Student{Login: "abc123", Orders: []*Order{
		single("s1", false),
		pass("p1", 0, false),
	}}
	got := st.CurrentTicket("202503051800", DefaultTickets)
	require.NotNil(t, got)
	assert.Equal(t, "p1", got.ID)
}

func TestCurrentTicketDrainsMostUsedPass(t *testing.T) {
	st := &Student{Login: "abc123", Orders: []*Order{
		pass("fresh", 0, false),
		pass("nearlyFull", 9, true),
		pass("halfway", 5, true),
	}}
	got := st.CurrentTicket("202512051800", DefaultTickets)
	require.NotNil(t, got)
	assert.Equal(t, "nearlyFull", got.ID)
}

func TestCurrentTicketSkipsFullOrders(t *testing.T) {
	st := &Student{Login: "abc123", Orders: []*Order{
		pass("full", 10, true),
		single("spare", true),
	}}
	got := st.CurrentTicket("202512051800", DefaultTickets)
	require.NotNil(t, got)
	assert.Equal(t, "spare", got.ID)
}

func TestCurrentTicketNoMatchingType(t *testing.T) {
	membership := &Order{ID: "m1", ProductID: ProductMembership, ProductLineID: LineMembership, NumTotal: 0}
	st := &Student{Login: "abc123", Orders: []*Order{membership}}

	assert.Nil(t, st.CurrentTicket("202503051800", DefaultTickets))
}

func TestCurrentTicketRestrictedTicketTypes(t *testing.T) {
	st := &Student{Login: "abc123", Orders: []*Order{
		single("nonmember", false),
		single("member", true),
	}}
	memberOnly := []TicketType{{ProductID: ProductSingleClassMember, ProductLineID: LineSingleClassMember}}
	got := st.CurrentTicket("202503051800", memberOnly)
	require.NotNil(t, got)
	assert.Equal(t, "member", got.ID)
}

func TestTotalMissingTicks(t *testing.T) {
	p1 := pass("p1", 10, false) // missing ticks: one trailing unticked entry
	p2 := pass("p2", 4, false)
	p2.Classes[2].Ticked = false // two trailing unticked entries
	p2.Status = p2.CalculateStatus()

	st := &Student{Login: "abc123", Orders: []*Order{p1, p2, single("s1", true)}}
	assert.Equal(t, 3, st.TotalMissingTicks())
}

func TestStudentClone(t *testing.T) {
	st := &Student{Login: "abc123", Orders: []*Order{pass("p1", 2, true)}}
	cp := st.Clone()
	cp.Orders[0].Classes[0].Ticked = false

	assert.True(t, st.Orders[0].Classes[0].Ticked)
}
