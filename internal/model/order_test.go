package model

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// pass builds a ten-class pass with n consumption entries on
// consecutive days of March 2025.  lastTicked controls the ticked flag
// of the chronologically last entry; all earlier entries are ticked.
func pass(id string, n int, lastTicked bool) *Order {
	o := &Order{
		ID:            id,
		ProductID:     ProductTenClassPass,
		ProductLineID: LineTenClassPass,
		NumTotal:      10,
	}
	for i := 1; i <= n; i++ {
		o.Classes = append(o.Classes, Consumption{
			Class:  ClassRef(fmt.Sprintf("202503%02d1800", i)),
			Ticked: i < n || lastTicked,
		})
	}
	o.Status = o.CalculateStatus()
	return o
}

func TestCalculateStatusNotApplicable(t *testing.T) {
	o := &Order{ID: "s1", ProductID: ProductSingleClassMember, ProductLineID: LineSingleClassMember, NumTotal: 1}
	assert.Equal(t, StatusNotApplicable, o.CalculateStatus())

	// A full single ticket stays NotApplicable.
	o.Classes = []Consumption{{Class: "202503011800", Ticked: true}}
	assert.Equal(t, StatusNotApplicable, o.CalculateStatus())
}

func TestCalculateStatusPass(t *testing.T) {
	assert.Equal(t, StatusInUse, pass("p", 4, true).CalculateStatus())
	assert.Equal(t, StatusAllTicked, pass("p", 10, true).CalculateStatus())
	assert.Equal(t, StatusMissingTicks, pass("p", 10, false).CalculateStatus())
}

func TestCalculateStatusIsPure(t *testing.T) {
	o := pass("p", 10, false)
	first := o.CalculateStatus()
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, o.CalculateStatus())
	}
}

func TestNumberMissingTicks(t *testing.T) {
	o := pass("p", 6, true)
	// last entry ticked: nothing missing
	assert.Equal(t, 0, o.NumberMissingTicks())

	// three trailing unticked entries
	o.Classes[3].Ticked = false
	o.Classes[4].Ticked = false
	o.Classes[5].Ticked = false
	o.Status = o.CalculateStatus()
	assert.Equal(t, 3, o.NumberMissingTicks())

	// count stops at the first ticked entry walking backwards
	o.Classes[4].Ticked = true
	assert.Equal(t, 1, o.NumberMissingTicks())
}

func TestNumberMissingTicksZeroWhenSettled(t *testing.T) {
	assert.Equal(t, 0, pass("p", 10, true).NumberMissingTicks())

	single := &Order{ID: "s", ProductID: ProductSingleClassNonMember, ProductLineID: LineSingleClassNonMember, NumTotal: 1,
		Classes: []Consumption{{Class: "202503011800", Ticked: false}}}
	single.Status = single.CalculateStatus()
	assert.Equal(t, 0, single.NumberMissingTicks())
}

func TestSortClasses(t *testing.T) {
	o := &Order{Classes: []Consumption{
		{Class: "202504011800"},
		{Class: "202501011800"},
		{Class: "202503011800"},
	}}
	o.SortClasses()
	assert.Equal(t, ClassRef("202501011800"), o.Classes[0].Class)
	assert.Equal(t, ClassRef("202503011800"), o.Classes[1].Class)
	assert.Equal(t, ClassRef("202504011800"), o.Classes[2].Class)
}

func TestIsOlder(t *testing.T) {
	older := pass("a", 10, false)                           // last use 2025-03-10
	newer := pass("b", 3, true)                             // last use 2025-03-03
	newer.Classes[2].Class = ClassRef("202505011800")       // push last use past a's

	assert.True(t, older.IsOlder(newer))
	assert.False(t, newer.IsOlder(older))

	empty := pass("c", 0, false)
	assert.False(t, empty.IsOlder(newer))
}

func TestHasClassAndConsumptionFor(t *testing.T) {
	o := pass("p", 3, false)
	assert.True(t, o.HasClass("202503021800"))
	assert.False(t, o.HasClass("202512011800"))

	c, ok := o.ConsumptionFor("202503031800")
	assert.True(t, ok)
	assert.False(t, c.Ticked)

	_, ok = o.ConsumptionFor("202512011800")
	assert.False(t, ok)
}

func TestClone(t *testing.T) {
	o := pass("p", 2, true)
	cp := o.Clone()
	cp.Classes[0].Ticked = false
	cp.Status = StatusMissingTicks

	assert.True(t, o.Classes[0].Ticked)
	assert.NotEqual(t, o.Status, cp.Status)
}
