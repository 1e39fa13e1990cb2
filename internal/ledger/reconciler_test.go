package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiolotus/yoga-attendance/internal/model"
)

type storeOp struct {
	Op      string
	OrderID string
	Status  model.ClassPassStatus
}

// fakeStore records every write the reconciler issues and can be told
// to fail a given operation kind.
type fakeStore struct {
	ops    []storeOp
	failOp string
}

func (f *fakeStore) record(op, orderID string, status model.ClassPassStatus) error {
	if f.failOp == op {
		return errors.New("store unavailable")
	}
	f.ops = append(f.ops, storeOp{Op: op, OrderID: orderID, Status: status})
	return nil
}

func (f *fakeStore) AppendConsumption(_ context.Context, orderID string, _ model.Consumption, status model.ClassPassStatus) error {
	return f.record("append", orderID, status)
}

func (f *fakeStore) RemoveConsumption(_ context.Context, orderID string, _ model.ClassRef, status model.ClassPassStatus) error {
	return f.record("remove", orderID, status)
}

func (f *fakeStore) SetConsumptionTicked(_ context.Context, orderID string, _ model.ClassRef, _ bool, status model.ClassPassStatus) error {
	return f.record("tick", orderID, status)
}

func (f *fakeStore) UpdateStatus(_ context.Context, orderID string, status model.ClassPassStatus) error {
	return f.record("status", orderID, status)
}

func touchedIDs(orders []*model.Order) []string {
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	return ids
}

// passWithLast builds a ten-class pass holding n entries.  The first
// n-1 entries are ticked January classes; the last entry uses the
// given ref and ticked flag.
func passWithLast(id string, n int, last model.ClassRef, lastTicked bool) *model.Order {
	o := &model.Order{
		ID:            id,
		ProductID:     model.ProductTenClassPass,
		ProductLineID: model.LineTenClassPass,
		NumTotal:      10,
	}
	for i := 1; i < n; i++ {
		o.Classes = append(o.Classes, model.Consumption{
			Class:  model.ClassRef(fmt.Sprintf("202501%02d1800", i)),
			Ticked: true,
		})
	}
	if n > 0 {
		o.Classes = append(o.Classes, model.Consumption{Class: last, Ticked: lastTicked})
	}
	o.SortClasses()
	o.Status = o.CalculateStatus()
	return o
}

func classAt(ref model.ClassRef) *model.Class {
	return &model.Class{ID: ref, Time: ref.Time(), ValidTickets: model.DefaultTickets}
}

func TestAttendFillsPass(t *testing.T) {
	// Nine used, last entry unticked, status InUse.  Attending class
	// ten inserts a ticked entry at the end, so the pass settles.
	p := passWithLast("p1", 9, "202502011800", false)
	require.Equal(t, model.StatusInUse, p.Status)

	st := &model.Student{Login: "abc123", Orders: []*model.Order{p}}
	store := &fakeStore{}
	rec := NewReconciler(store)

	touched, err := rec.SetAttendance(context.Background(), st, classAt("202503011800"), true)
	require.NoError(t, err)

	assert.Equal(t, []string{"p1"}, touchedIDs(touched))
	assert.Len(t, p.Classes, 10)
	assert.Equal(t, model.StatusAllTicked, p.Status)
	require.Len(t, store.ops, 1)
	assert.Equal(t, storeOp{Op: "append", OrderID: "p1", Status: model.StatusAllTicked}, store.ops[0])
}

func TestAttendSettlesOlderPasses(t *testing.T) {
	old := passWithLast("old", 10, "202502011800", false) // full, MissingTicks, last use in February
	cur := passWithLast("cur", 3, "202504011800", true)   // in use, last use in April
	newer := passWithLast("newer", 10, "202506011800", false)
	require.Equal(t, model.StatusMissingTicks, old.Status)
	require.Equal(t, model.StatusMissingTicks, newer.Status)

	st := &model.Student{Login: "abc123", Orders: []*model.Order{old, cur, newer}}
	store := &fakeStore{}
	rec := NewReconciler(store)

	touched, err := rec.SetAttendance(context.Background(), st, classAt("202505011800"), true)
	require.NoError(t, err)

	// The charged pass plus the strictly older MissingTicks pass; the
	// newer pass is out of the correction's reach.
	assert.Equal(t, []string{"cur", "old"}, touchedIDs(touched))
	assert.Equal(t, model.StatusAllTicked, old.Status)
	assert.Equal(t, model.StatusMissingTicks, newer.Status)
	require.Len(t, store.ops, 2)
	assert.Equal(t, storeOp{Op: "status", OrderID: "old", Status: model.StatusAllTicked}, store.ops[1])
}

func TestAttendNoTicket(t *testing.T) {
	membership := &model.Order{ID: "m1", ProductID: model.ProductMembership, ProductLineID: model.LineMembership, NumTotal: 0}
	st := &model.Student{Login: "abc123", Orders: []*model.Order{membership}}
	store := &fakeStore{}
	rec := NewReconciler(store)

	_, err := rec.SetAttendance(context.Background(), st, classAt("202503011800"), true)

	var noTicket *NoTicketError
	require.ErrorAs(t, err, &noTicket)
	assert.Equal(t, "abc123", noTicket.Login)
	assert.Equal(t, model.ClassRef("202503011800"), noTicket.Class)
	assert.Empty(t, store.ops, "no mutation may be attempted")
}

func TestUnattendReturnsEntry(t *testing.T) {
	classID := model.ClassRef("202503011800")
	p := passWithLast("p1", 10, classID, true)
	require.Equal(t, model.StatusAllTicked, p.Status)

	st := &model.Student{Login: "abc123", Orders: []*model.Order{p}}
	store := &fakeStore{}
	rec := NewReconciler(store)

	touched, err := rec.SetAttendance(context.Background(), st, classAt(classID), false)
	require.NoError(t, err)

	assert.Equal(t, []string{"p1"}, touchedIDs(touched))
	assert.Len(t, p.Classes, 9)
	assert.False(t, p.HasClass(classID))
	assert.Equal(t, model.StatusInUse, p.Status)
	require.Len(t, store.ops, 1)
	assert.Equal(t, storeOp{Op: "remove", OrderID: "p1", Status: model.StatusInUse}, store.ops[0])
}

func TestUnattendRevisitsOptimisticallySettledPass(t *testing.T) {
	classID := model.ClassRef("202505011800")
	cur := passWithLast("cur", 3, classID, true)
	// Promoted to AllTicked by an earlier correction even though its
	// own last entry was never ticked.
	old := passWithLast("old", 10, "202502011800", false)
	old.Status = model.StatusAllTicked

	st := &model.Student{Login: "abc123", Orders: []*model.Order{cur, old}}
	store := &fakeStore{}
	rec := NewReconciler(store)

	touched, err := rec.SetAttendance(context.Background(), st, classAt(classID), false)
	require.NoError(t, err)

	assert.Equal(t, []string{"cur", "old"}, touchedIDs(touched))
	assert.Equal(t, model.StatusMissingTicks, old.Status)
}

func TestSetPassMissingDemotesCurrentOnly(t *testing.T) {
	// Scenario: current pass full and settled, the flag is raised on
	// its newest class.  An older exhausted pass with unresolved ticks
	// is not promoted by this transition.
	classID := model.ClassRef("202505011800")
	cur := passWithLast("cur", 10, classID, true)
	old := passWithLast("old", 10, "202502011800", false)
	require.Equal(t, model.StatusAllTicked, cur.Status)
	require.Equal(t, model.StatusMissingTicks, old.Status)

	st := &model.Student{Login: "abc123", Orders: []*model.Order{cur, old}}
	store := &fakeStore{}
	rec := NewReconciler(store)

	touched, err := rec.SetPassMissing(context.Background(), st, classAt(classID), true)
	require.NoError(t, err)

	assert.Equal(t, []string{"cur"}, touchedIDs(touched))
	assert.Equal(t, model.StatusMissingTicks, cur.Status)
	assert.Equal(t, model.StatusMissingTicks, old.Status)
	require.Len(t, store.ops, 1)
	assert.Equal(t, storeOp{Op: "tick", OrderID: "cur", Status: model.StatusMissingTicks}, store.ops[0])
}

func TestSetPassMissingDemotesOlderDependentPasses(t *testing.T) {
	classID := model.ClassRef("202505011800")
	cur := passWithLast("cur", 10, classID, true)
	// Settled optimistically, its own last entry unticked.
	optimistic := passWithLast("optimistic", 10, "202502011800", false)
	optimistic.Status = model.StatusAllTicked
	// Genuinely settled pass: last entry ticked, stays AllTicked.
	settled := passWithLast("settled", 10, "202503011800", true)

	st := &model.Student{Login: "abc123", Orders: []*model.Order{cur, optimistic, settled}}
	store := &fakeStore{}
	rec := NewReconciler(store)

	touched, err := rec.SetPassMissing(context.Background(), st, classAt(classID), true)
	require.NoError(t, err)

	assert.Equal(t, []string{"cur", "optimistic"}, touchedIDs(touched))
	assert.Equal(t, model.StatusMissingTicks, optimistic.Status)
	assert.Equal(t, model.StatusAllTicked, settled.Status)
}

func TestSetPassMissingFalsePromotesOlderPasses(t *testing.T) {
	classID := model.ClassRef("202505011800")
	cur := passWithLast("cur", 10, classID, false) // full, last entry unticked
	old := passWithLast("old", 10, "202502011800", false)
	require.Equal(t, model.StatusMissingTicks, cur.Status)

	st := &model.Student{Login: "abc123", Orders: []*model.Order{cur, old}}
	store := &fakeStore{}
	rec := NewReconciler(store)

	touched, err := rec.SetPassMissing(context.Background(), st, classAt(classID), false)
	require.NoError(t, err)

	assert.Equal(t, []string{"cur", "old"}, touchedIDs(touched))
	assert.Equal(t, model.StatusAllTicked, cur.Status)
	assert.Equal(t, model.StatusAllTicked, old.Status)
	require.Len(t, store.ops, 2)
	assert.Equal(t, storeOp{Op: "tick", OrderID: "cur", Status: model.StatusAllTicked}, store.ops[0])
	assert.Equal(t, storeOp{Op: "status", OrderID: "old", Status: model.StatusAllTicked}, store.ops[1])
}

func TestSetPassMissingEntryAbsent(t *testing.T) {
	p := passWithLast("p1", 2, "202502011800", true)
	st := &model.Student{Login: "abc123", Orders: []*model.Order{p}}
	store := &fakeStore{}
	rec := NewReconciler(store)

	_, err := rec.SetPassMissing(context.Background(), st, classAt("202512011800"), true)

	var notFound *ConsumptionNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "p1", notFound.OrderID)
	assert.Empty(t, store.ops)
}

func TestAttendPersistFailure(t *testing.T) {
	p := passWithLast("p1", 2, "202502011800", true)
	st := &model.Student{Login: "abc123", Orders: []*model.Order{p}}
	store := &fakeStore{failOp: "append"}
	rec := NewReconciler(store)

	touched, err := rec.SetAttendance(context.Background(), st, classAt("202503011800"), true)

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "p1", storeErr.OrderID)
	assert.Empty(t, touched)
}

func TestRetroactiveCorrectionFailureReportsPartialSet(t *testing.T) {
	old := passWithLast("old", 10, "202502011800", false)
	cur := passWithLast("cur", 3, "202504011800", true)
	st := &model.Student{Login: "abc123", Orders: []*model.Order{old, cur}}
	store := &fakeStore{failOp: "status"}
	rec := NewReconciler(store)

	touched, err := rec.SetAttendance(context.Background(), st, classAt("202505011800"), true)

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "old", storeErr.OrderID)
	// The charged order was already persisted before the correction
	// failed; the caller sees exactly what was written.
	assert.Equal(t, []string{"cur"}, touchedIDs(touched))
}
