package sales

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiolotus/yoga-attendance/internal/model"
)

func TestExplodeSingleUnit(t *testing.T) {
	s := Sale{OrderNumber: "A100", Quantity: 1}
	units := Explode(s)
	require.Len(t, units, 1)
	assert.Equal(t, "A100", units[0].OrderNumber)
}

func TestExplodeMultiQuantity(t *testing.T) {
	s := Sale{OrderNumber: "A100", ProductID: model.ProductTenClassPass, Quantity: 3}
	units := Explode(s)
	require.Len(t, units, 3)
	assert.Equal(t, "A100n1", units[0].OrderNumber)
	assert.Equal(t, "A100n2", units[1].OrderNumber)
	assert.Equal(t, "A100n3", units[2].OrderNumber)
	for _, u := range units {
		assert.Equal(t, 1, u.Quantity)
		assert.Equal(t, model.ProductTenClassPass, u.ProductID)
	}
}

func TestOrderFromSale(t *testing.T) {
	pass := OrderFromSale(Sale{OrderNumber: "P1", ProductID: model.ProductTenClassPass, ProductLineID: model.LineTenClassPass})
	assert.Equal(t, 10, pass.NumTotal)
	assert.Equal(t, model.StatusInUse, pass.Status)

	membership := OrderFromSale(Sale{OrderNumber: "M1", ProductID: model.ProductMembership})
	assert.Equal(t, 0, membership.NumTotal)
	assert.Equal(t, model.StatusNotApplicable, membership.Status)

	single := OrderFromSale(Sale{OrderNumber: "S1", ProductID: model.ProductSingleClassMember})
	assert.Equal(t, 1, single.NumTotal)
	assert.Equal(t, model.StatusNotApplicable, single.Status)
}

func TestSaleTimeFormats(t *testing.T) {
	for _, raw := range []string{
		"2026-03-05T18:30:00Z",
		"2026-03-05T18:30:00",
		"2026-03-05 18:30:00",
	} {
		s := Sale{SaleDateTime: raw}
		at, err := s.Time()
		require.NoError(t, err, raw)
		assert.Equal(t, 2026, at.Year())
		assert.Equal(t, 18, at.Hour())
	}

	_, err := Sale{SaleDateTime: "yesterday"}.Time()
	assert.Error(t, err)
}
