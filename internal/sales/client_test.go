package sales

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "25-26", r.URL.Query().Get("year"))
		w.Write([]byte(`[{"ID":47764},{"ID":50311}]`))
	}))
	defer srv.Close()

	ids, err := NewClient(srv.URL).Products(context.Background(), "25-26")
	require.NoError(t, err)
	assert.Equal(t, []int{47764, 50311}, ids)
}

func TestClientSalesForProduct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/47764/sales", r.URL.Path)
		w.Write([]byte(`[{"OrderNumber":"A1","SaleDateTime":"2026-03-05 18:30:00","ProductID":47764,"ProductLineID":79740,"Quantity":2,"Customer":{"Login":"jdoe","FirstName":"Jane","Surname":"Doe"}}]`))
	}))
	defer srv.Close()

	sales, err := NewClient(srv.URL).SalesForProduct(context.Background(), 47764)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "A1", sales[0].OrderNumber)
	assert.Equal(t, 2, sales[0].Quantity)
	assert.Equal(t, "jdoe", sales[0].Customer.Login)
}

func TestClientRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).SalesForProduct(context.Background(), 1)
	assert.Error(t, err)
}
