// Package sales talks to the union point-of-sale proxy and ingests
// new sales into the studio database: orders, the students who bought
// them and the membership flag.
package sales

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Customer is the buyer block attached to every sale.
type Customer struct {
	FirstName string `json:"FirstName"`
	Surname   string `json:"Surname"`
	CID       string `json:"CID"`
	Email     string `json:"Email"`
	Login     string `json:"Login"`
}

// Sale is one sold line as returned by the proxy.  Quantity can be
// above one when several identical products were bought in a single
// order; ingestion explodes those into suffixed order numbers.
type Sale struct {
	OrderNumber       string   `json:"OrderNumber"`
	SaleDateTime      string   `json:"SaleDateTime"`
	ProductID         int      `json:"ProductID"`
	ProductLineID     int      `json:"ProductLineID"`
	Price             float64  `json:"Price"`
	Quantity          int      `json:"Quantity"`
	QuantityCollected int      `json:"QuantityCollected"`
	Customer          Customer `json:"Customer"`
}

// Time parses the sale timestamp.  The proxy is not consistent about
// the format, so both RFC3339 and the plain datetime form are accepted.
func (s Sale) Time() (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s.SaleDateTime); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable sale time %q", s.SaleDateTime)
}

// Client is a thin HTTP client for the point-of-sale proxy.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the proxy at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Products returns the catalog product ids sold in the given academic
// year (label form "YY-YY").
func (c *Client) Products(ctx context.Context, yearLabel string) ([]int, error) {
	var products []struct {
		ID int `json:"ID"`
	}
	url := fmt.Sprintf("%s/products?year=%s", c.baseURL, yearLabel)
	if err := c.getJSON(ctx, url, &products); err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

// SalesForProduct returns all sales of one product.
func (c *Client) SalesForProduct(ctx context.Context, productID int) ([]Sale, error) {
	var sales []Sale
	url := fmt.Sprintf("%s/products/%d/sales", c.baseURL, productID)
	if err := c.getJSON(ctx, url, &sales); err != nil {
		return nil, err
	}
	return sales, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
