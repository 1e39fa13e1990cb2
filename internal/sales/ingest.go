package sales

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/studiolotus/yoga-attendance/internal/model"
	"github.com/studiolotus/yoga-attendance/internal/repository"
)

// Ingestor pulls new sales from the point-of-sale proxy and writes the
// resulting orders and students.  Only sales strictly after the stored
// watermark are ingested; the watermark advances to the sync start
// time once the pass finishes.
type Ingestor struct {
	client   *Client
	students *repository.StudentRepo
	orders   *repository.OrderRepo
	sync     *repository.SyncRepo
}

// NewIngestor wires the ingestion pipeline.
func NewIngestor(client *Client, students *repository.StudentRepo, orders *repository.OrderRepo, sync *repository.SyncRepo) *Ingestor {
	return &Ingestor{client: client, students: students, orders: orders, sync: sync}
}

// Summary reports what one sync pass did.
type Summary struct {
	SalesSeen       int       `json:"sales_seen"`
	OrdersCreated   int       `json:"orders_created"`
	StudentsCreated int       `json:"students_created"`
	LastUpdated     time.Time `json:"last_updated"`
}

// Run executes one sync pass.  A failure fetching one product's sales
// skips that product and keeps going, like a partial CSV import would;
// a failure reading or advancing the watermark aborts.
func (i *Ingestor) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	since, err := i.sync.GetLastUpdated(ctx)
	if err != nil {
		return sum, fmt.Errorf("read sync watermark: %w", err)
	}
	started := time.Now().UTC()

	ids, err := i.client.Products(ctx, AcademicYearLabel(started))
	if err != nil {
		return sum, fmt.Errorf("fetch products: %w", err)
	}
	// Evergreen products sold across academic years.
	ids = append(ids, model.ProductTenClassPass, model.ProductSingleClassMember, model.ProductSingleClassNonMember)

	seen := make(map[int]bool)
	for _, productID := range ids {
		if seen[productID] {
			continue
		}
		seen[productID] = true

		salesList, err := i.client.SalesForProduct(ctx, productID)
		if err != nil {
			log.Printf("sales: skipping product %d: %v", productID, err)
			continue
		}
		for _, sale := range salesList {
			at, err := sale.Time()
			if err != nil {
				log.Printf("sales: skipping order %s: %v", sale.OrderNumber, err)
				continue
			}
			if !at.After(since) {
				continue
			}
			sum.SalesSeen++
			for _, unit := range Explode(sale) {
				if err := i.ingestOne(ctx, unit, &sum); err != nil {
					log.Printf("sales: order %s: %v", unit.OrderNumber, err)
				}
			}
		}
	}

	if err := i.sync.SetLastUpdated(ctx, started); err != nil {
		return sum, fmt.Errorf("advance sync watermark: %w", err)
	}
	sum.LastUpdated = started
	return sum, nil
}

// Explode splits a multi-quantity sale into per-unit sales with
// suffixed order numbers ("<order>n<i>"), each of quantity one.
func Explode(s Sale) []Sale {
	if s.Quantity <= 1 {
		return []Sale{s}
	}
	units := make([]Sale, 0, s.Quantity)
	for n := 1; n <= s.Quantity; n++ {
		unit := s
		unit.OrderNumber = fmt.Sprintf("%sn%d", s.OrderNumber, n)
		unit.Quantity = 1
		units = append(units, unit)
	}
	return units
}

// OrderFromSale maps one per-unit sale to a ledger order.  Capacity is
// fixed here: ten for the ten-class pass, zero for memberships, one
// for everything else; a fresh pass starts InUse.
func OrderFromSale(s Sale) *model.Order {
	numTotal := 1
	status := model.StatusNotApplicable
	switch s.ProductID {
	case model.ProductTenClassPass:
		numTotal = 10
		status = model.StatusInUse
	case model.ProductMembership:
		numTotal = 0
	}
	return &model.Order{
		ID:            s.OrderNumber,
		ProductID:     s.ProductID,
		ProductLineID: s.ProductLineID,
		NumTotal:      numTotal,
		Status:        status,
	}
}

func (i *Ingestor) ingestOne(ctx context.Context, s Sale, sum *Summary) error {
	login := s.Customer.Login
	if login == "" {
		// An order without an owner is unreachable from any roster;
		// nothing could ever consume it.
		log.Printf("sales: order %s has no customer login, skipped", s.OrderNumber)
		return nil
	}

	isMembership := s.ProductID == model.ProductMembership && s.ProductLineID == model.LineMembership
	created, err := i.students.CreateIfAbsent(ctx, &model.Student{
		Login:     login,
		CID:       s.Customer.CID,
		FirstName: s.Customer.FirstName,
		Surname:   s.Customer.Surname,
		Email:     s.Customer.Email,
		IsMember:  isMembership,
	})
	if err != nil {
		return fmt.Errorf("create student %s: %w", login, err)
	}
	if created {
		sum.StudentsCreated++
	} else if isMembership {
		if err := i.students.SetMember(ctx, login, true); err != nil {
			return fmt.Errorf("set member %s: %w", login, err)
		}
	}

	orderCreated, err := i.orders.CreateIfAbsent(ctx, login, OrderFromSale(s))
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	if orderCreated {
		sum.OrdersCreated++
	}
	return nil
}
