package handler // handler defines http handlers

import (
	"errors"  // errors provides sentinel values used in getUserID
	"strconv" // strconv converts strings to numeric types

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/studiolotus/yoga-attendance/internal/ledger"     // ledger runs attendance reconciliation
	"github.com/studiolotus/yoga-attendance/internal/model"      // model holds domain types
	"github.com/studiolotus/yoga-attendance/internal/repository" // repository holds data access layer
	"github.com/studiolotus/yoga-attendance/internal/sales"      // sales ingests point-of-sale data
)

// StudioHandler bundles the repositories and services coordinators use
// to run classes: the schedule, the roster, student ledgers and the
// point-of-sale sync.
type StudioHandler struct {
	Classes      *repository.ClassRepo
	Students     *repository.StudentRepo
	Participants *repository.ParticipantRepo
	Orders       *repository.OrderRepo
	Sync         *repository.SyncRepo
	Reconciler   *ledger.Reconciler
	Ingestor     *sales.Ingestor
}

// NewStudioHandler constructs a new StudioHandler and panics if any dependency is nil
func NewStudioHandler(classes *repository.ClassRepo, students *repository.StudentRepo, participants *repository.ParticipantRepo, orders *repository.OrderRepo, sync *repository.SyncRepo, rec *ledger.Reconciler, ing *sales.Ingestor) *StudioHandler {
	if classes == nil || students == nil || participants == nil || orders == nil || sync == nil || rec == nil || ing == nil {
		panic("nil dependency passed to NewStudioHandler")
	}
	return &StudioHandler{
		Classes:      classes,
		Students:     students,
		Participants: participants,
		Orders:       orders,
		Sync:         sync,
		Reconciler:   rec,
		Ingestor:     ing,
	}
}

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// ----- JSON views -----

type consumptionView struct {
	Class  string `json:"class"`
	Ticked bool   `json:"ticked"`
}

type orderView struct {
	ID            string                `json:"id"`
	ProductID     int                   `json:"product_id"`
	ProductLineID int                   `json:"product_line_id"`
	NumTotal      int                   `json:"num_total"`
	Status        model.ClassPassStatus `json:"status"`
	MissingTicks  int                   `json:"missing_ticks"`
	Classes       []consumptionView     `json:"classes"`
}

type studentView struct {
	Login             string      `json:"login"`
	CID               string      `json:"cid"`
	FirstName         string      `json:"first_name"`
	Surname           string      `json:"surname"`
	Email             string      `json:"email"`
	IsMember          bool        `json:"is_member"`
	TotalMissingTicks int         `json:"total_missing_ticks"`
	Orders            []orderView `json:"orders"`
}

type participantView struct {
	Login            string       `json:"login"`
	Attended         bool         `json:"attended"`
	MissingClassPass bool         `json:"missing_class_pass"`
	Student          *studentView `json:"student,omitempty"`
}

func viewOrder(o *model.Order) orderView {
	v := orderView{
		ID:            o.ID,
		ProductID:     o.ProductID,
		ProductLineID: o.ProductLineID,
		NumTotal:      o.NumTotal,
		Status:        o.Status,
		MissingTicks:  o.NumberMissingTicks(),
		Classes:       make([]consumptionView, 0, len(o.Classes)),
	}
	for _, c := range o.Classes {
		v.Classes = append(v.Classes, consumptionView{Class: string(c.Class), Ticked: c.Ticked})
	}
	return v
}

func viewStudent(s *model.Student) *studentView {
	if s == nil {
		return nil
	}
	v := &studentView{
		Login:             s.Login,
		CID:               s.CID,
		FirstName:         s.FirstName,
		Surname:           s.Surname,
		Email:             s.Email,
		IsMember:          s.IsMember,
		TotalMissingTicks: s.TotalMissingTicks(),
		Orders:            make([]orderView, 0, len(s.Orders)),
	}
	for _, o := range s.Orders {
		v.Orders = append(v.Orders, viewOrder(o))
	}
	return v
}

func viewParticipant(p model.Participant) participantView {
	return participantView{
		Login:            p.Login,
		Attended:         p.Attended,
		MissingClassPass: p.MissingClassPass,
		Student:          viewStudent(p.Student),
	}
}
