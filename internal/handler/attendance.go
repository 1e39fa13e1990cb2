package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/studiolotus/yoga-attendance/internal/ledger"
	"github.com/studiolotus/yoga-attendance/internal/model"
	"github.com/studiolotus/yoga-attendance/internal/queue"
	"github.com/studiolotus/yoga-attendance/internal/repository"
	queue_publisher "github.com/studiolotus/yoga-attendance/internal/service"
)

type attendanceReq struct {
	Attended bool `json:"attended"`
}

type passReq struct {
	Missing bool `json:"missing"`
}

type reconcileResp struct {
	Student *studentView `json:"student"`
	Touched []string     `json:"touched_orders"`
}

// SetAttendance records or reverts a student's attendance on a class
// and settles the resulting ledger changes across the student's
// orders.  Repeating the current state is a no-op.
func (h *StudioHandler) SetAttendance(c echo.Context) error {
	var req attendanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	cl, p, st, errResp := h.loadReconcileTargets(ctx, c)
	if errResp != nil {
		return errResp
	}

	if p.Attended == req.Attended {
		return c.JSON(http.StatusOK, reconcileResp{Student: viewStudent(st), Touched: []string{}})
	}

	touched, err := h.Reconciler.SetAttendance(ctx, st, cl, req.Attended)
	if err != nil {
		var noTicket *ledger.NoTicketError
		if errors.As(err, &noTicket) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "no usable ticket for this class"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reconciliation failed"})
	}

	if err := h.Participants.SetAttended(ctx, cl.ID, p.Login, req.Attended); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save attendance failed"})
	}
	if !req.Attended && p.MissingClassPass {
		// The flag describes an attendance that no longer exists.
		if err := h.Participants.SetMissingClassPass(ctx, cl.ID, p.Login, false); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save attendance failed"})
		}
	}

	h.publishAttendance(c, cl, st, req.Attended, touched)

	return c.JSON(http.StatusOK, reconcileResp{Student: viewStudent(st), Touched: orderIDs(touched)})
}

// SetPassMissing toggles whether the student's physical pass was
// missing at tick time, correcting dependent older passes either way.
func (h *StudioHandler) SetPassMissing(c echo.Context) error {
	var req passReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	cl, p, st, errResp := h.loadReconcileTargets(ctx, c)
	if errResp != nil {
		return errResp
	}

	if p.MissingClassPass == req.Missing {
		return c.JSON(http.StatusOK, reconcileResp{Student: viewStudent(st), Touched: []string{}})
	}

	touched, err := h.Reconciler.SetPassMissing(ctx, st, cl, req.Missing)
	if err != nil {
		var noTicket *ledger.NoTicketError
		var notFound *ledger.ConsumptionNotFoundError
		switch {
		case errors.As(err, &noTicket):
			return c.JSON(http.StatusConflict, echo.Map{"error": "no usable ticket for this class"})
		case errors.As(err, &notFound):
			return c.JSON(http.StatusConflict, echo.Map{"error": "class not charged to the current ticket"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reconciliation failed"})
		}
	}

	if err := h.Participants.SetMissingClassPass(ctx, cl.ID, p.Login, req.Missing); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save pass flag failed"})
	}

	return c.JSON(http.StatusOK, reconcileResp{Student: viewStudent(st), Touched: orderIDs(touched)})
}

// loadReconcileTargets resolves the class, the roster entry and the
// student (orders included) named by the route, or writes the error
// response and returns it.
func (h *StudioHandler) loadReconcileTargets(ctx context.Context, c echo.Context) (*model.Class, model.Participant, *model.Student, error) {
	id := model.ClassRef(c.Param("id"))
	if !id.Valid() {
		return nil, model.Participant{}, nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid class id"})
	}
	login := c.Param("login")

	cl, err := h.Classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrClassNotFound) {
			return nil, model.Participant{}, nil, c.JSON(http.StatusNotFound, echo.Map{"error": "class not found"})
		}
		return nil, model.Participant{}, nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "load class failed"})
	}

	p, err := h.Participants.Get(ctx, id, login)
	if err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return nil, model.Participant{}, nil, c.JSON(http.StatusNotFound, echo.Map{"error": "participant not found"})
		}
		return nil, model.Participant{}, nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "load participant failed"})
	}

	st, err := h.Students.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return nil, model.Participant{}, nil, c.JSON(http.StatusNotFound, echo.Map{"error": "student not found"})
		}
		return nil, model.Participant{}, nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "load student failed"})
	}
	return cl, p, st, nil
}

// publishAttendance emits the domain event after a successful write.
// Broker trouble must never fail the request, so errors are only logged.
func (h *StudioHandler) publishAttendance(c echo.Context, cl *model.Class, st *model.Student, attended bool, touched []*model.Order) {
	uid, _ := getUserID(c)
	orderID := ""
	if len(touched) > 0 {
		orderID = touched[0].ID
	}
	ev := queue.AttendanceRecordedEvent{
		ClassID:      string(cl.ID),
		ClassTime:    cl.Time.Format(time.RFC3339),
		StudentLogin: st.Login,
		StudentName:  st.FirstName + " " + st.Surname,
		Attended:     attended,
		OrderID:      orderID,
		Touched:      orderIDs(touched),
		RecordedBy:   uid,
		RecordedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		if err := queue_publisher.PublishAttendanceRecorded(context.Background(), ev); err != nil {
			log.Printf("attendance event publish failed: %v", err)
		}
	}()
}

func orderIDs(orders []*model.Order) []string {
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	return ids
}
