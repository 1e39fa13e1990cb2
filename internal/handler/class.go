package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/studiolotus/yoga-attendance/internal/model"
	"github.com/studiolotus/yoga-attendance/internal/repository"
)

// ----- DTOs -----

type createClassReq struct {
	Time         time.Time          `json:"time"`
	Notes        string             `json:"notes"`
	ValidTickets []model.TicketType `json:"valid_tickets"`
}

type classSummary struct {
	ID    string    `json:"id"`
	Time  time.Time `json:"time"`
	Notes string    `json:"notes"`
}

type classDetail struct {
	ID           string             `json:"id"`
	Time         time.Time          `json:"time"`
	Notes        string             `json:"notes"`
	ValidTickets []model.TicketType `json:"valid_tickets"`
	Participants []participantView  `json:"participants"`
}

type notesReq struct {
	Notes string `json:"notes"`
}

type addParticipantReq struct {
	Login string `json:"login"`
}

// ListClasses returns the schedule in one of three windows relative to
// the current week: past, week (default) or future.
func (h *StudioHandler) ListClasses(c echo.Context) error {
	window := c.QueryParam("range")
	switch window {
	case "":
		window = "week"
	case "past", "week", "future":
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "range must be past, week or future"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	classes, err := h.Classes.ListRange(ctx, window, time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list classes failed"})
	}
	out := make([]classSummary, 0, len(classes))
	for _, cl := range classes {
		out = append(out, classSummary{ID: string(cl.ID), Time: cl.Time, Notes: cl.Notes})
	}
	return c.JSON(http.StatusOK, out)
}

// GetClass returns one class with its roster; every participant
// carries the full student record so the client can show pass state
// without extra round trips.
func (h *StudioHandler) GetClass(c echo.Context) error {
	id := model.ClassRef(c.Param("id"))
	if !id.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid class id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	cl, err := h.Classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrClassNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "class not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load class failed"})
	}

	participants, err := h.Participants.ListByClass(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load roster failed"})
	}

	detail := classDetail{
		ID:           string(cl.ID),
		Time:         cl.Time,
		Notes:        cl.Notes,
		ValidTickets: cl.ValidTickets,
		Participants: make([]participantView, 0, len(participants)),
	}
	for _, p := range participants {
		st, err := h.Students.GetByLogin(ctx, p.Login)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load student failed"})
		}
		p.Student = st
		detail.Participants = append(detail.Participants, viewParticipant(p))
	}
	return c.JSON(http.StatusOK, detail)
}

// CreateClass creates a class, or merges into the class already
// scheduled at that time.  The body is either plain JSON or a
// multipart form with the same fields plus an optional "roster" CSV
// whose rows are added as participants, creating unknown students on
// the fly.
func (h *StudioHandler) CreateClass(c echo.Context) error {
	var req createClassReq
	var roster []model.Student

	if form, err := c.MultipartForm(); err == nil && form != nil {
		req.Notes = c.FormValue("notes")
		raw := c.FormValue("time")
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "time must be RFC3339"})
		}
		req.Time = t
		req.ValidTickets = model.DefaultTickets
		if files := form.File["roster"]; len(files) > 0 {
			f, err := files[0].Open()
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "roster file unreadable"})
			}
			roster, err = ParseRoster(f)
			f.Close()
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
			}
		}
	} else {
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
		}
	}
	if req.Time.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "time required"})
	}
	if len(req.ValidTickets) == 0 {
		req.ValidTickets = model.DefaultTickets
	}

	cl := &model.Class{
		ID:           model.RefFromTime(req.Time.UTC()),
		Time:         req.Time.UTC(),
		Notes:        req.Notes,
		ValidTickets: req.ValidTickets,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	created, err := h.Classes.CreateOrMerge(ctx, cl)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create class failed"})
	}

	added := 0
	for _, st := range roster {
		stCopy := st
		if _, err := h.Students.CreateIfAbsent(ctx, &stCopy); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create student failed"})
		}
		if err := h.Participants.AddIfAbsent(ctx, cl.ID, st.Login); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "add participant failed"})
		}
		added++
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, echo.Map{
		"id":                 string(cl.ID),
		"created":            created,
		"roster_rows":        len(roster),
		"participants_added": added,
	})
}

// UpdateNotes replaces the notes of a class.  Writing the same text
// again is a valid no-op.
func (h *StudioHandler) UpdateNotes(c echo.Context) error {
	id := model.ClassRef(c.Param("id"))
	if !id.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid class id"})
	}
	var req notesReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Classes.UpdateNotes(ctx, id, req.Notes); err != nil {
		if errors.Is(err, repository.ErrClassNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "class not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update notes failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// AddParticipant puts a student on the roster with attendance off.
func (h *StudioHandler) AddParticipant(c echo.Context) error {
	id := model.ClassRef(c.Param("id"))
	if !id.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid class id"})
	}
	var req addParticipantReq
	if err := c.Bind(&req); err != nil || req.Login == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "login required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Classes.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrClassNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "class not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load class failed"})
	}
	if _, err := h.Students.GetByLogin(ctx, req.Login); err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "student not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load student failed"})
	}

	if err := h.Participants.Add(ctx, id, req.Login); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "already on the roster"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "add participant failed"})
	}
	return c.NoContent(http.StatusCreated)
}
