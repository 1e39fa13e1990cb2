package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/studiolotus/yoga-attendance/internal/repository"
)

const searchLimit = 25

// SearchStudents returns students whose login or name matches the q
// parameter, without their order ledgers.  Used by the add-participant
// dialog.
func (h *StudioHandler) SearchStudents(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "q required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	students, err := h.Students.Search(ctx, q, searchLimit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	out := make([]studentView, 0, len(students))
	for i := range students {
		out = append(out, *viewStudent(&students[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// GetStudent returns one student with all orders and the missing-tick
// total.
func (h *StudioHandler) GetStudent(c echo.Context) error {
	login := c.Param("login")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	st, err := h.Students.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "student not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load student failed"})
	}
	return c.JSON(http.StatusOK, viewStudent(st))
}
