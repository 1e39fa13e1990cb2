package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// RunSync pulls new sales from the point-of-sale proxy and ingests
// them.  The pass can take a while against a slow proxy, so the
// timeout is generous.
func (h *StudioHandler) RunSync(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Minute)
	defer cancel()

	sum, err := h.Ingestor.Run(ctx)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, sum)
}

// SyncStatus reports when the database was last updated from the
// point-of-sale proxy.  The zero time means no sync has run yet.
func (h *StudioHandler) SyncStatus(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	last, err := h.Sync.GetLastUpdated(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "read watermark failed"})
	}
	resp := echo.Map{"last_updated": nil}
	if !last.IsZero() {
		resp["last_updated"] = last
	}
	return c.JSON(http.StatusOK, resp)
}
