package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/draftline/draftline/domain"
)

// Parse converts raw messages into a task draft and returns it without
// storing it; manual-source drafts are reviewed client-side.
// POST /parse
func (h *Handler) Parse(c echo.Context) error {
	var req domain.ParseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	draft, err := h.extractor.Extract(c.Request().Context(), domain.SourceManual, req.Messages, req.Attachments)
	if err != nil {
		// The chain falls back to the heuristic extractor, so this only
		// fires with a bare AI extractor wired in.
		h.logger.Error("extraction failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "extraction failed"})
	}

	return c.JSON(http.StatusOK, draft)
}
