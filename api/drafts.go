package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/draftline/draftline/adf"
	"github.com/draftline/draftline/domain"
	"github.com/draftline/draftline/jira"
	"github.com/draftline/draftline/store"
)

// creationDetails surfaces the upstream error body verbatim when the
// tracker rejected the payload, and the transport error otherwise.
func creationDetails(err error) string {
	var ce *jira.CreationError
	if errors.As(err, &ce) {
		return ce.Body
	}
	return err.Error()
}

// draftDescription renders a draft's description as the tracker's rich
// document representation.
func draftDescription(draft *domain.Draft) adf.Doc {
	return adf.FromText(draft.Draft.Description)
}

// ListDrafts returns stored drafts in insertion order.
// GET /drafts?source=whatsapp
func (h *Handler) ListDrafts(c echo.Context) error {
	ctx := c.Request().Context()
	source := domain.Source(c.QueryParam("source"))

	drafts, err := h.store.List(ctx, source)
	if err != nil {
		h.logger.Error("failed to list drafts", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list drafts"})
	}

	return c.JSON(http.StatusOK, drafts)
}

// GetDraft returns a single draft.
// GET /drafts/:id
func (h *Handler) GetDraft(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	draft, err := h.store.Get(ctx, id)
	if err != nil {
		h.logger.Error("failed to get draft", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get draft"})
	}
	if draft == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "draft not found"})
	}

	return c.JSON(http.StatusOK, draft)
}

// UpdateDraft applies review edits to a pending draft's extracted
// fields, re-normalizing the priority and tag invariants.
// PUT /drafts/:id
func (h *Handler) UpdateDraft(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	var req domain.TaskDraft
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	draft, err := h.store.Get(ctx, id)
	if err != nil {
		h.logger.Error("failed to get draft", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get draft"})
	}
	if draft == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "draft not found"})
	}
	if draft.Status != domain.DraftStatusPending {
		return c.JSON(http.StatusConflict, map[string]string{"error": "draft already " + string(draft.Status)})
	}

	req.Normalize()
	draft.Draft = &req
	if err := h.store.Update(ctx, draft); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "draft not found"})
		}
		h.logger.Error("failed to update draft", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update draft"})
	}

	return c.JSON(http.StatusOK, draft)
}

// ApproveDraft consumes a pending draft: it files the issue with the
// tracker and marks the draft filed. A draft is consumed at most once.
// POST /drafts/:id/approve
func (h *Handler) ApproveDraft(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	draft, err := h.store.Get(ctx, id)
	if err != nil {
		h.logger.Error("failed to get draft", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get draft"})
	}
	if draft == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "draft not found"})
	}
	if draft.Status != domain.DraftStatusPending {
		return c.JSON(http.StatusConflict, map[string]string{"error": "draft already " + string(draft.Status)})
	}

	ref, err := h.fileDraft(ctx, draft)
	if err != nil {
		h.logger.Error("jira creation failed", zap.String("draft_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "Jira creation failed",
			"details": creationDetails(err),
		})
	}

	return c.JSON(http.StatusOK, ref)
}

// CreateJira files an issue directly from a draft payload, used by the
// review UI for manual-source drafts that were never stored.
// POST /create-jira
func (h *Handler) CreateJira(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.CreateIssueRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	ref, err := h.jira.CreateIssue(ctx, req.Title, adf.FromText(req.Description), domain.NormalizePriority(req.Priority), req.Tags)
	if err != nil {
		h.logger.Error("jira creation failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "Jira creation failed",
			"details": creationDetails(err),
		})
	}

	return c.JSON(http.StatusOK, ref)
}
