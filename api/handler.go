// Package api provides HTTP handlers for the triage service.
package api

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/draftline/draftline/domain"
	"github.com/draftline/draftline/extract"
	"github.com/draftline/draftline/hub"
	"github.com/draftline/draftline/jira"
	"github.com/draftline/draftline/policy"
	"github.com/draftline/draftline/store"
)

// Handler handles HTTP requests.
type Handler struct {
	store     store.Store
	extractor extract.Extractor
	jira      *jira.Client
	policy    *policy.Engine
	feed      *hub.Hub
	logger    *zap.Logger
	upgrader  websocket.Upgrader
}

// NewHandler creates a new handler.
func NewHandler(st store.Store, extractor extract.Extractor, jiraClient *jira.Client, policyEngine *policy.Engine, feed *hub.Hub, logger *zap.Logger) *Handler {
	return &Handler{
		store:     st,
		extractor: extractor,
		jira:      jiraClient,
		policy:    policyEngine,
		feed:      feed,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// The review UI is served from another origin.
				return true
			},
		},
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Review UI API
	e.POST("/parse", h.Parse)
	e.POST("/create-jira", h.CreateJira)
	e.GET("/drafts", h.ListDrafts)
	e.GET("/drafts/:id", h.GetDraft)
	e.PUT("/drafts/:id", h.UpdateDraft)
	e.POST("/drafts/:id/approve", h.ApproveDraft)
	e.GET("/ws", h.DraftFeed)

	// Inbound webhooks
	e.POST("/twilio/whatsapp", h.TwilioWhatsApp)
	e.POST("/slack/events", h.SlackEvents)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// ingestDraft runs the extraction chain, applies the triage policy, and
// stores the draft. A nil draft with nil error means the policy
// discarded the payload.
func (h *Handler) ingestDraft(ctx context.Context, source domain.Source, sender string, messages, attachments []string) (*domain.Draft, error) {
	extracted, err := h.extractor.Extract(ctx, source, messages, attachments)
	if err != nil {
		return nil, err
	}

	decision := policy.DecisionReview
	if h.policy != nil {
		decision, err = h.policy.Evaluate(ctx, policy.Input{
			Source:      string(source),
			Sender:      sender,
			Priority:    string(extracted.Priority),
			Tags:        extracted.Tags,
			Messages:    messages,
			Attachments: attachments,
		})
		if err != nil {
			h.logger.Warn("triage policy evaluation failed", zap.Error(err))
		}
	}

	if decision == policy.DecisionDiscard {
		h.logger.Info("draft discarded by policy",
			zap.String("source", string(source)),
			zap.String("sender", sender))
		return nil, nil
	}

	draft := &domain.Draft{
		Source:      source,
		Sender:      sender,
		Messages:    messages,
		Attachments: attachments,
		Draft:       extracted,
	}

	id, err := h.store.Create(ctx, draft)
	if err != nil {
		return nil, err
	}
	h.feed.Publish(hub.EventDraftCreated, draft)

	if decision == policy.DecisionAutoFile {
		if _, err := h.fileDraft(ctx, draft); err != nil {
			// Draft stays pending; a human can still approve it.
			h.logger.Warn("auto-file failed, draft parked for review",
				zap.String("draft_id", id),
				zap.Error(err))
		}
	}

	return draft, nil
}

// fileDraft creates the tracker issue for a draft and marks it filed.
func (h *Handler) fileDraft(ctx context.Context, draft *domain.Draft) (*domain.IssueRef, error) {
	ref, err := h.jira.CreateIssue(ctx, draft.Draft.Title, draftDescription(draft), draft.Draft.Priority, draft.Draft.Tags)
	if err != nil {
		return nil, err
	}

	draft.Status = domain.DraftStatusFiled
	draft.IssueKey = ref.Key
	draft.IssueURL = ref.Self
	if err := h.store.Update(ctx, draft); err != nil {
		h.logger.Warn("failed to record filed draft", zap.String("draft_id", draft.ID), zap.Error(err))
	}
	h.feed.Publish(hub.EventDraftFiled, draft)

	return ref, nil
}
