package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/draftline/draftline/domain"
)

// slackEvent is the subset of the Slack Events API envelope we consume.
type slackEvent struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	Event     struct {
		Type    string `json:"type"`
		Text    string `json:"text"`
		User    string `json:"user"`
		BotID   string `json:"bot_id"`
		Channel string `json:"channel"`
	} `json:"event"`
}

// SlackEvents handles the Slack Events API, including the one-time
// url_verification handshake. Message events from users become stored
// drafts; bot-originated events are skipped. Slack always gets a 200 so
// it never enters a retry storm.
// POST /slack/events
func (h *Handler) SlackEvents(c echo.Context) error {
	var ev slackEvent
	if err := c.Bind(&ev); err != nil {
		h.logger.Warn("invalid slack payload", zap.Error(err))
		return c.NoContent(http.StatusOK)
	}

	if ev.Type == "url_verification" {
		return c.JSON(http.StatusOK, map[string]string{"challenge": ev.Challenge})
	}

	if ev.Type == "event_callback" && ev.Event.Type == "message" && ev.Event.BotID == "" && ev.Event.Text != "" {
		sender := ev.Event.User
		if sender == "" {
			sender = "unknown"
		}
		if _, err := h.ingestDraft(c.Request().Context(), domain.SourceSlack, sender, []string{ev.Event.Text}, nil); err != nil {
			h.logger.Warn("slack draft ingestion failed", zap.Error(err))
		}
	}

	return c.NoContent(http.StatusOK)
}
