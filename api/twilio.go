package api

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/draftline/draftline/domain"
)

// twimlResponse is the minimal TwiML document Twilio expects back from a
// messaging webhook.
type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// TwilioWhatsApp handles inbound WhatsApp messages from the Twilio
// webhook (form-encoded). It always acknowledges with TwiML so Twilio
// never retries; internal failures are logged, not surfaced.
// POST /twilio/whatsapp
func (h *Handler) TwilioWhatsApp(c echo.Context) error {
	sender := c.FormValue("From")
	if sender == "" {
		sender = c.FormValue("WaId")
	}
	if sender == "" {
		sender = "unknown"
	}

	var messages []string
	if body := c.FormValue("Body"); body != "" {
		messages = append(messages, body)
	}

	numMedia, err := strconv.Atoi(c.FormValue("NumMedia"))
	if err != nil || numMedia < 0 {
		numMedia = 0
	}
	var attachments []string
	for i := 0; i < numMedia; i++ {
		if url := c.FormValue(fmt.Sprintf("MediaUrl%d", i)); url != "" {
			attachments = append(attachments, url)
		}
	}

	draft, err := h.ingestDraft(c.Request().Context(), domain.SourceWhatsApp, sender, messages, attachments)
	if err != nil {
		h.logger.Warn("whatsapp draft ingestion failed", zap.Error(err))
		return respondTwiML(c, "Could not create a draft from this message.")
	}
	if draft == nil {
		return respondTwiML(c, "Nothing to triage in this message.")
	}

	reply := fmt.Sprintf("Draft created (#%s)\nTitle: %s\nPriority: %s\nTags: %s",
		draft.ID, draft.Draft.Title, draft.Draft.Priority, strings.Join(draft.Draft.Tags, ", "))
	if draft.Status == domain.DraftStatusFiled {
		reply += "\nFiled as " + draft.IssueKey
	}
	return respondTwiML(c, reply)
}

func respondTwiML(c echo.Context, message string) error {
	out, err := xml.Marshal(twimlResponse{Message: message})
	if err != nil {
		return c.NoContent(http.StatusOK)
	}
	return c.Blob(http.StatusOK, "text/xml", append([]byte(xml.Header), out...))
}
