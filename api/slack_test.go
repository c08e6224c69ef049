package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftline/draftline/api"
	"github.com/draftline/draftline/domain"
)

func postSlack(t *testing.T, h *api.Handler, payload string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.SlackEvents(c))
	return rec
}

func TestSlackURLVerification(t *testing.T) {
	h, _ := newTestHandler(t, "http://jira.invalid")

	rec := postSlack(t, h, `{"type":"url_verification","challenge":"abc123"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "abc123", body["challenge"])
}

func TestSlackMessageStored(t *testing.T) {
	h, db := newTestHandler(t, "http://jira.invalid")

	rec := postSlack(t, h, `{
		"type": "event_callback",
		"event": {"type":"message","text":"prod deploy is failing","user":"U123","channel":"C456"}
	}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	drafts, err := db.List(context.Background(), domain.SourceSlack)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "U123", drafts[0].Sender)
	assert.Equal(t, []string{"prod deploy is failing"}, drafts[0].Messages)
	assert.Equal(t, domain.PriorityHigh, drafts[0].Draft.Priority)
}

func TestSlackBotMessageIgnored(t *testing.T) {
	h, db := newTestHandler(t, "http://jira.invalid")

	rec := postSlack(t, h, `{
		"type": "event_callback",
		"event": {"type":"message","text":"I filed TEST-1","user":"U123","bot_id":"B789"}
	}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	drafts, err := db.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestSlackNonMessageEventIgnored(t *testing.T) {
	h, db := newTestHandler(t, "http://jira.invalid")

	rec := postSlack(t, h, `{
		"type": "event_callback",
		"event": {"type":"reaction_added","user":"U123"}
	}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	drafts, err := db.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, drafts)
}
