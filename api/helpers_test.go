package api_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/draftline/draftline/api"
	"github.com/draftline/draftline/domain"
	"github.com/draftline/draftline/extract"
	"github.com/draftline/draftline/hub"
	"github.com/draftline/draftline/jira"
	"github.com/draftline/draftline/policy"
	"github.com/draftline/draftline/store"
)

// newTestHandler wires a handler against an in-memory store, the default
// triage policy, and a Jira client pointed at the given test server.
func newTestHandler(t *testing.T, jiraURL string) (*api.Handler, *store.MemoryStore) {
	t.Helper()
	return newTestHandlerWithPolicy(t, jiraURL, policy.DefaultPolicy)
}

// newTestHandlerWithPolicy is newTestHandler with a custom rego policy.
func newTestHandlerWithPolicy(t *testing.T, jiraURL, policySrc string) (*api.Handler, *store.MemoryStore) {
	t.Helper()

	logger := zap.NewNop()

	db := store.NewMemoryStore()
	t.Cleanup(func() { db.Close() })

	engine, err := policy.NewEngine(context.Background(), policySrc)
	require.NoError(t, err)

	feed := hub.NewHub(logger)
	go feed.Run()

	extractor := extract.NewChain(nil, logger)
	jiraClient := jira.NewClient(jiraURL, "bot@example.com", "token", "TEST")

	return api.NewHandler(db, extractor, jiraClient, engine, feed, logger), db
}

// seedDraft stores a pending draft directly and returns its id.
func seedDraft(t *testing.T, db *store.MemoryStore, source domain.Source) string {
	t.Helper()

	id, err := db.Create(context.Background(), &domain.Draft{
		Source:   source,
		Sender:   "alice",
		Messages: []string{"checkout is down"},
		Draft: &domain.TaskDraft{
			Title:       "checkout is down",
			Description: "Source: Manual\n\nConversation:\n- checkout is down\n\nAttachments: None",
			Priority:    domain.PriorityHigh,
			Tags:        []string{"checkout"},
		},
	})
	require.NoError(t, err)
	return id
}
