// Package jira provides a minimal Jira Cloud REST client for issue
// creation.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/draftline/draftline/adf"
	"github.com/draftline/draftline/domain"
)

// CreationError reports a create call the tracker rejected, carrying the
// upstream response verbatim.
type CreationError struct {
	StatusCode int
	Body       string
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("jira returned status %d: %s", e.StatusCode, e.Body)
}

// ProjectRef identifies a project by key.
type ProjectRef struct {
	Key string `json:"key"`
}

// NameRef identifies an entity by name (issue types, priorities).
type NameRef struct {
	Name string `json:"name"`
}

// IssueFields is the creation payload's fields object.
type IssueFields struct {
	Project     ProjectRef `json:"project"`
	Summary     string     `json:"summary"`
	Description adf.Doc    `json:"description"`
	IssueType   NameRef    `json:"issuetype"`
	Labels      []string   `json:"labels"`
	Priority    *NameRef   `json:"priority,omitempty"`
}

type createRequest struct {
	Fields IssueFields `json:"fields"`
}

type createResponse struct {
	Key  string `json:"key"`
	Self string `json:"self"`
}

// Client is the Jira Cloud client.
type Client struct {
	baseURL    string
	email      string
	apiToken   string
	projectKey string
	httpClient *http.Client
}

// NewClient creates a Jira client authenticating with email + API token.
// No explicit timeout: tracker calls rely on the transport default.
func NewClient(baseURL, email, apiToken, projectKey string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		email:      email,
		apiToken:   apiToken,
		projectKey: projectKey,
		httpClient: &http.Client{},
	}
}

// CreateIssue files a Task for the draft fields. If the first attempt
// fails (commonly an unsupported priority name on the project's scheme),
// it retries exactly once with the priority omitted; there is never a
// third attempt.
func (c *Client) CreateIssue(ctx context.Context, title string, description adf.Doc, priority domain.Priority, labels []string) (*domain.IssueRef, error) {
	if labels == nil {
		labels = []string{}
	}

	fields := IssueFields{
		Project:     ProjectRef{Key: c.projectKey},
		Summary:     title,
		Description: description,
		IssueType:   NameRef{Name: "Task"},
		Labels:      labels,
	}

	withPriority := fields
	withPriority.Priority = &NameRef{Name: string(priority)}

	ref, err := c.create(ctx, withPriority)
	if err == nil {
		return ref, nil
	}
	return c.create(ctx, fields)
}

func (c *Client) create(ctx context.Context, fields IssueFields) (*domain.IssueRef, error) {
	body, err := json.Marshal(createRequest{Fields: fields})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rest/api/3/issue", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.SetBasicAuth(c.email, c.apiToken)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &CreationError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result createResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &domain.IssueRef{Key: result.Key, Self: result.Self}, nil
}
