package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/draftline/draftline/domain"
)

// ErrMalformedResponse is returned when the model output carries no
// parseable trailing JSON object.
var ErrMalformedResponse = errors.New("model did not return JSON")

// generateRequest is the Ollama /api/generate request.
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

// generateResponse is the subset of the Ollama response we consume.
type generateResponse struct {
	Response string `json:"response"`
}

// Ollama extracts drafts by prompting a local generation endpoint for a
// strict-JSON rendition of the task schema.
type Ollama struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOllama creates an Ollama-backed extractor.
func NewOllama(baseURL, model string, timeout time.Duration) *Ollama {
	return &Ollama{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Extract prompts the model and normalizes its JSON reply onto the draft
// schema. Any transport, status, or parse failure is returned to the
// caller, which is expected to fall back to the heuristic extractor.
func (o *Ollama) Extract(ctx context.Context, source domain.Source, messages, attachments []string) (*domain.TaskDraft, error) {
	body, err := json.Marshal(generateRequest{
		Model:  o.model,
		Prompt: buildPrompt(messages, attachments),
		Stream: false,
		Options: generateOptions{
			Temperature: 0.2,
			TopP:        0.9,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama API error [%d]: %s", resp.StatusCode, string(respBody))
	}

	var gen generateResponse
	if err := json.Unmarshal(respBody, &gen); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return parseDraft(gen.Response, messages, attachments)
}

// parseDraft locates the trailing JSON object in raw model output and
// normalizes it onto the draft schema.
func parseDraft(raw string, messages, attachments []string) (*domain.TaskDraft, error) {
	raw = strings.TrimSpace(raw)
	start := strings.Index(raw, "{")
	if start < 0 || !strings.HasSuffix(raw, "}") {
		return nil, ErrMalformedResponse
	}

	var parsed struct {
		Title       string          `json:"title"`
		Description string          `json:"description"`
		Priority    string          `json:"priority"`
		Tags        json.RawMessage `json:"tags"`
		Attachments json.RawMessage `json:"attachments"`
	}
	if err := json.Unmarshal([]byte(raw[start:]), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	title := strings.TrimSpace(parsed.Title)
	if title == "" {
		title = PlaceholderTitle
	}

	description := parsed.Description
	if description == "" {
		description = strings.Join(messages, "\n")
	}

	tags := []string{}
	if parsed.Tags != nil {
		var fromModel []string
		if err := json.Unmarshal(parsed.Tags, &fromModel); err == nil && fromModel != nil {
			tags = fromModel
		}
	}
	if len(tags) > domain.MaxTags {
		tags = tags[:domain.MaxTags]
	}

	atts := attachments
	if parsed.Attachments != nil {
		var fromModel []string
		if err := json.Unmarshal(parsed.Attachments, &fromModel); err == nil && fromModel != nil {
			atts = fromModel
		}
	}

	return &domain.TaskDraft{
		Title:       title,
		Description: description,
		Priority:    domain.NormalizePriority(parsed.Priority),
		Tags:        tags,
		Attachments: atts,
	}, nil
}

// buildPrompt renders the extraction instruction embedding the chat.
func buildPrompt(messages, attachments []string) string {
	var b strings.Builder
	b.WriteString("You convert informal chat into a JIRA task in STRICT JSON.\n\n")
	b.WriteString("Fields:\n")
	b.WriteString("- title (<=100 chars, action-oriented)\n")
	b.WriteString("- description (4-8 lines, include key details; mention attachments if any)\n")
	b.WriteString("- priority: High | Medium | Low  (High if failures/outages/payments/security)\n")
	b.WriteString("- tags: 2-5 short keywords (e.g., checkout, payments, mobile, UI)\n")
	b.WriteString("- attachments: array of strings (filenames or URLs)\n\n")
	b.WriteString("Chat messages:\n")
	for _, m := range messages {
		fmt.Fprintf(&b, "- %s\n", m)
	}
	b.WriteString("\nAttachments:\n")
	if len(attachments) == 0 {
		b.WriteString("None")
	} else {
		b.WriteString(strings.Join(attachments, ", "))
	}
	b.WriteString("\n\nReturn ONLY JSON. No extra text.")
	return b.String()
}
