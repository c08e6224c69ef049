// Package domain defines the core domain models for the triage service.
package domain

import (
	"strings"
	"time"
)

// Source identifies where a draft came from. It is set at creation and
// never mutated.
type Source string

const (
	SourceManual   Source = "manual"
	SourceWhatsApp Source = "whatsapp"
	SourceSlack    Source = "slack"
)

// Label returns the provenance label used in generated descriptions.
func (s Source) Label() string {
	switch s {
	case SourceWhatsApp:
		return "WhatsApp"
	case SourceSlack:
		return "Slack"
	default:
		return "Manual"
	}
}

// Priority of an extracted task.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// NormalizePriority maps arbitrary input onto one of the three priority
// values. Anything that does not match case-insensitively becomes Medium.
func NormalizePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return PriorityHigh
	case "medium":
		return PriorityMedium
	case "low":
		return PriorityLow
	default:
		return PriorityMedium
	}
}

const (
	// MaxTitleLen caps extracted titles.
	MaxTitleLen = 100
	// MaxTags caps the number of extracted tags.
	MaxTags = 6
)

// TaskDraft is the structured, human-reviewable candidate issue derived
// from raw chat text.
type TaskDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Tags        []string `json:"tags"`
	Attachments []string `json:"attachments"`
}

// Normalize clamps the draft onto its invariants: title at most
// MaxTitleLen runes, priority one of the three values, tags capped at
// MaxTags.
func (t *TaskDraft) Normalize() {
	if runes := []rune(t.Title); len(runes) > MaxTitleLen {
		t.Title = string(runes[:MaxTitleLen])
	}
	t.Priority = NormalizePriority(string(t.Priority))
	if len(t.Tags) > MaxTags {
		t.Tags = t.Tags[:MaxTags]
	}
}

// DraftStatus represents the lifecycle state of a stored draft.
type DraftStatus string

const (
	DraftStatusPending DraftStatus = "pending"
	DraftStatusFiled   DraftStatus = "filed"
)

// Draft is a stored candidate issue awaiting human review.
type Draft struct {
	ID          string      `json:"id"`
	Source      Source      `json:"source"`
	Sender      string      `json:"sender"`
	Messages    []string    `json:"messages"`
	Attachments []string    `json:"attachments"`
	Draft       *TaskDraft  `json:"draft"`
	Status      DraftStatus `json:"status"`
	IssueKey    string      `json:"issue_key,omitempty"`
	IssueURL    string      `json:"issue_url,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// IssueRef points at a created tracker issue.
type IssueRef struct {
	Key  string `json:"key"`
	Self string `json:"self"`
}

// ParseRequest is the payload for direct draft extraction.
type ParseRequest struct {
	Messages    []string `json:"messages"`
	Attachments []string `json:"attachments"`
}

// CreateIssueRequest is the payload for direct issue creation.
type CreateIssueRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	Tags        []string `json:"tags"`
}
