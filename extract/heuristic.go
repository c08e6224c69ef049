package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/draftline/draftline/domain"
)

// PlaceholderTitle is used when the chat carries no text.
const PlaceholderTitle = "Untitled task from chat"

// Priority tiers, tested in strict precedence order. Only the first
// matching tier applies.
var (
	highPriorityRe   = regexp.MustCompile(`(?i)down|fail|failing|error|urgent|critical|prod|payment|crash|blocker`)
	mediumPriorityRe = regexp.MustCompile(`(?i)slow|confuse|bug|fix|issue|problem`)
)

// tagGroups are tested independently against the buffer, in this fixed
// order. The groups map onto disjoint tags, so no deduplication is
// needed.
var tagGroups = []struct {
	re  *regexp.Regexp
	tag string
}{
	{regexp.MustCompile(`(?i)mobile|android|ios|responsive`), "mobile"},
	{regexp.MustCompile(`(?i)checkout`), "checkout"},
	{regexp.MustCompile(`(?i)payment|upi|card|gateway`), "payments"},
	{regexp.MustCompile(`(?i)ui|ux|design`), "design"},
}

// Heuristic extracts a draft by pattern matching over the space-joined
// message buffer. It is deterministic, makes no external calls, and
// cannot fail; it is the unconditional fallback for the AI path.
type Heuristic struct{}

// NewHeuristic creates the heuristic extractor.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Extract derives title, priority, tags, and a templated description.
func (h *Heuristic) Extract(ctx context.Context, source domain.Source, messages, attachments []string) (*domain.TaskDraft, error) {
	text := strings.Join(messages, " ")

	title := text
	if runes := []rune(title); len(runes) > domain.MaxTitleLen {
		title = string(runes[:domain.MaxTitleLen])
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = PlaceholderTitle
	}

	priority := domain.PriorityLow
	switch {
	case highPriorityRe.MatchString(text):
		priority = domain.PriorityHigh
	case mediumPriorityRe.MatchString(text):
		priority = domain.PriorityMedium
	}

	var tags []string
	for _, g := range tagGroups {
		if g.re.MatchString(text) {
			tags = append(tags, g.tag)
		}
	}

	return &domain.TaskDraft{
		Title:       title,
		Description: describeDraft(source, messages, attachments),
		Priority:    priority,
		Tags:        tags,
		Attachments: attachments,
	}, nil
}

// describeDraft renders the fixed description template: provenance
// label, bulleted conversation, attachment list or "None".
func describeDraft(source domain.Source, messages, attachments []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Source: %s\n\nConversation:\n", source.Label())
	for _, m := range messages {
		fmt.Fprintf(&b, "- %s\n", m)
	}
	b.WriteString("\nAttachments: ")
	if len(attachments) == 0 {
		b.WriteString("None")
	} else {
		b.WriteString(strings.Join(attachments, ", "))
	}
	return b.String()
}
