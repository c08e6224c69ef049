// Package adf builds Atlassian Document Format payloads from plain text.
// Jira Cloud expects issue descriptions in this representation rather
// than plain strings.
package adf

import "strings"

// Node is a single ADF content node.
type Node struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Content []Node `json:"content,omitempty"`
}

// Doc is the ADF document envelope.
type Doc struct {
	Type    string `json:"type"`
	Version int    `json:"version"`
	Content []Node `json:"content"`
}

// FromText converts plain text into a single-paragraph version-1 ADF
// document. Non-empty lines become text nodes; a hardBreak node is
// inserted between consecutive lines, including after empty ones. Empty
// input yields a paragraph with no content.
func FromText(text string) Doc {
	lines := strings.Split(text, "\n")
	content := make([]Node, 0, len(lines)*2)
	for i, line := range lines {
		if line != "" {
			content = append(content, Node{Type: "text", Text: line})
		}
		if i < len(lines)-1 {
			content = append(content, Node{Type: "hardBreak"})
		}
	}
	return Doc{
		Type:    "doc",
		Version: 1,
		Content: []Node{{Type: "paragraph", Content: content}},
	}
}
