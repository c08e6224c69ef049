package adf

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromTextLines(t *testing.T) {
	doc := FromText("line1\n\nline2")

	assert.Equal(t, "doc", doc.Type)
	assert.Equal(t, 1, doc.Version)
	require.Len(t, doc.Content, 1)
	assert.Equal(t, "paragraph", doc.Content[0].Type)

	nodes := doc.Content[0].Content
	require.Len(t, nodes, 4)
	assert.Equal(t, Node{Type: "text", Text: "line1"}, nodes[0])
	assert.Equal(t, "hardBreak", nodes[1].Type)
	assert.Equal(t, "hardBreak", nodes[2].Type)
	assert.Equal(t, Node{Type: "text", Text: "line2"}, nodes[3])
}

func TestFromTextSingleLine(t *testing.T) {
	doc := FromText("hello")

	require.Len(t, doc.Content, 1)
	nodes := doc.Content[0].Content
	require.Len(t, nodes, 1)
	assert.Equal(t, Node{Type: "text", Text: "hello"}, nodes[0])
}

func TestFromTextEmpty(t *testing.T) {
	doc := FromText("")

	require.Len(t, doc.Content, 1)
	assert.Empty(t, doc.Content[0].Content)
}

func TestDocJSON(t *testing.T) {
	data, err := json.Marshal(FromText("a\nb"))
	require.NoError(t, err)

	s := string(data)
	assert.True(t, strings.Contains(s, `"type":"doc"`))
	assert.True(t, strings.Contains(s, `"version":1`))
	assert.True(t, strings.Contains(s, `"type":"hardBreak"`))
}
