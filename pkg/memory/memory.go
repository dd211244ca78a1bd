package memory

import (
	"fmt"
	"strings"
	"time"
)

// Type classifies what kind of knowledge a memory holds.
type Type string

const (
	TypeFact     Type = "FACT"
	TypeDecision Type = "DECISION"
	TypeSnippet  Type = "SNIPPET"
	TypeTask     Type = "TASK"
	TypeSummary  Type = "SUMMARY"
)

// Types lists all valid memory types.
var Types = []Type{TypeFact, TypeDecision, TypeSnippet, TypeTask, TypeSummary}

// ParseType validates and normalizes a memory type string.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Types {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown memory type: %q", s)
}

// Memory is a stored unit of agent-relevant text.
type Memory struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	SessionID  string    `json:"session_id,omitempty"`
	Type       Type      `json:"type"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Source     string    `json:"source,omitempty"`
	TagsJSON   string    `json:"tags_json,omitempty"`
	IsFavorite bool      `json:"is_favorite"`
	IsPinned   bool      `json:"is_pinned"`
	Confidence float64   `json:"confidence,omitempty"` // (0,1]; <= 0 means no signal
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Tags decodes the stored tag list. Malformed encodings yield nil.
func (m *Memory) Tags() []string {
	return DecodeTags(m.TagsJSON)
}

// EmbeddingText returns the text that represents this memory in the
// vector index.
func (m *Memory) EmbeddingText() string {
	return m.Title + " " + m.Content
}
