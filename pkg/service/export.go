package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/moltiq/moltiq/pkg/memory"
	"github.com/moltiq/moltiq/pkg/store"
)

// ExportedMemory is the interchange shape for export/import dumps.
type ExportedMemory struct {
	ID         string   `json:"id,omitempty"`
	ProjectID  string   `json:"project_id"`
	Type       string   `json:"type"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Source     string   `json:"source,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	IsFavorite bool     `json:"is_favorite,omitempty"`
	IsPinned   bool     `json:"is_pinned,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
	CreatedAt  string   `json:"created_at,omitempty"`
	UpdatedAt  string   `json:"updated_at,omitempty"`
}

// importSchema validates dumps before anything hits the store.
const importSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["project_id", "type", "title", "content"],
		"properties": {
			"id": {"type": "string"},
			"project_id": {"type": "string", "minLength": 1},
			"type": {"type": "string", "enum": ["FACT", "DECISION", "SNIPPET", "TASK", "SUMMARY"]},
			"title": {"type": "string"},
			"content": {"type": "string"},
			"source": {"type": "string"},
			"tags": {"type": "array", "items": {"type": "string"}},
			"is_favorite": {"type": "boolean"},
			"is_pinned": {"type": "boolean"},
			"confidence": {"type": "number", "minimum": 0, "maximum": 1},
			"created_at": {"type": "string"},
			"updated_at": {"type": "string"}
		}
	}
}`

// ExportJSON dumps a project's memories (all projects when projectID is
// empty) as indented JSON.
func (s *Service) ExportJSON(ctx context.Context, projectID string) ([]byte, error) {
	memories, err := s.listAll(ctx, projectID)
	if err != nil {
		return nil, err
	}

	exported := make([]ExportedMemory, len(memories))
	for i, m := range memories {
		exported[i] = ExportedMemory{
			ID:         m.ID,
			ProjectID:  m.ProjectID,
			Type:       string(m.Type),
			Title:      m.Title,
			Content:    m.Content,
			Source:     m.Source,
			Tags:       m.Tags(),
			IsFavorite: m.IsFavorite,
			IsPinned:   m.IsPinned,
			Confidence: m.Confidence,
			CreatedAt:  m.CreatedAt.Format(time.RFC3339),
			UpdatedAt:  m.UpdatedAt.Format(time.RFC3339),
		}
	}
	return json.MarshalIndent(exported, "", "  ")
}

// ExportMarkdown dumps a project's memories as a readable document.
func (s *Service) ExportMarkdown(ctx context.Context, projectID string) (string, error) {
	memories, err := s.listAll(ctx, projectID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("# Memory Export\n\n")
	for _, m := range memories {
		fmt.Fprintf(&b, "## %s\n\n", m.Title)
		fmt.Fprintf(&b, "- **ID**: %s\n", m.ID)
		fmt.Fprintf(&b, "- **Type**: %s\n", m.Type)
		fmt.Fprintf(&b, "- **Project**: %s\n", m.ProjectID)
		if m.Source != "" {
			fmt.Fprintf(&b, "- **Source**: %s\n", m.Source)
		}
		if tags := m.Tags(); len(tags) > 0 {
			fmt.Fprintf(&b, "- **Tags**: %s\n", strings.Join(tags, ", "))
		}
		fmt.Fprintf(&b, "- **Created**: %s\n\n", m.CreatedAt.Format(time.RFC3339))
		b.WriteString(m.Content)
		b.WriteString("\n\n---\n\n")
	}
	return b.String(), nil
}

// ImportResult reports what an import did.
type ImportResult struct {
	Created int
	Skipped int
	Errors  []string
}

// ImportJSON validates a dump against the import schema and creates
// each memory. Per-record failures are reported, not swallowed, so the
// created count is accurate.
func (s *Service) ImportJSON(ctx context.Context, data []byte) (*ImportResult, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(importSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("validate import: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("invalid import file: %s", strings.Join(msgs, "; "))
	}

	var exported []ExportedMemory
	if err := json.Unmarshal(data, &exported); err != nil {
		return nil, fmt.Errorf("parse import: %w", err)
	}

	out := &ImportResult{}
	for _, e := range exported {
		_, err := s.Create(ctx, CreateInput{
			ProjectID:  e.ProjectID,
			Type:       memory.Type(e.Type),
			Title:      e.Title,
			Content:    e.Content,
			Source:     e.Source,
			Tags:       e.Tags,
			IsFavorite: e.IsFavorite,
			IsPinned:   e.IsPinned,
			Confidence: e.Confidence,
		})
		if err != nil {
			out.Skipped++
			out.Errors = append(out.Errors, fmt.Sprintf("%s: %v", e.Title, err))
			continue
		}
		out.Created++
	}
	return out, nil
}

func (s *Service) listAll(ctx context.Context, projectID string) ([]*memory.Memory, error) {
	const page = 500
	var all []*memory.Memory
	for offset := 0; ; offset += page {
		batch, err := s.store.List(ctx, store.ListOptions{
			ProjectID: projectID,
			Limit:     page,
			Offset:    offset,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < page {
			return all, nil
		}
	}
}
