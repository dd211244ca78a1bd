// Package service orchestrates memory writes across the relational
// store and the vector index, and hosts the prune scheduler and
// export/import helpers.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/moltiq/moltiq/internal/observability"
	"github.com/moltiq/moltiq/internal/tracing"
	"github.com/moltiq/moltiq/pkg/memory"
	"github.com/moltiq/moltiq/pkg/store"
	"github.com/moltiq/moltiq/pkg/vector"
)

// CreateInput carries the fields for a new memory.
type CreateInput struct {
	ProjectID  string
	SessionID  string
	Type       memory.Type
	Title      string
	Content    string
	Source     string
	Tags       []string
	IsFavorite bool
	IsPinned   bool
	Confidence float64
}

// UpdateInput carries partial updates; nil fields keep existing values.
type UpdateInput struct {
	Type       *memory.Type
	Title      *string
	Content    *string
	Source     *string
	Tags       []string
	IsFavorite *bool
	IsPinned   *bool
	Confidence *float64
}

// Service coordinates the store and vector index for memory writes.
// Record creation fails loudly: a store or mandatory-index error is
// returned to the caller, never swallowed.
type Service struct {
	store  *store.SQLiteStore
	vector vector.Adapter
	logger zerolog.Logger
}

// New creates a memory service. The adapter is typically a
// vector.FallbackAdapter so indexing degrades per configuration.
func New(st *store.SQLiteStore, adapter vector.Adapter, logger zerolog.Logger) *Service {
	return &Service{store: st, vector: adapter, logger: logger}
}

// Create stores a new memory and indexes it for semantic search.
func (s *Service) Create(ctx context.Context, input CreateInput) (*memory.Memory, error) {
	ctx, span := tracing.StartSpan(
		ctx,
		"moltiq.service",
		"memory.create",
		attribute.String("project_id", input.ProjectID),
		attribute.String("type", string(input.Type)),
	)
	defer span.End()

	logger := tracing.LoggerFromContext(ctx, s.logger)
	start := time.Now()
	defer func() { observability.RecordMemoryWrite(time.Since(start)) }()

	if input.Title == "" && input.Content == "" {
		return nil, fmt.Errorf("memory needs a title or content")
	}
	if _, err := memory.ParseType(string(input.Type)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	m := &memory.Memory{
		ProjectID:  input.ProjectID,
		SessionID:  input.SessionID,
		Type:       input.Type,
		Title:      input.Title,
		Content:    input.Content,
		Source:     input.Source,
		TagsJSON:   memory.EncodeTags(input.Tags),
		IsFavorite: input.IsFavorite,
		IsPinned:   input.IsPinned,
		Confidence: input.Confidence,
	}

	if err := s.store.Create(ctx, m); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("create memory: %w", err)
	}

	if err := s.index(ctx, m); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	logger.Info().Str("id", m.ID).Str("type", string(m.Type)).Msg("Memory created")
	return m, nil
}

// Update applies partial changes and reindexes the memory.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*memory.Memory, error) {
	ctx, span := tracing.StartSpan(ctx, "moltiq.service", "memory.update",
		attribute.String("id", id))
	defer span.End()

	start := time.Now()
	defer func() { observability.RecordMemoryWrite(time.Since(start)) }()

	m, err := s.store.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if input.Type != nil {
		if _, err := memory.ParseType(string(*input.Type)); err != nil {
			return nil, err
		}
		m.Type = *input.Type
	}
	if input.Title != nil {
		m.Title = *input.Title
	}
	if input.Content != nil {
		m.Content = *input.Content
	}
	if input.Source != nil {
		m.Source = *input.Source
	}
	if input.Tags != nil {
		m.TagsJSON = memory.EncodeTags(input.Tags)
	}
	if input.IsFavorite != nil {
		m.IsFavorite = *input.IsFavorite
	}
	if input.IsPinned != nil {
		m.IsPinned = *input.IsPinned
	}
	if input.Confidence != nil {
		m.Confidence = *input.Confidence
	}

	if err := s.store.Update(ctx, m); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("update memory: %w", err)
	}

	// Replace the index entry; stale-delete failures are best-effort
	if err := s.vector.Delete(ctx, m.ID); err != nil {
		s.logger.Warn().Err(err).Str("id", m.ID).Msg("Failed to delete stale vector entry")
	}
	if err := s.index(ctx, m); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return m, nil
}

// Delete removes a memory from the store and, best-effort, from the
// vector index.
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "moltiq.service", "memory.delete",
		attribute.String("id", id))
	defer span.End()

	if err := s.vector.Delete(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("id", id).Msg("Failed to delete vector entry")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// Prune removes old unpinned, unfavorited memories along with their
// index entries. Returns the number removed.
func (s *Service) Prune(ctx context.Context, olderThanDays int) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "moltiq.service", "memory.prune",
		attribute.Int("older_than_days", olderThanDays))
	defer span.End()

	ids, err := s.store.PruneOlderThan(ctx, olderThanDays)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	for _, id := range ids {
		if err := s.vector.Delete(ctx, id); err != nil {
			s.logger.Warn().Err(err).Str("id", id).Msg("Failed to delete pruned vector entry")
		}
	}
	return len(ids), nil
}

func (s *Service) index(ctx context.Context, m *memory.Memory) error {
	err := s.vector.Add(ctx, m.ID, m.EmbeddingText(), vector.Metadata{
		ProjectID: m.ProjectID,
		MemoryID:  m.ID,
		Type:      string(m.Type),
	})
	if err != nil {
		return fmt.Errorf("index memory: %w", err)
	}
	return nil
}
