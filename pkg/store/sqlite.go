package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/moltiq/moltiq/internal/observability"
	"github.com/moltiq/moltiq/pkg/memory"
)

// ErrNotFound is returned when a memory id does not exist.
var ErrNotFound = fmt.Errorf("memory not found")

// SQLiteStore persists memory records in SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Config holds store configuration
type Config struct {
	DBPath string
	Logger zerolog.Logger
}

// New opens (or creates) the memory database.
func New(cfg Config) (*SQLiteStore, error) {
	observability.EnsureRegistered()

	if cfg.DBPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, logger: cfg.Logger}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s.logger.Info().Str("path", cfg.DBPath).Msg("Memory store initialized")
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS memories (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			session_id TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			tags_json TEXT NOT NULL DEFAULT '',
			is_favorite INTEGER NOT NULL DEFAULT 0,
			is_pinned INTEGER NOT NULL DEFAULT 0,
			confidence REAL NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_memories_project ON memories(project_id);
		CREATE INDEX IF NOT EXISTS idx_memories_type ON memories(project_id, type);
		CREATE INDEX IF NOT EXISTS idx_memories_created ON memories(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Create inserts a new memory. A missing id is generated.
func (s *SQLiteStore) Create(ctx context.Context, m *memory.Memory) error {
	if m.ProjectID == "" {
		return fmt.Errorf("project id is required")
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memories (id, project_id, session_id, type, title, content, source,
			tags_json, is_favorite, is_pinned, confidence, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ProjectID, m.SessionID, string(m.Type), m.Title, m.Content, m.Source,
		m.TagsJSON, boolToInt(m.IsFavorite), boolToInt(m.IsPinned), m.Confidence,
		m.CreatedAt.Unix(), m.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert memory: %w", err)
	}
	s.updateEntriesMetric(ctx)
	return nil
}

// Update rewrites an existing memory's mutable fields.
func (s *SQLiteStore) Update(ctx context.Context, m *memory.Memory) error {
	m.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE memories SET type = ?, title = ?, content = ?, source = ?, tags_json = ?,
			is_favorite = ?, is_pinned = ?, confidence = ?, updated_at = ?
		WHERE id = ?`,
		string(m.Type), m.Title, m.Content, m.Source, m.TagsJSON,
		boolToInt(m.IsFavorite), boolToInt(m.IsPinned), m.Confidence,
		m.UpdatedAt.Unix(), m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update memory: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Get returns one memory by id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*memory.Memory, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" FROM memories WHERE id = ?", id)
	m, err := scanMemory(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return m, err
}

// Delete removes a memory by id.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM memories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete memory: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	s.updateEntriesMetric(ctx)
	return nil
}

// FetchByIDs returns the records for the given ids. Order is not
// guaranteed to match the input; callers re-associate by id. An empty
// input returns an empty result without a query.
func (s *SQLiteStore) FetchByIDs(ctx context.Context, ids []string) ([]*memory.Memory, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		selectColumns+" FROM memories WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch memories: %w", err)
	}
	defer rows.Close()

	return scanMemories(rows)
}

// ListOptions narrows List results.
type ListOptions struct {
	ProjectID string
	Type      memory.Type
	Limit     int
	Offset    int
}

// List returns memories newest-first.
func (s *SQLiteStore) List(ctx context.Context, opts ListOptions) ([]*memory.Memory, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	where := []string{"1=1"}
	var args []interface{}
	if opts.ProjectID != "" {
		where = append(where, "project_id = ?")
		args = append(args, opts.ProjectID)
	}
	if opts.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(opts.Type))
	}
	args = append(args, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx,
		selectColumns+" FROM memories WHERE "+strings.Join(where, " AND ")+
			" ORDER BY created_at DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}
	defer rows.Close()

	return scanMemories(rows)
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) updateEntriesMetric(ctx context.Context) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM memories").Scan(&count); err == nil {
		observability.SetMemoryEntries(count)
	}
}

const selectColumns = `SELECT id, project_id, session_id, type, title, content, source,
	tags_json, is_favorite, is_pinned, confidence, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMemory(row rowScanner) (*memory.Memory, error) {
	var m memory.Memory
	var typ string
	var favorite, pinned int
	var createdAt, updatedAt int64
	err := row.Scan(&m.ID, &m.ProjectID, &m.SessionID, &typ, &m.Title, &m.Content,
		&m.Source, &m.TagsJSON, &favorite, &pinned, &m.Confidence, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	m.Type = memory.Type(typ)
	m.IsFavorite = favorite != 0
	m.IsPinned = pinned != 0
	m.CreatedAt = time.Unix(createdAt, 0).UTC()
	m.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &m, nil
}

func scanMemories(rows *sql.Rows) ([]*memory.Memory, error) {
	var memories []*memory.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		memories = append(memories, m)
	}
	return memories, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
