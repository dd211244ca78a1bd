package vector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

func init() {
	// Auto-register sqlite-vec extension
	sqlite_vec.Auto()
}

// SQLiteVecAdapter stores embeddings in a sqlite-vec vec0 virtual table
// with a metadata side table for filtering.
type SQLiteVecAdapter struct {
	db       *sql.DB
	embedder Embedder
	logger   zerolog.Logger
}

// SQLiteVecConfig configures the sqlite-vec backend.
type SQLiteVecConfig struct {
	DBPath   string
	Embedder Embedder
	Logger   zerolog.Logger
}

// NewSQLiteVecAdapter opens (or creates) the vector database at DBPath.
func NewSQLiteVecAdapter(cfg SQLiteVecConfig) (*SQLiteVecAdapter, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("vector database path is required")
	}
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}

	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	a := &SQLiteVecAdapter{
		db:       db,
		embedder: cfg.Embedder,
		logger:   cfg.Logger,
	}

	if err := a.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize vector schema: %w", err)
	}

	return a, nil
}

func (a *SQLiteVecAdapter) initSchema() error {
	vectorSchema := fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS embeddings USING vec0(
			doc_id TEXT PRIMARY KEY,
			embedding float[%d] distance_metric=cosine
		);
	`, a.embedder.Dimensions())
	if _, err := a.db.Exec(vectorSchema); err != nil {
		return err
	}

	metaSchema := `
		CREATE TABLE IF NOT EXISTS embedding_meta (
			doc_id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL DEFAULT '',
			memory_id TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL DEFAULT '',
			extra_json TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_embedding_meta_project ON embedding_meta(project_id);
	`
	_, err := a.db.Exec(metaSchema)
	return err
}

func (a *SQLiteVecAdapter) Add(ctx context.Context, id, text string, meta Metadata) error {
	embedding, err := a.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to generate embedding: %w", err)
	}

	embeddingJSON, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}

	extraJSON := ""
	if len(meta.Extra) > 0 {
		data, err := json.Marshal(meta.Extra)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		extraJSON = string(data)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// vec0 has no upsert; delete then insert
	if _, err := tx.ExecContext(ctx, "DELETE FROM embeddings WHERE doc_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO embeddings (doc_id, embedding) VALUES (?, ?)",
		id, string(embeddingJSON),
	); err != nil {
		return fmt.Errorf("failed to store embedding: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO embedding_meta (doc_id, project_id, memory_id, type, extra_json)
		VALUES (?, ?, ?, ?, ?)`,
		id, meta.ProjectID, meta.MemoryID, meta.Type, extraJSON,
	); err != nil {
		return err
	}

	return tx.Commit()
}

func (a *SQLiteVecAdapter) Query(ctx context.Context, text string, k int, filter Filter) ([]Result, error) {
	if k <= 0 {
		return []Result{}, nil
	}

	embedding, err := a.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}
	embeddingJSON, err := json.Marshal(embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query embedding: %w", err)
	}

	query := `
		SELECT
			e.doc_id,
			vec_distance_cosine(e.embedding, ?) as distance,
			m.project_id, m.memory_id, m.type, m.extra_json
		FROM embeddings e
		JOIN embedding_meta m ON m.doc_id = e.doc_id
		WHERE (? = '' OR m.project_id = ?)
		  AND (? = '' OR m.type = ?)
		ORDER BY distance ASC
		LIMIT ?
	`

	rows, err := a.db.QueryContext(ctx, query,
		string(embeddingJSON),
		filter.ProjectID, filter.ProjectID,
		filter.Type, filter.Type,
		k,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var id, projectID, memoryID, typ, extraJSON string
		var distance float64
		if err := rows.Scan(&id, &distance, &projectID, &memoryID, &typ, &extraJSON); err != nil {
			return nil, err
		}

		meta := Metadata{ProjectID: projectID, MemoryID: memoryID, Type: typ}
		if extraJSON != "" {
			var extra map[string]string
			if err := json.Unmarshal([]byte(extraJSON), &extra); err == nil {
				meta.Extra = extra
			}
		}

		// cosine distance [0,2] maps to similarity [0,1]
		results = append(results, Result{
			ID:       id,
			Score:    clampScore(1.0 - distance/2.0),
			Metadata: meta,
		})
	}
	return results, rows.Err()
}

func (a *SQLiteVecAdapter) Delete(ctx context.Context, id string) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM embeddings WHERE doc_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM embedding_meta WHERE doc_id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// Close closes the underlying database.
func (a *SQLiteVecAdapter) Close() error {
	return a.db.Close()
}
