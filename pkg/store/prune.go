package store

import (
	"context"
	"fmt"
	"time"

	"github.com/moltiq/moltiq/internal/observability"
)

// PruneOlderThan removes memories created before the cutoff. Pinned and
// favorite memories are never pruned. Returns the ids of the removed
// records so callers can clean up the vector index.
func (s *SQLiteStore) PruneOlderThan(ctx context.Context, olderThanDays int) ([]string, error) {
	if olderThanDays <= 0 {
		return nil, fmt.Errorf("prune days must be positive, got %d", olderThanDays)
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -olderThanDays).Unix()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM memories
		WHERE created_at < ? AND is_pinned = 0 AND is_favorite = 0`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to find prunable memories: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	for _, id := range ids {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM memories WHERE id = ?", id); err != nil {
			return nil, fmt.Errorf("failed to prune memory %s: %w", id, err)
		}
	}

	observability.RecordPruned(len(ids))
	s.updateEntriesMetric(ctx)
	s.logger.Info().Int("pruned", len(ids)).Int("older_than_days", olderThanDays).Msg("Pruned old memories")
	return ids, nil
}
