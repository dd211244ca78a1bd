package store

import (
	"context"
	"fmt"
)

// Stats holds store statistics.
type Stats struct {
	TotalMemories int            `json:"total_memories"`
	Pinned        int            `json:"pinned"`
	Favorites     int            `json:"favorites"`
	ByProject     []ProjectStats `json:"by_project"`
	ByType        map[string]int `json:"by_type"`
}

// ProjectStats holds per-project counts.
type ProjectStats struct {
	ProjectID string `json:"project_id"`
	Count     int    `json:"count"`
}

// Stats returns store statistics.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{ByType: map[string]int{}}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM memories`, &st.TotalMemories},
		{`SELECT COUNT(*) FROM memories WHERE is_pinned = 1`, &st.Pinned},
		{`SELECT COUNT(*) FROM memories WHERE is_favorite = 1`, &st.Favorites},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to count memories: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT project_id, COUNT(*) as cnt
		FROM memories GROUP BY project_id ORDER BY cnt DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var ps ProjectStats
		if err := rows.Scan(&ps.ProjectID, &ps.Count); err != nil {
			return nil, err
		}
		st.ByProject = append(st.ByProject, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	typeRows, err := s.db.QueryContext(ctx, `
		SELECT type, COUNT(*) FROM memories GROUP BY type`)
	if err != nil {
		return nil, err
	}
	defer typeRows.Close()
	for typeRows.Next() {
		var typ string
		var count int
		if err := typeRows.Scan(&typ, &count); err != nil {
			return nil, err
		}
		st.ByType[typ] = count
	}
	if err := typeRows.Err(); err != nil {
		return nil, err
	}
	return st, nil
}
