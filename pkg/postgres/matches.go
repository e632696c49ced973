package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/staffing-platform/referral-matcher/pkg/core/model"
)

// SaveMatch inserts a match record, assigning its id and timestamps
func (d *DB) SaveMatch(ctx context.Context, match *model.Match) (*model.Match, error) {
	saved := *match
	if saved.ID == "" {
		saved.ID = uuid.New().String()
	}
	if saved.Status == "" {
		saved.Status = model.MatchStatusPending
	}

	err := d.pool.QueryRow(ctx, `
		INSERT INTO match (id, request_id, profile_id, rank, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, saved.ID, saved.RequestID, saved.ProfileID, saved.Rank, string(saved.Status)).Scan(&saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert match for profile %s: %w", saved.ProfileID, err)
	}

	return &saved, nil
}

// ListMatchesByRequest retrieves all matches for a request, oldest run first then by rank
func (d *DB) ListMatchesByRequest(ctx context.Context, requestID string) ([]model.Match, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, request_id, profile_id, rank, status, created_at, updated_at
		FROM match
		WHERE request_id = $1
		ORDER BY created_at, rank
	`, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []model.Match
	for rows.Next() {
		var m model.Match
		var status string
		if err := rows.Scan(&m.ID, &m.RequestID, &m.ProfileID, &m.Rank, &status, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		m.Status = model.MatchStatus(status)
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}

	return matches, nil
}

// CountMatchesByRequest returns how many matches exist for a request
func (d *DB) CountMatchesByRequest(ctx context.Context, requestID string) (int, error) {
	var count int
	if err := d.pool.QueryRow(ctx, `SELECT COUNT(*) FROM match WHERE request_id = $1`, requestID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return count, nil
}
