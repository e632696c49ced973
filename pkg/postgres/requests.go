package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/staffing-platform/referral-matcher/pkg/core/model"
	"github.com/staffing-platform/referral-matcher/pkg/db"
)

const requestColumns = `
	r.id,
	r.status,
	r.classification_id,
	r.language_requirement_code,
	COALESCE((SELECT array_agg(rc.city_id ORDER BY rc.city_id)
	          FROM request_city rc WHERE rc.request_id = r.id), '{}')
`

func scanRequest(row pgx.Row) (*model.Request, error) {
	var r model.Request
	var status string
	if err := row.Scan(&r.ID, &status, &r.ClassificationID, &r.LanguageRequirementCode, &r.CityIDs); err != nil {
		return nil, err
	}
	r.Status = model.RequestStatus(status)
	return &r, nil
}

// GetRequestByID retrieves a single request. Returns db.ErrNotFound if it doesn't exist.
func (d *DB) GetRequestByID(ctx context.Context, id string) (*model.Request, error) {
	row := d.pool.QueryRow(ctx, `SELECT `+requestColumns+` FROM request r WHERE r.id = $1`, id)

	request, err := scanRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("request %s: %w", id, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query request %s: %w", id, err)
	}

	return request, nil
}

// ListRequestsByStatus retrieves all requests in the given status, ordered by id
func (d *DB) ListRequestsByStatus(ctx context.Context, status model.RequestStatus) ([]model.Request, error) {
	rows, err := d.pool.Query(ctx, `SELECT `+requestColumns+` FROM request r WHERE r.status = $1 ORDER BY r.id`, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []model.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, *r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating requests: %w", err)
	}

	return requests, nil
}
