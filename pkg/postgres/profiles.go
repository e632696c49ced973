package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/staffing-platform/referral-matcher/pkg/core/model"
)

// ListCandidateProfiles returns approved, referral-available profiles whose WFA
// window covers today. Classification, city and language overlap are left to the
// in-memory filter, so the preference sets are returned in full.
func (d *DB) ListCandidateProfiles(ctx context.Context, today time.Time) ([]model.Profile, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT
			p.id,
			p.status,
			p.available_for_referral,
			p.wfa_status_id,
			p.wfa_start_date,
			p.wfa_end_date,
			COALESCE((SELECT array_agg(pc.classification_id ORDER BY pc.classification_id)
			          FROM profile_classification pc WHERE pc.profile_id = p.id), '{}'),
			COALESCE((SELECT array_agg(pct.city_id ORDER BY pct.city_id)
			          FROM profile_city pct WHERE pct.profile_id = p.id), '{}'),
			COALESCE((SELECT array_agg(pl.language ORDER BY pl.language)
			          FROM profile_language pl WHERE pl.profile_id = p.id), '{}')
		FROM profile p
		WHERE p.status = $1
		  AND p.available_for_referral
		  AND (p.wfa_start_date IS NULL OR p.wfa_start_date <= $2::date)
		  AND (p.wfa_end_date IS NULL OR p.wfa_end_date >= $2::date)
		ORDER BY p.id
	`, string(model.ProfileStatusApproved), model.Date(today))
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate profiles: %w", err)
	}
	defer rows.Close()

	var profiles []model.Profile
	for rows.Next() {
		var p model.Profile
		var status string
		var languages []string
		if err := rows.Scan(
			&p.ID,
			&status,
			&p.AvailableForReferral,
			&p.WFAStatusID,
			&p.WFAStartDate,
			&p.WFAEndDate,
			&p.PreferredClassificationIDs,
			&p.PreferredCityIDs,
			&languages,
		); err != nil {
			return nil, fmt.Errorf("failed to scan candidate profile: %w", err)
		}

		if p.Status, err = profileStatus(status); err != nil {
			return nil, fmt.Errorf("profile %s: %w", p.ID, err)
		}
		p.PreferredLanguages = make([]model.LanguagePreference, len(languages))
		for i, l := range languages {
			p.PreferredLanguages[i] = model.LanguagePreference(l)
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidate profiles: %w", err)
	}

	return profiles, nil
}

// profileStatus converts a stored status, rejecting values outside the known set
func profileStatus(raw string) (model.ProfileStatus, error) {
	status := model.ProfileStatus(raw)
	if !status.IsValid() {
		return "", fmt.Errorf("unknown profile status %q", raw)
	}
	return status, nil
}

// ListWFAStatuses returns the WFA status reference table
func (d *DB) ListWFAStatuses(ctx context.Context) ([]model.WFAStatus, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, code, name, sort_order
		FROM wfa_status
		ORDER BY sort_order NULLS LAST, code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query wfa statuses: %w", err)
	}
	defer rows.Close()

	var statuses []model.WFAStatus
	for rows.Next() {
		var s model.WFAStatus
		if err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan wfa status: %w", err)
		}
		statuses = append(statuses, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wfa statuses: %w", err)
	}

	return statuses, nil
}
