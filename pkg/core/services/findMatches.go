package services

import (
	"context"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/staffing-platform/referral-matcher/internal/config"
	"github.com/staffing-platform/referral-matcher/pkg/core/matcher"
	"github.com/staffing-platform/referral-matcher/pkg/core/model"
)

// FindMatchesStore defines the database operations needed for matching a request
type FindMatchesStore interface {
	SelectionStore
	SaveMatch(ctx context.Context, match *model.Match) (*model.Match, error)
}

// FindMatchesResult represents the result of a matching run
type FindMatchesResult struct {
	RequestID string

	// Matches are the persisted records in ranked order
	Matches []model.Match

	// Eligible is how many profiles passed the filter before truncation
	Eligible int

	Report matcher.FilterReport
}

// FindMatches selects up to max eligible profiles for a request and persists one
// PENDING match per selected profile, rank 1 first.
// Every call appends a new set of matches; callers decide whether a request should be re-run.
func FindMatches(
	ctx context.Context,
	store FindMatchesStore,
	clock Clock,
	rng *rand.Rand,
	cfg *config.Config,
	logger *zap.Logger,
	requestID string,
	max int,
) (*FindMatchesResult, error) {
	if max <= 0 {
		logger.Debug("Max is not positive, nothing to match",
			zap.String("request_id", requestID),
			zap.Int("max", max))
		return &FindMatchesResult{RequestID: requestID, Matches: []model.Match{}}, nil
	}

	logger.Debug("Finding matches", zap.String("request_id", requestID), zap.Int("max", max))

	request, outcome, err := selectCandidates(ctx, store, clock, rng, cfg, logger, requestID, max)
	if err != nil {
		return nil, err
	}

	matches := make([]model.Match, 0, len(outcome.Selected))
	for i, profile := range outcome.Selected {
		saved, err := store.SaveMatch(ctx, &model.Match{
			RequestID: request.ID,
			ProfileID: profile.ID,
			Rank:      i + 1,
			Status:    model.MatchStatusPending,
		})
		if err != nil {
			logger.Error("Failed to persist match, earlier matches are kept",
				zap.String("request_id", request.ID),
				zap.String("profile_id", profile.ID),
				zap.Int("rank", i+1),
				zap.Int("saved", len(matches)),
				zap.Error(err))
			return nil, fmt.Errorf("failed to save match for profile %s: %w", profile.ID, err)
		}
		matches = append(matches, *saved)
	}

	logger.Info("Matches created",
		zap.String("request_id", request.ID),
		zap.Int("eligible", outcome.Eligible),
		zap.Int("matches", len(matches)))

	return &FindMatchesResult{
		RequestID: request.ID,
		Matches:   matches,
		Eligible:  outcome.Eligible,
		Report:    outcome.Report,
	}, nil
}
