package services

import (
	"context"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/staffing-platform/referral-matcher/internal/config"
	"github.com/staffing-platform/referral-matcher/pkg/core/matcher"
	"github.com/staffing-platform/referral-matcher/pkg/core/model"
)

// PreviewMatchesResult is a ranked selection that has not been persisted
type PreviewMatchesResult struct {
	RequestID  string
	Candidates []model.Profile
	Eligible   int
	Report     matcher.FilterReport
}

// PreviewMatches runs the same selection as FindMatches without saving anything
func PreviewMatches(
	ctx context.Context,
	store SelectionStore,
	clock Clock,
	rng *rand.Rand,
	cfg *config.Config,
	logger *zap.Logger,
	requestID string,
	max int,
) (*PreviewMatchesResult, error) {
	if max <= 0 {
		return &PreviewMatchesResult{RequestID: requestID, Candidates: []model.Profile{}}, nil
	}

	request, outcome, err := selectCandidates(ctx, store, clock, rng, cfg, logger, requestID, max)
	if err != nil {
		return nil, err
	}

	logger.Info("Preview selection complete",
		zap.String("request_id", request.ID),
		zap.Int("eligible", outcome.Eligible),
		zap.Int("selected", len(outcome.Selected)))

	return &PreviewMatchesResult{
		RequestID:  request.ID,
		Candidates: outcome.Selected,
		Eligible:   outcome.Eligible,
		Report:     outcome.Report,
	}, nil
}
