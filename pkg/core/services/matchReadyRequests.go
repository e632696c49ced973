package services

import (
	"context"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/staffing-platform/referral-matcher/internal/config"
	"github.com/staffing-platform/referral-matcher/pkg/core/model"
)

// MatchReadyStore defines the database operations needed for the batch trigger
type MatchReadyStore interface {
	FindMatchesStore
	ListRequestsByStatus(ctx context.Context, status model.RequestStatus) ([]model.Request, error)
	CountMatchesByRequest(ctx context.Context, requestID string) (int, error)
}

// BatchResult summarises a batch run over ready requests
type BatchResult struct {
	// Matched holds one result per request that was run, in request order
	Matched []FindMatchesResult

	// Skipped lists requests that already had matches
	Skipped []string

	// Failed maps request id to the error that stopped it
	Failed map[string]error
}

// MatchReadyRequests runs FindMatches for every READY_FOR_MATCHING request that has no matches yet.
// A failing request is recorded in the result and the batch moves on.
func MatchReadyRequests(
	ctx context.Context,
	store MatchReadyStore,
	clock Clock,
	rng *rand.Rand,
	cfg *config.Config,
	logger *zap.Logger,
	max int,
) (*BatchResult, error) {
	requests, err := store.ListRequestsByStatus(ctx, model.RequestStatusReadyForMatching)
	if err != nil {
		return nil, fmt.Errorf("failed to list ready requests: %w", err)
	}

	logger.Info("Matching ready requests", zap.Int("requests", len(requests)), zap.Int("max", max))

	result := &BatchResult{
		Matched: []FindMatchesResult{},
		Skipped: []string{},
		Failed:  make(map[string]error),
	}

	for _, request := range requests {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		existing, err := store.CountMatchesByRequest(ctx, request.ID)
		if err != nil {
			result.Failed[request.ID] = fmt.Errorf("failed to count existing matches: %w", err)
			logger.Warn("Skipping request", zap.String("request_id", request.ID), zap.Error(err))
			continue
		}
		if existing > 0 {
			logger.Debug("Request already matched",
				zap.String("request_id", request.ID),
				zap.Int("existing", existing))
			result.Skipped = append(result.Skipped, request.ID)
			continue
		}

		found, err := FindMatches(ctx, store, clock, rng, cfg, logger, request.ID, max)
		if err != nil {
			result.Failed[request.ID] = err
			logger.Warn("Matching failed", zap.String("request_id", request.ID), zap.Error(err))
			continue
		}
		result.Matched = append(result.Matched, *found)
	}

	logger.Info("Batch complete",
		zap.Int("matched", len(result.Matched)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("failed", len(result.Failed)))

	return result, nil
}
