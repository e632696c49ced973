package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/staffing-platform/referral-matcher/pkg/core/model"
)

// ListMatchesStore defines the database operations needed for listing a request's matches
type ListMatchesStore interface {
	GetRequestByID(ctx context.Context, id string) (*model.Request, error)
	ListMatchesByRequest(ctx context.Context, requestID string) ([]model.Match, error)
}

// ListMatches returns every match recorded for a request, oldest run first and by rank within a run.
// A request that doesn't exist is an error rather than an empty list.
func ListMatches(ctx context.Context, store ListMatchesStore, logger *zap.Logger, requestID string) ([]model.Match, error) {
	if _, err := store.GetRequestByID(ctx, requestID); err != nil {
		return nil, fmt.Errorf("failed to load request: %w", err)
	}

	matches, err := store.ListMatchesByRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	if matches == nil {
		matches = []model.Match{}
	}

	logger.Debug("Listed matches", zap.String("request_id", requestID), zap.Int("count", len(matches)))

	return matches, nil
}
