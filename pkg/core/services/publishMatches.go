package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/staffing-platform/referral-matcher/internal/config"
	"github.com/staffing-platform/referral-matcher/pkg/clients/sheetsclient"
)

const publishedCreatedLayout = "2006-01-02 15:04"

// SheetsClient defines the interface for publishing to Google Sheets
type SheetsClient interface {
	PublishMatches(spreadsheetID string, published *sheetsclient.PublishedMatches) error
}

// PublishMatches exports a request's matches to the configured spreadsheet for reviewers
func PublishMatches(
	ctx context.Context,
	store ListMatchesStore,
	sheets SheetsClient,
	cfg *config.Config,
	logger *zap.Logger,
	requestID string,
) (*sheetsclient.PublishedMatches, error) {
	if cfg.Sheets.SpreadsheetID == "" {
		return nil, errors.New("no spreadsheet configured for publishing matches")
	}

	request, err := store.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load request: %w", err)
	}

	matches, err := store.ListMatchesByRequest(ctx, request.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	published := &sheetsclient.PublishedMatches{
		RequestID:               request.ID,
		ClassificationID:        request.ClassificationID,
		CityIDs:                 request.CityIDs,
		LanguageRequirementCode: request.LanguageRequirementCode,
		Rows:                    make([]sheetsclient.PublishedMatchRow, 0, len(matches)),
	}
	for _, m := range matches {
		published.Rows = append(published.Rows, sheetsclient.PublishedMatchRow{
			Rank:      m.Rank,
			ProfileID: m.ProfileID,
			Status:    string(m.Status),
			Created:   m.CreatedAt.UTC().Format(publishedCreatedLayout),
			MatchID:   m.ID,
		})
	}

	logger.Debug("Publishing matches",
		zap.String("request_id", request.ID),
		zap.String("tab", published.TabTitle()),
		zap.Int("rows", len(published.Rows)))

	if err := sheets.PublishMatches(cfg.Sheets.SpreadsheetID, published); err != nil {
		return nil, fmt.Errorf("failed to publish matches: %w", err)
	}

	logger.Info("Matches published",
		zap.String("request_id", request.ID),
		zap.String("tab", published.TabTitle()),
		zap.Int("rows", len(published.Rows)))

	return published, nil
}
