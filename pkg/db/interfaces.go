package db

import (
	"context"
	"errors"
	"time"

	"github.com/staffing-platform/referral-matcher/pkg/core/model"
)

// ErrNotFound is returned when a lookup by id resolves to nothing
var ErrNotFound = errors.New("not found")

// RequestStore defines the interface for request lookups
type RequestStore interface {
	GetRequestByID(ctx context.Context, id string) (*model.Request, error)
	ListRequestsByStatus(ctx context.Context, status model.RequestStatus) ([]model.Request, error)
}

// CandidateStore returns the profile pool for matching.
// Implementations pre-filter by approved status, referral availability and
// the WFA date window on the given day; preference overlap is checked in memory.
type CandidateStore interface {
	ListCandidateProfiles(ctx context.Context, today time.Time) ([]model.Profile, error)
}

// WFAStatusStore serves the WFA status reference table
type WFAStatusStore interface {
	ListWFAStatuses(ctx context.Context) ([]model.WFAStatus, error)
}

// MatchStore defines the interface for match persistence.
// SaveMatch assigns identity and timestamps and returns the stored record.
type MatchStore interface {
	SaveMatch(ctx context.Context, match *model.Match) (*model.Match, error)
	ListMatchesByRequest(ctx context.Context, requestID string) ([]model.Match, error)
	CountMatchesByRequest(ctx context.Context, requestID string) (int, error)
}

// Database defines the interface for all database operations.
// postgres.DB implements this interface.
type Database interface {
	RequestStore
	CandidateStore
	WFAStatusStore
	MatchStore
}
