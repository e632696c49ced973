package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/staffing-platform/referral-matcher/internal/config"
	"github.com/staffing-platform/referral-matcher/pkg/core/matcher"
	"github.com/staffing-platform/referral-matcher/pkg/core/model"
)

// Clock returns the current time. Services only use its calendar day.
type Clock func() time.Time

// NewRand returns the random source used for tie-breaks.
// A zero seed seeds from the current time so every run reshuffles.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// RandSource hands out one generator per invocation and is safe for concurrent use.
// With a fixed seed the sequence of generators is reproducible, but every
// invocation still gets a different tie-break order.
type RandSource struct {
	seed  uint64
	calls atomic.Uint64
}

// NewRandSource returns a RandSource; a zero seed seeds each generator from the current time
func NewRandSource(seed uint64) *RandSource {
	return &RandSource{seed: seed}
}

// Next returns a fresh generator for a single invocation
func (s *RandSource) Next() *rand.Rand {
	n := s.calls.Add(1)
	base := s.seed
	if base == 0 {
		base = uint64(time.Now().UnixNano())
	}
	mixed := base + n*0x9e3779b97f4a7c15
	return rand.New(rand.NewPCG(mixed, mixed^0x9e3779b97f4a7c15))
}

// SelectionStore is the read side shared by every matching service
type SelectionStore interface {
	GetRequestByID(ctx context.Context, id string) (*model.Request, error)
	ListCandidateProfiles(ctx context.Context, today time.Time) ([]model.Profile, error)
	ListWFAStatuses(ctx context.Context) ([]model.WFAStatus, error)
}

// WFAStatusRefresher is implemented by stores that serve WFA statuses from a cache.
// RefreshWFAStatuses drops the cached table and reloads it from the source of truth.
type WFAStatusRefresher interface {
	RefreshWFAStatuses(ctx context.Context) ([]model.WFAStatus, error)
}

var errUnknownWFAStatus = errors.New("unknown WFA status")

// selectCandidates loads a request and its candidate pool, then filters, ranks and truncates it
func selectCandidates(
	ctx context.Context,
	store SelectionStore,
	clock Clock,
	rng *rand.Rand,
	cfg *config.Config,
	logger *zap.Logger,
	requestID string,
	max int,
) (*model.Request, *matcher.SelectionOutcome, error) {
	request, err := store.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load request: %w", err)
	}

	// An unknown code must fail before the pool is fetched
	if _, err := matcher.AcceptableLanguages(request.LanguageRequirementCode); err != nil {
		return nil, nil, fmt.Errorf("request %s: %w", request.ID, err)
	}

	today := model.Date(clock())
	logger.Debug("Loading candidate pool",
		zap.String("request_id", request.ID),
		zap.String("today", today.Format(model.DateLayout)))

	candidates, err := store.ListCandidateProfiles(ctx, today)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load candidate profiles: %w", err)
	}

	outcome, err := matcher.Select(matcher.SelectionConfig{
		Request:     request,
		Candidates:  candidates,
		Today:       today,
		GracePeriod: cfg.GracePeriod,
		Max:         max,
		Rand:        rng,
		Prepare: func(eligible []model.Profile) error {
			return attachWFAStatuses(ctx, store, logger, eligible)
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to select candidates for request %s: %w", request.ID, err)
	}

	logger.Debug("Filtered candidate pool",
		zap.String("request_id", request.ID),
		zap.Int("initial", outcome.Report.Initial),
		zap.Any("dropped", outcome.Report.Dropped),
		zap.Int("eligible", outcome.Eligible),
		zap.Int("selected", len(outcome.Selected)))

	return request, outcome, nil
}

// attachWFAStatuses fills in the WFA status of each eligible profile.
// An id missing from the table triggers one reload when the store caches it.
func attachWFAStatuses(ctx context.Context, store SelectionStore, logger *zap.Logger, eligible []model.Profile) error {
	statuses, err := store.ListWFAStatuses(ctx)
	if err != nil {
		return fmt.Errorf("failed to load WFA statuses: %w", err)
	}

	err = hydrateWFAStatuses(eligible, statuses)
	refresher, ok := store.(WFAStatusRefresher)
	if !errors.Is(err, errUnknownWFAStatus) || !ok {
		return err
	}

	logger.Warn("WFA status table looks stale, reloading", zap.Error(err))
	statuses, err = refresher.RefreshWFAStatuses(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload WFA statuses: %w", err)
	}
	return hydrateWFAStatuses(eligible, statuses)
}

// hydrateWFAStatuses attaches the referenced WFA status to each profile in place
func hydrateWFAStatuses(profiles []model.Profile, statuses []model.WFAStatus) error {
	byID := make(map[string]model.WFAStatus, len(statuses))
	for _, s := range statuses {
		byID[s.ID] = s
	}

	for i := range profiles {
		p := &profiles[i]
		if p.WFAStatusID == nil {
			p.WFAStatus = nil
			continue
		}
		status, ok := byID[*p.WFAStatusID]
		if !ok {
			return fmt.Errorf("profile %s references %w %s", p.ID, errUnknownWFAStatus, *p.WFAStatusID)
		}
		p.WFAStatus = &status
	}

	return nil
}
