package matcher

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/staffing-platform/referral-matcher/pkg/core/model"
)

// SelectionConfig contains the inputs for a single selection run
type SelectionConfig struct {
	// Request being matched
	Request *model.Request

	// Candidates is the profile pool, possibly pre-narrowed by the store
	Candidates []model.Profile

	// Today is the evaluation day for WFA windows and urgency
	Today time.Time

	// GracePeriod is the window before a WFA end date during which a profile is urgent
	GracePeriod time.Duration

	// Max is the maximum number of profiles to select. Zero or negative selects nothing.
	Max int

	// Rand drives the tie-break shuffle
	Rand *rand.Rand

	// Prepare, when set, runs on the eligible profiles before ranking and may fill them in place
	Prepare func(eligible []model.Profile) error
}

// SelectionOutcome represents the result of a selection run
type SelectionOutcome struct {
	// Selected profiles in ranked order, at most Max long
	Selected []model.Profile

	// Eligible is the number of profiles that passed the filter
	Eligible int

	// Report has per-criterion drop counts
	Report FilterReport
}

// Select filters, ranks and truncates the candidate pool for a request
func Select(cfg SelectionConfig) (*SelectionOutcome, error) {
	if cfg.Request == nil {
		return nil, errors.New("selection requires a request")
	}
	if cfg.Rand == nil {
		return nil, errors.New("selection requires a random source")
	}

	eligible, report, err := FilterEligible(cfg.Request, cfg.Candidates, cfg.Today)
	if err != nil {
		return nil, err
	}

	outcome := &SelectionOutcome{
		Selected: []model.Profile{},
		Eligible: len(eligible),
		Report:   report,
	}
	if cfg.Max <= 0 || len(eligible) == 0 {
		return outcome, nil
	}

	if cfg.Prepare != nil {
		if err := cfg.Prepare(eligible); err != nil {
			return nil, err
		}
	}

	ranked := RankCandidates(eligible, cfg.Today, cfg.GracePeriod, cfg.Rand)
	outcome.Selected = ranked[:min(cfg.Max, len(ranked))]

	return outcome, nil
}
