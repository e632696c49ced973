package matcher

import (
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/staffing-platform/referral-matcher/pkg/core/model"
)

// noSortOrder ranks profiles without a WFA sort order behind every defined tier
const noSortOrder = math.MaxInt

// WFASortKey returns the tier key for a profile. Lower keys rank first.
func WFASortKey(p *model.Profile) int {
	if p.WFAStatus == nil || p.WFAStatus.SortOrder == nil {
		return noSortOrder
	}
	return *p.WFAStatus.SortOrder
}

// IsUrgent returns true if the profile's WFA end date falls on or before today + gracePeriod.
// Profiles without an end date are never urgent.
func IsUrgent(p *model.Profile, today time.Time, gracePeriod time.Duration) bool {
	if p.WFAEndDate == nil {
		return false
	}
	cutoff := model.Date(today).Add(gracePeriod)
	return !model.Date(*p.WFAEndDate).After(cutoff)
}

// RankCandidates orders eligible profiles for selection:
//  1. WFA sort order ascending (missing sort order last)
//  2. urgent profiles before non-urgent ones within a tier
//  3. random order among profiles equal on both keys
//
// The returned slice is a new slice; the input is left untouched.
// rng must not be nil, and a fresh permutation is drawn on every call.
func RankCandidates(profiles []model.Profile, today time.Time, gracePeriod time.Duration, rng *rand.Rand) []model.Profile {
	type ranked struct {
		profile model.Profile
		tier    int
		urgent  bool
	}

	entries := make([]ranked, len(profiles))
	for i := range profiles {
		entries[i] = ranked{
			profile: profiles[i],
			tier:    WFASortKey(&profiles[i]),
			urgent:  IsUrgent(&profiles[i], today, gracePeriod),
		}
	}

	// Shuffle first so the stable sort leaves equal entries in random order
	rng.Shuffle(len(entries), func(i, j int) {
		entries[i], entries[j] = entries[j], entries[i]
	})

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].tier != entries[j].tier {
			return entries[i].tier < entries[j].tier
		}
		return entries[i].urgent && !entries[j].urgent
	})

	out := make([]model.Profile, len(entries))
	for i, e := range entries {
		out[i] = e.profile
	}
	return out
}
