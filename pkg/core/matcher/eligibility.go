package matcher

import (
	"slices"
	"time"

	"github.com/staffing-platform/referral-matcher/pkg/core/model"
)

// Criterion names, used as keys in FilterReport.Dropped
const (
	CriterionStatus         = "Status"
	CriterionAvailability   = "Availability"
	CriterionClassification = "Classification"
	CriterionCity           = "City"
	CriterionLanguage       = "Language"
	CriterionWFAWindow      = "WFAWindow"
)

// Criterion is a hard eligibility constraint.
// A profile is eligible only if every criterion accepts it.
type Criterion interface {
	// Name returns a human-readable identifier for this criterion
	Name() string

	// IsEligible returns false if the profile violates the constraint for this request
	IsEligible(profile *model.Profile) bool
}

// FilterReport counts how many profiles were dropped at each criterion.
// A profile is attributed to the first criterion it fails.
type FilterReport struct {
	Initial int
	Dropped map[string]int
	Left    int
}

type criterionFunc struct {
	name string
	fn   func(p *model.Profile) bool
}

func (c criterionFunc) Name() string { return c.name }

func (c criterionFunc) IsEligible(p *model.Profile) bool { return c.fn(p) }

// BuildCriteria returns the hard constraints for a request evaluated on the given day.
// It fails if the request's language requirement code is not recognised.
func BuildCriteria(request *model.Request, today time.Time) ([]Criterion, error) {
	languages, err := AcceptableLanguages(request.LanguageRequirementCode)
	if err != nil {
		return nil, err
	}

	today = model.Date(today)
	classificationID := request.ClassificationID
	cityIDs := request.CityIDs

	return []Criterion{
		criterionFunc{CriterionStatus, func(p *model.Profile) bool {
			return p.Status == model.ProfileStatusApproved
		}},
		criterionFunc{CriterionAvailability, func(p *model.Profile) bool {
			return p.AvailableForReferral
		}},
		criterionFunc{CriterionClassification, func(p *model.Profile) bool {
			return slices.Contains(p.PreferredClassificationIDs, classificationID)
		}},
		criterionFunc{CriterionCity, func(p *model.Profile) bool {
			return intersects(p.PreferredCityIDs, cityIDs)
		}},
		criterionFunc{CriterionLanguage, func(p *model.Profile) bool {
			return languages.Accepts(p.PreferredLanguages)
		}},
		criterionFunc{CriterionWFAWindow, func(p *model.Profile) bool {
			return withinWFAWindow(p, today)
		}},
	}, nil
}

// FilterEligible returns the profiles that satisfy every hard constraint of the request.
// Input order is preserved and the input slice is not modified.
func FilterEligible(request *model.Request, profiles []model.Profile, today time.Time) ([]model.Profile, FilterReport, error) {
	criteria, err := BuildCriteria(request, today)
	if err != nil {
		return nil, FilterReport{}, err
	}

	report := FilterReport{
		Initial: len(profiles),
		Dropped: make(map[string]int),
	}

	eligible := make([]model.Profile, 0, len(profiles))
	for i := range profiles {
		if failed := firstFailing(criteria, &profiles[i]); failed != "" {
			report.Dropped[failed]++
			continue
		}
		eligible = append(eligible, profiles[i])
	}

	report.Left = len(eligible)
	return eligible, report, nil
}

func firstFailing(criteria []Criterion, profile *model.Profile) string {
	for _, c := range criteria {
		if !c.IsEligible(profile) {
			return c.Name()
		}
	}
	return ""
}

// withinWFAWindow checks the profile has started and not yet ended on today.
// Missing bounds are unrestricted.
func withinWFAWindow(p *model.Profile, today time.Time) bool {
	if p.WFAStartDate != nil && model.Date(*p.WFAStartDate).After(today) {
		return false
	}
	if p.WFAEndDate != nil && model.Date(*p.WFAEndDate).Before(today) {
		return false
	}
	return true
}

func intersects(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(b))
	for _, id := range b {
		set[id] = struct{}{}
	}
	for _, id := range a {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}
