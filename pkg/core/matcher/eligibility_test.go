package matcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffing-platform/referral-matcher/pkg/core/model"
)

var testToday = time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)

func daysFromToday(n int) *time.Time {
	d := testToday.AddDate(0, 0, n)
	return &d
}

func intPtr(n int) *int {
	return &n
}

// eligibleProfile returns a profile that passes every criterion for testRequest
func eligibleProfile(id string) model.Profile {
	return model.Profile{
		ID:                         id,
		Status:                     model.ProfileStatusApproved,
		AvailableForReferral:       true,
		PreferredClassificationIDs: []string{"IT-01"},
		PreferredCityIDs:           []string{"ottawa"},
		PreferredLanguages:         []model.LanguagePreference{model.LanguageBilingual},
	}
}

func testRequest() *model.Request {
	return &model.Request{
		ID:                      "req-1",
		Status:                  model.RequestStatusReadyForMatching,
		ClassificationID:        "IT-01",
		CityIDs:                 []string{"ottawa", "toronto"},
		LanguageRequirementCode: "BI",
	}
}

func TestFilterEligible_FailsExactlyOneCondition(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(p *model.Profile)
		criterion string
	}{
		{"pending status", func(p *model.Profile) { p.Status = model.ProfileStatusPending }, CriterionStatus},
		{"archived status", func(p *model.Profile) { p.Status = model.ProfileStatusArchived }, CriterionStatus},
		{"incomplete status", func(p *model.Profile) { p.Status = model.ProfileStatusIncomplete }, CriterionStatus},
		{"not available", func(p *model.Profile) { p.AvailableForReferral = false }, CriterionAvailability},
		{"other classification", func(p *model.Profile) { p.PreferredClassificationIDs = []string{"AS-02"} }, CriterionClassification},
		{"no classification", func(p *model.Profile) { p.PreferredClassificationIDs = nil }, CriterionClassification},
		{"other city", func(p *model.Profile) { p.PreferredCityIDs = []string{"vancouver"} }, CriterionCity},
		{"no city", func(p *model.Profile) { p.PreferredCityIDs = nil }, CriterionCity},
		{"english only", func(p *model.Profile) { p.PreferredLanguages = []model.LanguagePreference{model.LanguageEnglish} }, CriterionLanguage},
		{"no language", func(p *model.Profile) { p.PreferredLanguages = nil }, CriterionLanguage},
		{"starts tomorrow", func(p *model.Profile) { p.WFAStartDate = daysFromToday(1) }, CriterionWFAWindow},
		{"ended yesterday", func(p *model.Profile) { p.WFAEndDate = daysFromToday(-1) }, CriterionWFAWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := eligibleProfile("p1")
			tt.mutate(&p)

			eligible, report, err := FilterEligible(testRequest(), []model.Profile{p}, testToday)

			require.NoError(t, err)
			assert.Empty(t, eligible)
			assert.Equal(t, 1, report.Initial)
			assert.Equal(t, 0, report.Left)
			assert.Equal(t, map[string]int{tt.criterion: 1}, report.Dropped)
		})
	}
}

func TestFilterEligible_AllConditionsHold(t *testing.T) {
	p := eligibleProfile("p1")

	eligible, report, err := FilterEligible(testRequest(), []model.Profile{p}, testToday)

	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, "p1", eligible[0].ID)
	assert.Equal(t, 1, report.Left)
	assert.Empty(t, report.Dropped)
}

func TestFilterEligible_WFAWindowBoundaries(t *testing.T) {
	startsToday := eligibleProfile("starts-today")
	startsToday.WFAStartDate = daysFromToday(0)

	endsToday := eligibleProfile("ends-today")
	endsToday.WFAEndDate = daysFromToday(0)

	openWindow := eligibleProfile("open")
	openWindow.WFAStartDate = daysFromToday(-30)
	openWindow.WFAEndDate = daysFromToday(30)

	// Time-of-day on the stored dates must not matter
	lateStart := eligibleProfile("late-start")
	ts := testToday.Add(23 * time.Hour)
	lateStart.WFAStartDate = &ts

	eligible, _, err := FilterEligible(testRequest(), []model.Profile{startsToday, endsToday, openWindow, lateStart}, testToday)

	require.NoError(t, err)
	assert.Len(t, eligible, 4)
}

func TestFilterEligible_PreservesOrderAndInput(t *testing.T) {
	a := eligibleProfile("a")
	b := eligibleProfile("b")
	b.AvailableForReferral = false
	c := eligibleProfile("c")
	input := []model.Profile{a, b, c}

	eligible, report, err := FilterEligible(testRequest(), input, testToday)

	require.NoError(t, err)
	require.Len(t, eligible, 2)
	assert.Equal(t, "a", eligible[0].ID)
	assert.Equal(t, "c", eligible[1].ID)
	assert.Len(t, input, 3)
	assert.Equal(t, 3, report.Initial)
	assert.Equal(t, 1, report.Dropped[CriterionAvailability])
}

func TestFilterEligible_UnknownLanguageCodeFailsEvenWithEmptyPool(t *testing.T) {
	req := testRequest()
	req.LanguageRequirementCode = "XYZ"

	eligible, _, err := FilterEligible(req, nil, testToday)

	assert.Nil(t, eligible)
	assert.ErrorIs(t, err, ErrUnknownLanguageRequirement)
}

func TestFilterEligible_ScenarioA(t *testing.T) {
	// Request: IT-01, cities {Ottawa, Toronto}, language BI
	ottawa := eligibleProfile("ottawa-profile")

	vancouver := eligibleProfile("vancouver-profile")
	vancouver.PreferredCityIDs = []string{"vancouver"}

	eligible, _, err := FilterEligible(testRequest(), []model.Profile{ottawa, vancouver}, testToday)

	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, "ottawa-profile", eligible[0].ID)
}

func TestFilterEligible_ScenarioC(t *testing.T) {
	req := testRequest()
	req.LanguageRequirementCode = "EF-AF"

	english := eligibleProfile("english")
	english.PreferredLanguages = []model.LanguagePreference{model.LanguageEnglish}
	french := eligibleProfile("french")
	french.PreferredLanguages = []model.LanguagePreference{model.LanguageFrench}
	bilingual := eligibleProfile("bilingual")
	bilingual.PreferredLanguages = []model.LanguagePreference{model.LanguageBilingual}

	eligible, report, err := FilterEligible(req, []model.Profile{english, french, bilingual}, testToday)

	require.NoError(t, err)
	ids := []string{}
	for _, p := range eligible {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"english", "french"}, ids)
	assert.Equal(t, 1, report.Dropped[CriterionLanguage])
}

func TestFilterEligible_AnyRequestedCityIsEnough(t *testing.T) {
	toronto := eligibleProfile("toronto")
	toronto.PreferredCityIDs = []string{"montreal", "toronto"}

	eligible, _, err := FilterEligible(testRequest(), []model.Profile{toronto}, testToday)

	require.NoError(t, err)
	assert.Len(t, eligible, 1)
}

func TestBuildCriteria_FirstFailingWins(t *testing.T) {
	criteria, err := BuildCriteria(testRequest(), testToday)
	require.NoError(t, err)
	require.Len(t, criteria, 6)

	ok := eligibleProfile("ok")
	assert.Empty(t, firstFailing(criteria, &ok))

	bad := eligibleProfile("bad")
	bad.Status = model.ProfileStatusArchived
	bad.PreferredCityIDs = nil
	assert.Equal(t, CriterionStatus, firstFailing(criteria, &bad))
}
