package services

import (
	"context"
	"fmt"
	"maps"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/staffing-platform/referral-matcher/internal/config"
	"github.com/staffing-platform/referral-matcher/pkg/clients/sheetsclient"
	"github.com/staffing-platform/referral-matcher/pkg/core/model"
	"github.com/staffing-platform/referral-matcher/pkg/db"
)

var testNow = time.Date(2025, 5, 15, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time {
	return testNow
}

func seededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.DatabaseURL = "postgres://matcher@localhost/matcher"
	cfg.Sheets.SpreadsheetID = "sheet-1"
	return &cfg
}

func strPtr(s string) *string {
	return &s
}

func intPtr(n int) *int {
	return &n
}

func daysFromNow(n int) *time.Time {
	d := model.Date(testNow).AddDate(0, 0, n)
	return &d
}

func testWFAStatuses() []model.WFAStatus {
	return []model.WFAStatus{
		{ID: "wfa-surplus", Code: "SURPLUS", Name: "Surplus", SortOrder: intPtr(1)},
		{ID: "wfa-affected", Code: "AFFECTED", Name: "Affected", SortOrder: intPtr(2)},
		{ID: "wfa-other", Code: "OTHER", Name: "Other"},
	}
}

// candidate returns a profile eligible for readyRequest
func candidate(id string) model.Profile {
	return model.Profile{
		ID:                         id,
		Status:                     model.ProfileStatusApproved,
		AvailableForReferral:       true,
		PreferredClassificationIDs: []string{"IT-01"},
		PreferredCityIDs:           []string{"ottawa"},
		PreferredLanguages:         []model.LanguagePreference{model.LanguageBilingual},
	}
}

func readyRequest(id string) model.Request {
	return model.Request{
		ID:                      id,
		Status:                  model.RequestStatusReadyForMatching,
		ClassificationID:        "IT-01",
		CityIDs:                 []string{"ottawa", "toronto"},
		LanguageRequirementCode: "BI",
	}
}

// mockMatchingStore implements every store interface the services need
type mockMatchingStore struct {
	requests   map[string]model.Request
	candidates []model.Profile
	statuses   []model.WFAStatus
	matches    []model.Match

	getRequestErr     error
	listRequestsErr   error
	listCandidatesErr error
	listStatusesErr   error
	listMatchesErr    error
	countErr          map[string]error

	// saveErrAfter fails SaveMatch once this many saves have succeeded; negative never fails
	saveErrAfter int
	saveErr      error

	getRequestCalls     int
	listCandidatesCalls int
	saveCalls           int
}

func newMockMatchingStore(requests ...model.Request) *mockMatchingStore {
	m := &mockMatchingStore{
		requests:     make(map[string]model.Request),
		statuses:     testWFAStatuses(),
		countErr:     make(map[string]error),
		saveErrAfter: -1,
	}
	for _, r := range requests {
		m.requests[r.ID] = r
	}
	return m
}

func (m *mockMatchingStore) GetRequestByID(ctx context.Context, id string) (*model.Request, error) {
	m.getRequestCalls++
	if m.getRequestErr != nil {
		return nil, m.getRequestErr
	}
	r, ok := m.requests[id]
	if !ok {
		return nil, fmt.Errorf("request %s: %w", id, db.ErrNotFound)
	}
	return &r, nil
}

func (m *mockMatchingStore) ListRequestsByStatus(ctx context.Context, status model.RequestStatus) ([]model.Request, error) {
	if m.listRequestsErr != nil {
		return nil, m.listRequestsErr
	}
	var out []model.Request
	for _, id := range slices.Sorted(maps.Keys(m.requests)) {
		if m.requests[id].Status == status {
			out = append(out, m.requests[id])
		}
	}
	return out, nil
}

func (m *mockMatchingStore) ListCandidateProfiles(ctx context.Context, today time.Time) ([]model.Profile, error) {
	m.listCandidatesCalls++
	if m.listCandidatesErr != nil {
		return nil, m.listCandidatesErr
	}
	out := make([]model.Profile, len(m.candidates))
	copy(out, m.candidates)
	return out, nil
}

func (m *mockMatchingStore) ListWFAStatuses(ctx context.Context) ([]model.WFAStatus, error) {
	if m.listStatusesErr != nil {
		return nil, m.listStatusesErr
	}
	return m.statuses, nil
}

func (m *mockMatchingStore) SaveMatch(ctx context.Context, match *model.Match) (*model.Match, error) {
	if m.saveErrAfter >= 0 && m.saveCalls >= m.saveErrAfter {
		return nil, m.saveErr
	}
	m.saveCalls++
	saved := *match
	saved.ID = fmt.Sprintf("match-%d", len(m.matches)+1)
	saved.CreatedAt = testNow
	saved.UpdatedAt = testNow
	m.matches = append(m.matches, saved)
	return &saved, nil
}

func (m *mockMatchingStore) ListMatchesByRequest(ctx context.Context, requestID string) ([]model.Match, error) {
	if m.listMatchesErr != nil {
		return nil, m.listMatchesErr
	}
	var out []model.Match
	for _, match := range m.matches {
		if match.RequestID == requestID {
			out = append(out, match)
		}
	}
	return out, nil
}

func (m *mockMatchingStore) CountMatchesByRequest(ctx context.Context, requestID string) (int, error) {
	if err := m.countErr[requestID]; err != nil {
		return 0, err
	}
	count := 0
	for _, match := range m.matches {
		if match.RequestID == requestID {
			count++
		}
	}
	return count, nil
}

// mockSheetsClient implements SheetsClient for testing
type mockSheetsClient struct {
	spreadsheetID string
	published     *sheetsclient.PublishedMatches
	publishErr    error
}

func (m *mockSheetsClient) PublishMatches(spreadsheetID string, published *sheetsclient.PublishedMatches) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.spreadsheetID = spreadsheetID
	m.published = published
	return nil
}
