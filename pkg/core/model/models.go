package model

import "time"

type ProfileStatus string

const (
	ProfileStatusIncomplete ProfileStatus = "INCOMPLETE"
	ProfileStatusPending    ProfileStatus = "PENDING"
	ProfileStatusApproved   ProfileStatus = "APPROVED"
	ProfileStatusArchived   ProfileStatus = "ARCHIVED"
)

func (s ProfileStatus) IsValid() bool {
	switch s {
	case ProfileStatusIncomplete, ProfileStatusPending, ProfileStatusApproved, ProfileStatusArchived:
		return true
	}
	return false
}

type LanguagePreference string

const (
	LanguageEnglish   LanguagePreference = "ENGLISH"
	LanguageFrench    LanguagePreference = "FRENCH"
	LanguageBilingual LanguagePreference = "BILINGUAL"
)

type RequestStatus string

const (
	RequestStatusDraft            RequestStatus = "DRAFT"
	RequestStatusSubmitted        RequestStatus = "SUBMITTED"
	RequestStatusReadyForMatching RequestStatus = "READY_FOR_MATCHING"
	RequestStatusMatched          RequestStatus = "MATCHED"
	RequestStatusClosed           RequestStatus = "CLOSED"
)

type MatchStatus string

const (
	MatchStatusPending  MatchStatus = "PENDING"
	MatchStatusAccepted MatchStatus = "ACCEPTED"
	MatchStatusRejected MatchStatus = "REJECTED"
)

// WFAStatus is a workforce adjustment lookup value.
// A lower SortOrder means higher selection priority; nil sorts after everything else.
type WFAStatus struct {
	ID        string
	Code      string
	Name      string
	SortOrder *int
}

// Profile represents an employee's referral availability record
type Profile struct {
	ID                   string
	Status               ProfileStatus
	AvailableForReferral bool

	PreferredClassificationIDs []string
	PreferredCityIDs           []string
	PreferredLanguages         []LanguagePreference

	// WFAStatusID references the lookup row; WFAStatus is filled in from reference data
	WFAStatusID *string
	WFAStatus   *WFAStatus

	WFAStartDate *time.Time // nullable
	WFAEndDate   *time.Time // nullable
}

// Request represents a staffing request for a classified position
type Request struct {
	ID                      string
	Status                  RequestStatus
	ClassificationID        string
	CityIDs                 []string
	LanguageRequirementCode string
}

// Match pairs a request with a proposed profile
type Match struct {
	ID        string
	RequestID string
	ProfileID string
	Rank      int
	Status    MatchStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
