package matcher

import (
	"errors"
	"fmt"
	"sort"

	"github.com/staffing-platform/referral-matcher/pkg/core/model"
)

// Language requirement codes carried on requests
const (
	LanguageCodeBilingualImperative    = "BI"
	LanguageCodeBilingualNonImperative = "BNI"
	LanguageCodeEnglishEssential       = "EE-AE"
	LanguageCodeFrenchEssential        = "FE"
	LanguageCodeEnglishOrFrench        = "EF-AF"
	LanguageCodeVarious                = "VAR"
)

// ErrUnknownLanguageRequirement is matched by errors.Is for any code missing from the table
var ErrUnknownLanguageRequirement = errors.New("unknown language requirement code")

// UnknownLanguageRequirementError reports a request language code that has no table entry
type UnknownLanguageRequirementError struct {
	Code string
}

func (e *UnknownLanguageRequirementError) Error() string {
	return fmt.Sprintf("unknown language requirement code %q (supported: %v)", e.Code, SupportedLanguageCodes())
}

func (e *UnknownLanguageRequirementError) Is(target error) bool {
	return target == ErrUnknownLanguageRequirement
}

// LanguageSet is the set of profile language preferences a request will accept
type LanguageSet map[model.LanguagePreference]bool

func newLanguageSet(prefs ...model.LanguagePreference) LanguageSet {
	set := make(LanguageSet, len(prefs))
	for _, p := range prefs {
		set[p] = true
	}
	return set
}

// Accepts returns true if at least one of the profile's preferences is in the set.
// An empty preference list never matches.
func (s LanguageSet) Accepts(prefs []model.LanguagePreference) bool {
	for _, p := range prefs {
		if s[p] {
			return true
		}
	}
	return false
}

// languageTable maps request codes to acceptable preferences.
// Adding a code is a new entry here, never a new branch.
var languageTable = map[string]LanguageSet{
	LanguageCodeBilingualImperative:    newLanguageSet(model.LanguageBilingual),
	LanguageCodeBilingualNonImperative: newLanguageSet(model.LanguageBilingual),
	LanguageCodeEnglishEssential:       newLanguageSet(model.LanguageEnglish),
	LanguageCodeFrenchEssential:        newLanguageSet(model.LanguageFrench),
	LanguageCodeEnglishOrFrench:        newLanguageSet(model.LanguageEnglish, model.LanguageFrench),
	LanguageCodeVarious:                newLanguageSet(model.LanguageEnglish, model.LanguageFrench, model.LanguageBilingual),
}

// AcceptableLanguages resolves a request's language requirement code
func AcceptableLanguages(code string) (LanguageSet, error) {
	set, ok := languageTable[code]
	if !ok {
		return nil, &UnknownLanguageRequirementError{Code: code}
	}

	// Hand out a copy so callers can't edit the table
	out := make(LanguageSet, len(set))
	for p := range set {
		out[p] = true
	}
	return out, nil
}

// SupportedLanguageCodes returns the known codes in sorted order
func SupportedLanguageCodes() []string {
	codes := make([]string, 0, len(languageTable))
	for code := range languageTable {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
