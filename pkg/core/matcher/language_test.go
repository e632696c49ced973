package matcher

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffing-platform/referral-matcher/pkg/core/model"
)

func TestAcceptableLanguages_Table(t *testing.T) {
	tests := []struct {
		code     string
		accepted []model.LanguagePreference
		rejected []model.LanguagePreference
	}{
		{
			code:     "BI",
			accepted: []model.LanguagePreference{model.LanguageBilingual},
			rejected: []model.LanguagePreference{model.LanguageEnglish, model.LanguageFrench},
		},
		{
			code:     "BNI",
			accepted: []model.LanguagePreference{model.LanguageBilingual},
			rejected: []model.LanguagePreference{model.LanguageEnglish, model.LanguageFrench},
		},
		{
			code:     "EE-AE",
			accepted: []model.LanguagePreference{model.LanguageEnglish},
			rejected: []model.LanguagePreference{model.LanguageFrench, model.LanguageBilingual},
		},
		{
			code:     "FE",
			accepted: []model.LanguagePreference{model.LanguageFrench},
			rejected: []model.LanguagePreference{model.LanguageEnglish, model.LanguageBilingual},
		},
		{
			code:     "EF-AF",
			accepted: []model.LanguagePreference{model.LanguageEnglish, model.LanguageFrench},
			rejected: []model.LanguagePreference{model.LanguageBilingual},
		},
		{
			code:     "VAR",
			accepted: []model.LanguagePreference{model.LanguageEnglish, model.LanguageFrench, model.LanguageBilingual},
		},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			set, err := AcceptableLanguages(tt.code)
			require.NoError(t, err)

			assert.Len(t, set, len(tt.accepted))
			for _, pref := range tt.accepted {
				assert.True(t, set.Accepts([]model.LanguagePreference{pref}), "%s should accept %s", tt.code, pref)
			}
			for _, pref := range tt.rejected {
				assert.False(t, set.Accepts([]model.LanguagePreference{pref}), "%s should reject %s", tt.code, pref)
			}
		})
	}
}

func TestAcceptableLanguages_UnknownCode(t *testing.T) {
	set, err := AcceptableLanguages("XYZ")

	assert.Nil(t, set)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownLanguageRequirement))

	var codeErr *UnknownLanguageRequirementError
	require.True(t, errors.As(err, &codeErr))
	assert.Equal(t, "XYZ", codeErr.Code)
	assert.Contains(t, err.Error(), `"XYZ"`)
}

func TestAcceptableLanguages_EmptyCodeIsUnknown(t *testing.T) {
	_, err := AcceptableLanguages("")
	assert.ErrorIs(t, err, ErrUnknownLanguageRequirement)
}

func TestAcceptableLanguages_ReturnsCopy(t *testing.T) {
	set, err := AcceptableLanguages("BI")
	require.NoError(t, err)

	set[model.LanguageEnglish] = true

	again, err := AcceptableLanguages("BI")
	require.NoError(t, err)
	assert.False(t, again.Accepts([]model.LanguagePreference{model.LanguageEnglish}))
}

func TestLanguageSet_AcceptsAnyOverlap(t *testing.T) {
	set, err := AcceptableLanguages("EF-AF")
	require.NoError(t, err)

	assert.True(t, set.Accepts([]model.LanguagePreference{model.LanguageBilingual, model.LanguageFrench}))
	assert.False(t, set.Accepts([]model.LanguagePreference{model.LanguageBilingual}))
	assert.False(t, set.Accepts(nil))
}

func TestLanguageSet_VARRejectsEmptyPreferences(t *testing.T) {
	set, err := AcceptableLanguages("VAR")
	require.NoError(t, err)

	assert.False(t, set.Accepts([]model.LanguagePreference{}))
}

func TestSupportedLanguageCodes(t *testing.T) {
	assert.Equal(t, []string{"BI", "BNI", "EE-AE", "EF-AF", "FE", "VAR"}, SupportedLanguageCodes())
}
