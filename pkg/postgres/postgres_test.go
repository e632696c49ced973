package postgres

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffing-platform/referral-matcher/pkg/core/model"
)

func TestMigrationFiles_SortedAndEmbedded(t *testing.T) {
	files, err := migrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, files)

	assert.Equal(t, "001_create_matching_schema.sql", files[0])
	assert.IsIncreasing(t, files)
}

func TestMigrationFiles_CreateMatchTable(t *testing.T) {
	content, err := fs.ReadFile(migrationsFS, "migrations/001_create_matching_schema.sql")
	require.NoError(t, err)

	sql := string(content)
	for _, table := range []string{"wfa_status", "profile", "profile_city", "profile_language", "request", "request_city", "match"} {
		assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS "+table+" ", "missing table %s", table)
	}
}

func TestProfileStatus(t *testing.T) {
	status, err := profileStatus("APPROVED")
	require.NoError(t, err)
	assert.Equal(t, model.ProfileStatusApproved, status)

	for _, raw := range []string{"approved", "", "DELETED"} {
		_, err := profileStatus(raw)
		assert.Error(t, err, "status %q", raw)
	}
}
