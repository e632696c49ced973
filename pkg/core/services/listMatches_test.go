package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/staffing-platform/referral-matcher/pkg/core/model"
	"github.com/staffing-platform/referral-matcher/pkg/db"
)

func TestListMatches_ReturnsRequestMatches(t *testing.T) {
	store := newMockMatchingStore(readyRequest("req-1"), readyRequest("req-2"))
	store.matches = []model.Match{
		{ID: "m-1", RequestID: "req-1", ProfileID: "p-1", Rank: 1, Status: model.MatchStatusPending},
		{ID: "m-2", RequestID: "req-2", ProfileID: "p-9", Rank: 1, Status: model.MatchStatusPending},
		{ID: "m-3", RequestID: "req-1", ProfileID: "p-2", Rank: 2, Status: model.MatchStatusRejected},
	}

	matches, err := ListMatches(context.Background(), store, zap.NewNop(), "req-1")
	require.NoError(t, err)

	require.Len(t, matches, 2)
	assert.Equal(t, "m-1", matches[0].ID)
	assert.Equal(t, "m-3", matches[1].ID)
}

func TestListMatches_NoMatchesIsEmptyNotNil(t *testing.T) {
	store := newMockMatchingStore(readyRequest("req-1"))

	matches, err := ListMatches(context.Background(), store, zap.NewNop(), "req-1")
	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestListMatches_RequestNotFound(t *testing.T) {
	store := newMockMatchingStore()

	matches, err := ListMatches(context.Background(), store, zap.NewNop(), "missing")
	assert.Error(t, err)
	assert.Nil(t, matches)
	assert.True(t, errors.Is(err, db.ErrNotFound))
}

func TestListMatches_StoreError(t *testing.T) {
	store := newMockMatchingStore(readyRequest("req-1"))
	store.listMatchesErr = errors.New("timeout")

	_, err := ListMatches(context.Background(), store, zap.NewNop(), "req-1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list matches")
}
