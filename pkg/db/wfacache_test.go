package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/staffing-platform/referral-matcher/pkg/core/model"
)

// fakeRedis implements redisKV with an in-memory map
type fakeRedis struct {
	values  map[string]string
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	getHits int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	f.getHits++
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.values[key] = value.(string)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.values[k]; ok {
			delete(f.values, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

// mockWFAStore implements WFAStatusStore for testing
type mockWFAStore struct {
	statuses []model.WFAStatus
	err      error
	calls    int
}

func (m *mockWFAStore) ListWFAStatuses(ctx context.Context) ([]model.WFAStatus, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.statuses, nil
}

func sortOrder(n int) *int { return &n }

func testStatuses() []model.WFAStatus {
	return []model.WFAStatus{
		{ID: "1", Code: "SURPLUS", Name: "Surplus", SortOrder: sortOrder(1)},
		{ID: "2", Code: "AFFECTED", Name: "Affected", SortOrder: sortOrder(2)},
		{ID: "3", Code: "OTHER", Name: "Other", SortOrder: nil},
	}
}

func TestCachedWFAStatusStore_MissThenHit(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	store := &mockWFAStore{statuses: testStatuses()}
	cache := NewCachedWFAStatusStore(store, rdb, time.Hour, zap.NewNop())

	first, err := cache.ListWFAStatuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, testStatuses(), first)
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, time.Hour, rdb.ttls[wfaStatusCacheKey])

	second, err := cache.ListWFAStatuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, testStatuses(), second)
	assert.Equal(t, 1, store.calls, "second read should be served from cache")
	assert.Equal(t, 1, rdb.getHits)
}

func TestCachedWFAStatusStore_RedisDownFallsBack(t *testing.T) {
	rdb := newFakeRedis()
	rdb.getErr = errors.New("connection refused")
	rdb.setErr = errors.New("connection refused")
	store := &mockWFAStore{statuses: testStatuses()}
	cache := NewCachedWFAStatusStore(store, rdb, time.Hour, zap.NewNop())

	statuses, err := cache.ListWFAStatuses(context.Background())

	require.NoError(t, err)
	assert.Len(t, statuses, 3)
	assert.Equal(t, 1, store.calls)
}

func TestCachedWFAStatusStore_CorruptEntryReloads(t *testing.T) {
	rdb := newFakeRedis()
	rdb.values[wfaStatusCacheKey] = "{not json"
	store := &mockWFAStore{statuses: testStatuses()}
	cache := NewCachedWFAStatusStore(store, rdb, time.Minute, zap.NewNop())

	statuses, err := cache.ListWFAStatuses(context.Background())

	require.NoError(t, err)
	assert.Len(t, statuses, 3)
	assert.Equal(t, 1, store.calls)
	assert.NotEqual(t, "{not json", rdb.values[wfaStatusCacheKey])
}

func TestCachedWFAStatusStore_StoreErrorPropagates(t *testing.T) {
	store := &mockWFAStore{err: errors.New("db down")}
	cache := NewCachedWFAStatusStore(store, newFakeRedis(), time.Minute, zap.NewNop())

	_, err := cache.ListWFAStatuses(context.Background())

	assert.EqualError(t, err, "db down")
}

func TestCachedWFAStatusStore_Invalidate(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	store := &mockWFAStore{statuses: testStatuses()}
	cache := NewCachedWFAStatusStore(store, rdb, time.Minute, zap.NewNop())

	_, err := cache.ListWFAStatuses(ctx)
	require.NoError(t, err)

	require.NoError(t, cache.Invalidate(ctx))
	_, ok := rdb.values[wfaStatusCacheKey]
	assert.False(t, ok)

	_, err = cache.ListWFAStatuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls)
}

func TestCachedWFAStatusStore_RefreshBypassesStaleEntry(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	store := &mockWFAStore{statuses: testStatuses()[:2]}
	cache := NewCachedWFAStatusStore(store, rdb, time.Minute, zap.NewNop())

	stale, err := cache.ListWFAStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, stale, 2)

	// A status added after the table was cached
	store.statuses = testStatuses()

	cached, err := cache.ListWFAStatuses(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 2)

	fresh, err := cache.RefreshWFAStatuses(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
	assert.Equal(t, 2, store.calls)

	after, err := cache.ListWFAStatuses(ctx)
	require.NoError(t, err)
	assert.Len(t, after, 3)
	assert.Equal(t, 2, store.calls, "refreshed table is written back to the cache")
}

func TestWFAStatusCodec_KeepsNilSortOrder(t *testing.T) {
	payload, err := encodeWFAStatuses(testStatuses())
	require.NoError(t, err)

	decoded, err := decodeWFAStatuses(payload)
	require.NoError(t, err)
	assert.Nil(t, decoded[2].SortOrder)
	require.NotNil(t, decoded[0].SortOrder)
	assert.Equal(t, 1, *decoded[0].SortOrder)
}
