package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisFollowStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := NewRedisFollowStore(context.Background(), RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestFollowersCountReadThrough(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, found, err := s.GetFollowersCount(ctx, "a1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.SetFollowersCount(ctx, "a1", 3))
	count, found, err := s.GetFollowersCount(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.EqualValues(t, 3, count)

	require.NoError(t, s.DeleteFollowersCount(ctx, "a1"))
	_, found, err = s.GetFollowersCount(ctx, "a1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCondIncrDecrOnlyTouchExistingKeys(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	require.NoError(t, s.CondIncrFollowersCount(ctx, "a1"))
	assert.False(t, mr.Exists(followersCountKey("a1")), "missing key is not seeded")

	require.NoError(t, s.SetFollowersCount(ctx, "a1", 1))
	require.NoError(t, s.CondIncrFollowersCount(ctx, "a1"))
	count, _, err := s.GetFollowersCount(ctx, "a1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	require.NoError(t, s.CondDecrFollowersCount(ctx, "a1"))
	require.NoError(t, s.CondDecrFollowersCount(ctx, "a1"))
	require.NoError(t, s.CondDecrFollowersCount(ctx, "a1"))
	count, _, err = s.GetFollowersCount(ctx, "a1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, count, "count never goes negative")

	require.NoError(t, s.CondDecrFollowersCount(ctx, "missing"))
	assert.False(t, mr.Exists(followersCountKey("missing")))
}

func TestHotKeys(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.RecordAccess(ctx, "popular"))
	}
	require.NoError(t, s.RecordAccess(ctx, "quiet"))

	keys, err := s.GetTopHotKeys(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"popular"}, keys)

	require.NoError(t, s.ResetHotKeyScores(ctx))
	keys, err = s.GetTopHotKeys(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestCountTTL(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	s, err := NewRedisFollowStore(ctx, RedisConfig{Address: mr.Addr(), CountTTL: time.Minute})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SetFollowersCount(ctx, "a1", 5))
	mr.FastForward(2 * time.Minute)

	_, found, err := s.GetFollowersCount(ctx, "a1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNewRedisFollowStoreUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisFollowStore(context.Background(), RedisConfig{Address: addr})
	assert.Error(t, err)
}
