package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	followersCountKeyPrefix = "blog:followers:"
	hotKeyScoresKey         = "blog:hotkey:scores"
)

// FollowStore caches per-author follower counts and tracks which authors
// are read most often.
type FollowStore interface {
	GetFollowersCount(ctx context.Context, authorID string) (int64, bool, error)
	SetFollowersCount(ctx context.Context, authorID string, count int64) error
	DeleteFollowersCount(ctx context.Context, authorID string) error
	CondIncrFollowersCount(ctx context.Context, authorID string) error
	CondDecrFollowersCount(ctx context.Context, authorID string) error
	RecordAccess(ctx context.Context, authorID string) error
	GetTopHotKeys(ctx context.Context, n int64) ([]string, error)
	ResetHotKeyScores(ctx context.Context) error
	Close() error
}

// RedisConfig holds connection settings for the follower-count store.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	// CountTTL bounds how long a cached count lives; zero keeps it until
	// the reconciler or a follow event rewrites it.
	CountTTL time.Duration
}

// RedisFollowStore implements FollowStore backed by Redis.
type RedisFollowStore struct {
	client   *redis.Client
	countTTL time.Duration
}

// NewRedisFollowStore connects to Redis and verifies the connection.
func NewRedisFollowStore(ctx context.Context, cfg RedisConfig) (*RedisFollowStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisFollowStore{client: client, countTTL: cfg.CountTTL}, nil
}

func followersCountKey(authorID string) string {
	return followersCountKeyPrefix + authorID
}

// GetFollowersCount returns (count, true, nil) on hit and (0, false, nil) on miss.
func (s *RedisFollowStore) GetFollowersCount(ctx context.Context, authorID string) (int64, bool, error) {
	val, err := s.client.Get(ctx, followersCountKey(authorID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("redis get followers count: %w", err)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse followers count: %w", err)
	}
	return count, true, nil
}

func (s *RedisFollowStore) SetFollowersCount(ctx context.Context, authorID string, count int64) error {
	if err := s.client.Set(ctx, followersCountKey(authorID), count, s.countTTL).Err(); err != nil {
		return fmt.Errorf("redis set followers count: %w", err)
	}
	return nil
}

// DeleteFollowersCount drops the cached count so the next read recounts.
func (s *RedisFollowStore) DeleteFollowersCount(ctx context.Context, authorID string) error {
	if err := s.client.Del(ctx, followersCountKey(authorID)).Err(); err != nil {
		return fmt.Errorf("redis delete followers count: %w", err)
	}
	return nil
}

// condIncrScript increments the key only if it exists.
var condIncrScript = redis.NewScript(`
local key = KEYS[1]
if redis.call("EXISTS", key) == 1 then
  return redis.call("INCR", key)
end
return 0
`)

// condDecrScript decrements the key only if it exists and is positive.
var condDecrScript = redis.NewScript(`
local key = KEYS[1]
if redis.call("EXISTS", key) == 1 then
  local val = tonumber(redis.call("GET", key))
  if val and val > 0 then
    return redis.call("DECR", key)
  end
end
return 0
`)

// CondIncrFollowersCount increments a cached count; a missing key stays missing
// so a change event alone never seeds a partial count.
func (s *RedisFollowStore) CondIncrFollowersCount(ctx context.Context, authorID string) error {
	err := condIncrScript.Run(ctx, s.client, []string{followersCountKey(authorID)}).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis cond incr followers count: %w", err)
	}
	return nil
}

func (s *RedisFollowStore) CondDecrFollowersCount(ctx context.Context, authorID string) error {
	err := condDecrScript.Run(ctx, s.client, []string{followersCountKey(authorID)}).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis cond decr followers count: %w", err)
	}
	return nil
}

// RecordAccess bumps the author's score in the hot key sorted set.
func (s *RedisFollowStore) RecordAccess(ctx context.Context, authorID string) error {
	if err := s.client.ZIncrBy(ctx, hotKeyScoresKey, 1, authorID).Err(); err != nil {
		return fmt.Errorf("redis record access: %w", err)
	}
	return nil
}

// GetTopHotKeys returns the n most read author ids.
func (s *RedisFollowStore) GetTopHotKeys(ctx context.Context, n int64) ([]string, error) {
	keys, err := s.client.ZRevRange(ctx, hotKeyScoresKey, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get top hot keys: %w", err)
	}
	return keys, nil
}

func (s *RedisFollowStore) ResetHotKeyScores(ctx context.Context) error {
	if err := s.client.Del(ctx, hotKeyScoresKey).Err(); err != nil {
		return fmt.Errorf("redis reset hot key scores: %w", err)
	}
	return nil
}

func (s *RedisFollowStore) Close() error {
	return s.client.Close()
}

var _ FollowStore = (*RedisFollowStore)(nil)
