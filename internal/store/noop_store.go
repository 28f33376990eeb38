package store

import "context"

// NoopFollowStore is used when Redis is not configured. Every read misses,
// so follower counts always come from the database.
type NoopFollowStore struct{}

func (NoopFollowStore) GetFollowersCount(context.Context, string) (int64, bool, error) {
	return 0, false, nil
}
func (NoopFollowStore) SetFollowersCount(context.Context, string, int64) error { return nil }
func (NoopFollowStore) DeleteFollowersCount(context.Context, string) error     { return nil }
func (NoopFollowStore) CondIncrFollowersCount(context.Context, string) error   { return nil }
func (NoopFollowStore) CondDecrFollowersCount(context.Context, string) error   { return nil }
func (NoopFollowStore) RecordAccess(context.Context, string) error             { return nil }
func (NoopFollowStore) GetTopHotKeys(context.Context, int64) ([]string, error) { return nil, nil }
func (NoopFollowStore) ResetHotKeyScores(context.Context) error                { return nil }
func (NoopFollowStore) Close() error                                           { return nil }

var _ FollowStore = NoopFollowStore{}
