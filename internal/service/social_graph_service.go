package service

import (
	"context"
	"errors"

	"github.com/weiawesome/wes-io-blog/internal/audit"
	"github.com/weiawesome/wes-io-blog/internal/consumer"
	"github.com/weiawesome/wes-io-blog/internal/metrics"
	"github.com/weiawesome/wes-io-blog/internal/repository"
	"github.com/weiawesome/wes-io-blog/internal/store"
	pkglog "github.com/weiawesome/wes-io-blog/pkg/log"
)

// socialGraphService implements SocialGraphService.
type socialGraphService struct {
	repo  repository.FollowRepository
	users repository.UserRepository
	store store.FollowStore
	// cdcEnabled means follower counts are adjusted by the CDC consumer;
	// otherwise every effective write drops the cached count.
	cdcEnabled bool
}

// NewSocialGraphService creates a new SocialGraphService instance.
func NewSocialGraphService(repo repository.FollowRepository, users repository.UserRepository, store store.FollowStore, cdcEnabled bool) SocialGraphService {
	return &socialGraphService{
		repo:       repo,
		users:      users,
		store:      store,
		cdcEnabled: cdcEnabled,
	}
}

// Follow creates the (userID, authorID) pair if it does not exist yet.
func (s *socialGraphService) Follow(ctx context.Context, userID, authorID string) error {
	l := pkglog.Ctx(ctx)

	if userID == authorID {
		metrics.FollowOperations.WithLabelValues(metrics.OpFollow, metrics.OutcomeRejected).Inc()
		return ErrSelfFollow
	}

	created, err := s.repo.Follow(ctx, userID, authorID)
	if err != nil {
		metrics.FollowOperations.WithLabelValues(metrics.OpFollow, metrics.OutcomeError).Inc()
		l.Error().Err(err).
			Str(pkglog.FieldUserID, userID).
			Str(pkglog.FieldAuthorID, authorID).
			Msg("failed to follow author")
		return err
	}

	if !created {
		metrics.FollowOperations.WithLabelValues(metrics.OpFollow, metrics.OutcomeNoop).Inc()
		return nil
	}

	metrics.FollowOperations.WithLabelValues(metrics.OpFollow, metrics.OutcomeChanged).Inc()
	s.dropCachedCount(ctx, authorID)
	audit.Log(ctx, audit.ActionFollow, userID, authorID, "followed author")
	return nil
}

// Unfollow removes the (userID, authorID) pair if present.
func (s *socialGraphService) Unfollow(ctx context.Context, userID, authorID string) error {
	l := pkglog.Ctx(ctx)

	removed, err := s.repo.Unfollow(ctx, userID, authorID)
	if err != nil {
		metrics.FollowOperations.WithLabelValues(metrics.OpUnfollow, metrics.OutcomeError).Inc()
		l.Error().Err(err).
			Str(pkglog.FieldUserID, userID).
			Str(pkglog.FieldAuthorID, authorID).
			Msg("failed to unfollow author")
		return err
	}

	if !removed {
		metrics.FollowOperations.WithLabelValues(metrics.OpUnfollow, metrics.OutcomeNoop).Inc()
		return nil
	}

	metrics.FollowOperations.WithLabelValues(metrics.OpUnfollow, metrics.OutcomeChanged).Inc()
	s.dropCachedCount(ctx, authorID)
	audit.Log(ctx, audit.ActionUnfollow, userID, authorID, "unfollowed author")
	return nil
}

func (s *socialGraphService) dropCachedCount(ctx context.Context, authorID string) {
	if s.cdcEnabled {
		return
	}
	if err := s.store.DeleteFollowersCount(ctx, authorID); err != nil {
		l := pkglog.Ctx(ctx)
		l.Warn().Err(err).Str(pkglog.FieldAuthorID, authorID).Msg("failed to drop cached followers count")
	}
}

func (s *socialGraphService) IsFollowing(ctx context.Context, userID, authorID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return s.repo.IsFollowing(ctx, userID, authorID)
}

func (s *socialGraphService) FollowedAuthors(ctx context.Context, userID string) ([]string, error) {
	return s.repo.FollowedAuthors(ctx, userID)
}

// FollowByUsername follows the author with the given username.
func (s *socialGraphService) FollowByUsername(ctx context.Context, userID, username string) error {
	author, err := s.resolve(ctx, username)
	if err != nil {
		return err
	}
	return s.Follow(ctx, userID, author)
}

// UnfollowByUsername unfollows the author with the given username.
func (s *socialGraphService) UnfollowByUsername(ctx context.Context, userID, username string) error {
	author, err := s.resolve(ctx, username)
	if err != nil {
		return err
	}
	return s.Unfollow(ctx, userID, author)
}

func (s *socialGraphService) resolve(ctx context.Context, username string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	return user.ID, nil
}

// GetFollowersCount returns the number of followers for authorID.
// It checks Redis first; on miss it queries the DB, populates Redis, and records a hot key access.
func (s *socialGraphService) GetFollowersCount(ctx context.Context, authorID string) (int64, error) {
	l := pkglog.Ctx(ctx)

	if err := s.store.RecordAccess(ctx, authorID); err != nil {
		l.Warn().Err(err).Str(pkglog.FieldAuthorID, authorID).Msg("failed to record hot key access")
	}

	count, found, err := s.store.GetFollowersCount(ctx, authorID)
	if err != nil {
		l.Warn().Err(err).Str(pkglog.FieldAuthorID, authorID).Msg("redis get followers count failed, falling back to db")
	}
	if found {
		return count, nil
	}

	count, err = s.repo.GetFollowersCount(ctx, authorID)
	if err != nil {
		l.Error().Err(err).Str(pkglog.FieldAuthorID, authorID).Msg("failed to get followers count from db")
		return 0, err
	}

	if err := s.store.SetFollowersCount(ctx, authorID, count); err != nil {
		l.Warn().Err(err).Str(pkglog.FieldAuthorID, authorID).Msg("failed to set followers count in redis")
	}

	return count, nil
}

func (s *socialGraphService) GetFollowingCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.GetFollowingCount(ctx, userID)
}

// HandleCDCEvent applies a follows-table change to the cached follower counts.
func (s *socialGraphService) HandleCDCEvent(ctx context.Context, event *consumer.DebeziumMessage) error {
	l := pkglog.Ctx(ctx)
	op := event.Payload.Op

	switch op {
	case consumer.OpSnapshot:
		return nil

	case consumer.OpCreate:
		if event.Payload.After == nil {
			l.Warn().Msg("CDC create event missing 'after' field")
			return nil
		}
		return s.condIncr(ctx, event.Payload.After.AuthorID)

	case consumer.OpDelete:
		if event.Payload.Before == nil {
			l.Warn().Msg("CDC delete event missing 'before' field")
			return nil
		}
		return s.condDecr(ctx, event.Payload.Before.AuthorID)

	case consumer.OpUpdate:
		// Follow rows are never updated in place; only a changed author matters.
		before, after := event.Payload.Before, event.Payload.After
		if before == nil || after == nil || before.AuthorID == after.AuthorID {
			return nil
		}
		if err := s.condDecr(ctx, before.AuthorID); err != nil {
			return err
		}
		return s.condIncr(ctx, after.AuthorID)

	default:
		l.Warn().Str(pkglog.FieldCDCOp, op).Msg("unknown CDC operation, skipping")
	}

	return nil
}

func (s *socialGraphService) condIncr(ctx context.Context, authorID string) error {
	if err := s.store.CondIncrFollowersCount(ctx, authorID); err != nil {
		l := pkglog.Ctx(ctx)
		l.Error().Err(err).Str(pkglog.FieldAuthorID, authorID).Msg("failed to cond incr followers count")
		return err
	}
	return nil
}

func (s *socialGraphService) condDecr(ctx context.Context, authorID string) error {
	if err := s.store.CondDecrFollowersCount(ctx, authorID); err != nil {
		l := pkglog.Ctx(ctx)
		l.Error().Err(err).Str(pkglog.FieldAuthorID, authorID).Msg("failed to cond decr followers count")
		return err
	}
	return nil
}

// Ensure interface is satisfied at compile time.
var _ SocialGraphService = (*socialGraphService)(nil)
var _ consumer.CDCEventHandler = (*socialGraphService)(nil)
