package service

import (
	"context"
	"errors"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/weiawesome/wes-io-blog/internal/audit"
	"github.com/weiawesome/wes-io-blog/internal/cache"
	"github.com/weiawesome/wes-io-blog/internal/domain"
	"github.com/weiawesome/wes-io-blog/internal/repository"
	pkglog "github.com/weiawesome/wes-io-blog/pkg/log"
)

// feedService implements FeedService.
type feedService struct {
	posts    repository.PostRepository
	groups   repository.GroupRepository
	users    repository.UserRepository
	social   SocialGraphService
	timeline cache.TimelineCache
}

// NewFeedService creates a new FeedService instance.
func NewFeedService(
	posts repository.PostRepository,
	groups repository.GroupRepository,
	users repository.UserRepository,
	social SocialGraphService,
	timeline cache.TimelineCache,
) FeedService {
	return &feedService{
		posts:    posts,
		groups:   groups,
		users:    users,
		social:   social,
		timeline: timeline,
	}
}

// HomeTimeline returns every post, served from the timeline cache.
func (s *feedService) HomeTimeline(ctx context.Context) ([]domain.Post, error) {
	return s.timeline.Get(ctx)
}

func (s *feedService) GroupTimeline(ctx context.Context, slug string) (*domain.Group, []domain.Post, error) {
	l := pkglog.Ctx(ctx)

	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return nil, nil, ErrGroupNotFound
		}
		l.Error().Err(err).Str(pkglog.FieldGroupSlug, slug).Msg("failed to get group")
		return nil, nil, err
	}

	posts, err := s.posts.ListByGroup(ctx, group.ID)
	if err != nil {
		l.Error().Err(err).Str(pkglog.FieldGroupSlug, slug).Msg("failed to list group posts")
		return nil, nil, err
	}
	return group, posts, nil
}

func (s *feedService) ProfileTimeline(ctx context.Context, username string) (*domain.User, []domain.Post, error) {
	author, err := s.author(ctx, username)
	if err != nil {
		return nil, nil, err
	}

	posts, err := s.posts.ListByAuthor(ctx, author.ID)
	if err != nil {
		l := pkglog.Ctx(ctx)
		l.Error().Err(err).Str(pkglog.FieldAuthorID, author.ID).Msg("failed to list author posts")
		return nil, nil, err
	}
	return author, posts, nil
}

// FollowingTimeline returns posts by every author userID follows, fetched
// with one query and de-duplicated by post id.
func (s *feedService) FollowingTimeline(ctx context.Context, userID string) ([]domain.Post, error) {
	l := pkglog.Ctx(ctx)

	authors, err := s.social.FollowedAuthors(ctx, userID)
	if err != nil {
		l.Error().Err(err).Str(pkglog.FieldUserID, userID).Msg("failed to list followed authors")
		return nil, err
	}
	if len(authors) == 0 {
		return []domain.Post{}, nil
	}

	posts, err := s.posts.ListByAuthors(ctx, uniqueStrings(authors))
	if err != nil {
		l.Error().Err(err).Str(pkglog.FieldUserID, userID).Msg("failed to list followed posts")
		return nil, err
	}
	return orderPosts(uniquePosts(posts)), nil
}

// Profile loads the author, then their posts, counts and the viewer's
// following flag concurrently.
func (s *feedService) Profile(ctx context.Context, viewerID, username string) (*Profile, error) {
	author, err := s.author(ctx, username)
	if err != nil {
		return nil, err
	}

	profile := &Profile{Author: *author}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		posts, err := s.posts.ListByAuthor(gctx, author.ID)
		profile.Posts = posts
		return err
	})
	g.Go(func() error {
		n, err := s.posts.CountByAuthor(gctx, author.ID)
		profile.Counts.Posts = n
		return err
	})
	g.Go(func() error {
		n, err := s.social.GetFollowersCount(gctx, author.ID)
		profile.Counts.Followers = n
		return err
	})
	g.Go(func() error {
		n, err := s.social.GetFollowingCount(gctx, author.ID)
		profile.Counts.Following = n
		return err
	})
	g.Go(func() error {
		following, err := s.social.IsFollowing(gctx, viewerID, author.ID)
		profile.Following = following
		return err
	})

	if err := g.Wait(); err != nil {
		l := pkglog.Ctx(ctx)
		l.Error().Err(err).Str(pkglog.FieldAuthorID, author.ID).Msg("failed to load profile")
		return nil, err
	}
	return profile, nil
}

func (s *feedService) InvalidateHomeTimeline(ctx context.Context, actorID string) {
	s.timeline.Invalidate()
	audit.Log(ctx, audit.ActionTimelineFlush, actorID, "home", "home timeline cache invalidated")
}

func (s *feedService) author(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		l := pkglog.Ctx(ctx)
		l.Error().Err(err).Str(pkglog.FieldUsername, username).Msg("failed to get user")
		return nil, err
	}
	return user, nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func uniquePosts(in []domain.Post) []domain.Post {
	seen := make(map[uint]struct{}, len(in))
	out := make([]domain.Post, 0, len(in))
	for _, p := range in {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}

// orderPosts sorts newest first; equal timestamps put the higher id first.
func orderPosts(posts []domain.Post) []domain.Post {
	slices.SortStableFunc(posts, func(a, b domain.Post) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
	return posts
}

var _ FeedService = (*feedService)(nil)
