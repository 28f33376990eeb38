package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/weiawesome/wes-io-blog/internal/cache"
	"github.com/weiawesome/wes-io-blog/internal/domain"
	"github.com/weiawesome/wes-io-blog/internal/repository"
	"github.com/weiawesome/wes-io-blog/internal/store"
	"github.com/weiawesome/wes-io-blog/pkg/database"
	"github.com/weiawesome/wes-io-blog/pkg/storage"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// fixture wires every service over an in-memory database and miniredis.
type fixture struct {
	db       *gorm.DB
	redis    *miniredis.Miniredis
	store    *store.RedisFollowStore
	clock    *testClock
	users    *repository.GormUserRepository
	posts    *repository.GormPostRepository
	groups   *repository.GormGroupRepository
	comments *repository.GormCommentRepository
	follows  *repository.GormFollowRepository
	timeline *cache.MemoryTimelineCache
	images   *storage.LocalStorage

	social   SocialGraphService
	feed     FeedService
	postSvc  PostService
	groupSvc GroupService
	identity IdentityService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.New(&database.Config{Driver: "sqlite", FilePath: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, domain.Models()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	mr := miniredis.RunT(t)
	followStore, err := store.NewRedisFollowStore(context.Background(), store.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { followStore.Close() })

	images, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir(), URLPrefix: "/media"})
	require.NoError(t, err)

	f := &fixture{
		db:       db,
		redis:    mr,
		store:    followStore,
		clock:    &testClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		users:    repository.NewGormUserRepository(db),
		posts:    repository.NewGormPostRepository(db),
		groups:   repository.NewGormGroupRepository(db),
		comments: repository.NewGormCommentRepository(db),
		follows:  repository.NewGormFollowRepository(db),
		images:   images,
	}
	f.timeline = cache.NewMemoryTimelineCache(f.posts.ListAll, cache.WithClock(f.clock.Now))
	f.social = NewSocialGraphService(f.follows, f.users, followStore, false)
	f.feed = NewFeedService(f.posts, f.groups, f.users, f.social, f.timeline)
	f.postSvc = NewPostService(f.posts, f.comments, f.groups, images, PostOptions{MaxImageBytes: 1024})
	f.groupSvc = NewGroupService(f.groups)
	f.identity = NewIdentityService(f.users)
	return f
}

func (f *fixture) user(t *testing.T, id, username string) {
	t.Helper()
	require.NoError(t, f.identity.ObserveViewer(context.Background(), id, username))
}

func (f *fixture) post(t *testing.T, authorID, text string, groupID *uint, at time.Time) *domain.Post {
	t.Helper()
	p := &domain.Post{Text: text, AuthorID: authorID, GroupID: groupID, CreatedAt: at}
	require.NoError(t, f.posts.Create(context.Background(), p))
	return p
}

func (f *fixture) group(t *testing.T, slug string) *domain.Group {
	t.Helper()
	g := &domain.Group{Title: slug, Slug: slug}
	require.NoError(t, f.groups.Create(context.Background(), g))
	return g
}

func ids(posts []domain.Post) []uint {
	out := make([]uint, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}
