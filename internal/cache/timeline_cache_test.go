package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-blog/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// postSource is a mutable post list standing in for the database.
type postSource struct {
	mu    sync.Mutex
	posts []domain.Post
	loads int32
	err   error
}

func (s *postSource) add(id uint) {
	s.mu.Lock()
	s.posts = append([]domain.Post{{ID: id, Text: "post"}}, s.posts...)
	s.mu.Unlock()
}

func (s *postSource) load(context.Context) ([]domain.Post, error) {
	atomic.AddInt32(&s.loads, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]domain.Post, len(s.posts))
	copy(out, s.posts)
	return out, nil
}

func newCache(src *postSource) (*MemoryTimelineCache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	return NewMemoryTimelineCache(src.load, WithClock(clock.Now)), clock
}

func TestTimelineCacheServesSnapshotWithinTTL(t *testing.T) {
	ctx := context.Background()
	src := &postSource{}
	for i := uint(1); i <= 11; i++ {
		src.add(i)
	}
	c, clock := newCache(src)

	first, err := c.Get(ctx)
	require.NoError(t, err)
	require.Len(t, first, 11)

	src.add(12)
	clock.Advance(DefaultTimelineTTL - time.Second)

	second, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second, "new post is hidden until the snapshot expires")
	assert.EqualValues(t, 1, atomic.LoadInt32(&src.loads))

	clock.Advance(time.Second)
	third, err := c.Get(ctx)
	require.NoError(t, err)
	require.Len(t, third, 12)
	assert.EqualValues(t, 12, third[0].ID)
}

func TestTimelineCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	src := &postSource{}
	src.add(1)
	c, _ := newCache(src)

	_, err := c.Get(ctx)
	require.NoError(t, err)

	src.add(2)
	c.Invalidate()

	posts, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 2)
	assert.EqualValues(t, 2, atomic.LoadInt32(&src.loads))
}

func TestTimelineCacheDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	src := &postSource{err: errors.New("db down")}
	c, _ := newCache(src)

	_, err := c.Get(ctx)
	require.Error(t, err)

	src.mu.Lock()
	src.err = nil
	src.mu.Unlock()
	src.add(1)

	posts, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestTimelineCacheEmptyTimeline(t *testing.T) {
	c, _ := newCache(&postSource{})
	posts, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestTimelineCacheConcurrentReaders(t *testing.T) {
	ctx := context.Background()
	src := &postSource{}
	src.add(1)
	c, _ := newCache(src)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			posts, err := c.Get(ctx)
			assert.NoError(t, err)
			assert.Len(t, posts, 1)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&src.loads), int32(32))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&src.loads), int32(1))
}

func TestWithTTL(t *testing.T) {
	c := NewMemoryTimelineCache(nil, WithTTL(time.Minute))
	assert.Equal(t, time.Minute, c.ttl)

	c = NewMemoryTimelineCache(nil, WithTTL(0))
	assert.Equal(t, DefaultTimelineTTL, c.ttl)
}

func TestTimelineCacheLoadSurvivesCancelledCaller(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	load := func(ctx context.Context) ([]domain.Post, error) {
		once.Do(func() { close(started) })
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-release:
			return []domain.Post{{ID: 1, Text: "post"}}, nil
		}
	}
	c := NewMemoryTimelineCache(load)

	leaving, cancel := context.WithCancel(context.Background())
	leftErr := make(chan error, 1)
	go func() {
		_, err := c.Get(leaving)
		leftErr <- err
	}()
	<-started

	type result struct {
		posts []domain.Post
		err   error
	}
	waiting := make(chan result, 1)
	go func() {
		posts, err := c.Get(context.Background())
		waiting <- result{posts, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-leftErr, context.Canceled)

	close(release)
	res := <-waiting
	require.NoError(t, res.err)
	assert.Len(t, res.posts, 1)

	posts, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Len(t, posts, 1, "the shared load was cached")
}
