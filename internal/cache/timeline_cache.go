package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/weiawesome/wes-io-blog/internal/domain"
	"github.com/weiawesome/wes-io-blog/internal/metrics"
	pkglog "github.com/weiawesome/wes-io-blog/pkg/log"
)

// DefaultTimelineTTL is how long a home timeline snapshot is served.
const DefaultTimelineTTL = 20 * time.Second

const timelineKey = "home"

// Option configures a MemoryTimelineCache.
type Option func(*MemoryTimelineCache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *MemoryTimelineCache) { c.now = now }
}

// WithTTL sets the snapshot lifetime. Non-positive values keep the default.
func WithTTL(ttl time.Duration) Option {
	return func(c *MemoryTimelineCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// MemoryTimelineCache is an in-process TimelineCache.
// Readers share a read lock on hits; simultaneous misses are collapsed into
// one load, and an Invalidate racing a load discards that load's result.
// A caller whose context ends stops waiting; the shared load carries on.
type MemoryTimelineCache struct {
	load TimelineLoader
	ttl  time.Duration
	now  func() time.Time

	mu        sync.RWMutex
	snapshot  []domain.Post
	expiresAt time.Time
	valid     bool
	gen       uint64

	group singleflight.Group
}

// NewMemoryTimelineCache creates a cache that loads through load.
func NewMemoryTimelineCache(load TimelineLoader, opts ...Option) *MemoryTimelineCache {
	c := &MemoryTimelineCache{
		load: load,
		ttl:  DefaultTimelineTTL,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MemoryTimelineCache) Get(ctx context.Context) ([]domain.Post, error) {
	c.mu.RLock()
	if c.valid && c.now().Before(c.expiresAt) {
		snapshot := c.snapshot
		c.mu.RUnlock()
		metrics.TimelineCacheRequests.WithLabelValues(metrics.ResultHit).Inc()
		return snapshot, nil
	}
	gen := c.gen
	c.mu.RUnlock()

	metrics.TimelineCacheRequests.WithLabelValues(metrics.ResultMiss).Inc()

	// The load is shared, so it must outlive any single caller's request.
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(timelineKey, func() (interface{}, error) {
		posts, err := c.load(loadCtx)
		if err != nil {
			return nil, err
		}
		if posts == nil {
			posts = []domain.Post{}
		}

		c.mu.Lock()
		if c.gen == gen {
			c.snapshot = posts
			c.expiresAt = c.now().Add(c.ttl)
			c.valid = true
		}
		c.mu.Unlock()
		return posts, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			metrics.TimelineCacheRequests.WithLabelValues(metrics.ResultError).Inc()
			l := pkglog.Ctx(ctx)
			l.Error().Err(res.Err).Msg("failed to load home timeline")
			return nil, res.Err
		}
		return res.Val.([]domain.Post), nil
	}
}

func (c *MemoryTimelineCache) Invalidate() {
	c.mu.Lock()
	c.snapshot = nil
	c.valid = false
	c.gen++
	c.mu.Unlock()
	c.group.Forget(timelineKey)
	metrics.TimelineCacheInvalidations.Inc()
}

var _ TimelineCache = (*MemoryTimelineCache)(nil)
