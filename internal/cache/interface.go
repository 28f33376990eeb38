package cache

import (
	"context"

	"github.com/weiawesome/wes-io-blog/internal/domain"
)

// TimelineLoader produces the full home timeline, newest first.
type TimelineLoader func(ctx context.Context) ([]domain.Post, error)

// TimelineCache holds a short-lived snapshot of the home timeline.
type TimelineCache interface {
	// Get returns the snapshot, reloading it once it has expired.
	// The returned slice is shared and must not be modified.
	Get(ctx context.Context) ([]domain.Post, error)
	// Invalidate drops the snapshot so the next Get reloads.
	Invalidate()
}
