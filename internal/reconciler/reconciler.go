package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/weiawesome/wes-io-blog/internal/config"
	"github.com/weiawesome/wes-io-blog/internal/metrics"
	"github.com/weiawesome/wes-io-blog/internal/store"
	pkglog "github.com/weiawesome/wes-io-blog/pkg/log"
)

const (
	defaultInterval = time.Minute
	defaultTopN     = 100
)

// FollowerCounter is the source of truth for follower counts.
type FollowerCounter interface {
	GetFollowersCount(ctx context.Context, authorID string) (int64, error)
}

// Reconciler periodically rewrites the cached follower counts of the most
// read authors from the database.
type Reconciler struct {
	store  store.FollowStore
	repo   FollowerCounter
	cfg    config.ReconcilerConfig
	quit   chan struct{}
	doneCh chan struct{}
}

// New creates a new Reconciler.
func New(store store.FollowStore, repo FollowerCounter, cfg config.ReconcilerConfig) *Reconciler {
	return &Reconciler{
		store:  store,
		repo:   repo,
		cfg:    cfg,
		quit:   make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start launches the reconciler in a background goroutine.
func (r *Reconciler) Start(ctx context.Context) {
	go r.run(ctx)
}

// Stop signals the reconciler to stop and returns immediately.
// Call Done() to wait for it to exit.
func (r *Reconciler) Stop() {
	close(r.quit)
}

// Done returns a channel that is closed when the reconciler has fully stopped.
func (r *Reconciler) Done() <-chan struct{} {
	return r.doneCh
}

func (r *Reconciler) run(ctx context.Context) {
	defer close(r.doneCh)

	interval := r.cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.quit:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Reconcile(ctx)
		}
	}
}

// Report summarises one reconciliation pass.
type Report struct {
	Checked   int // hot authors examined
	Corrected int // cached counts that disagreed with the database, or were missing
	Failed    int
}

// Reconcile recounts the hottest authors and rewrites only the cached
// counts that drifted from the database. Hot-key scores are reset afterwards
// so the next pass ranks fresh reads.
func (r *Reconciler) Reconcile(ctx context.Context) Report {
	l := pkglog.L().With().Str(pkglog.FieldSource, "reconciler").Logger()

	topN := int64(r.cfg.TopN)
	if topN <= 0 {
		topN = defaultTopN
	}
	authorIDs, err := r.store.GetTopHotKeys(ctx, topN)
	if err != nil {
		l.Error().Err(err).Msg("failed to read hot authors")
		return Report{}
	}

	var rep Report
	for _, authorID := range authorIDs {
		if ctx.Err() != nil {
			break
		}
		rep.Checked++
		drifted, err := r.reconcileAuthor(ctx, authorID)
		switch {
		case err != nil:
			rep.Failed++
			l.Error().Err(err).Str(pkglog.FieldAuthorID, authorID).Msg("failed to reconcile follower count")
		case drifted:
			rep.Corrected++
		}
	}

	if len(authorIDs) > 0 {
		if err := r.store.ResetHotKeyScores(ctx); err != nil {
			l.Error().Err(err).Msg("failed to reset hot author scores")
		}
	}

	metrics.ReconciledCounts.WithLabelValues(metrics.OutcomeChanged).Add(float64(rep.Corrected))
	metrics.ReconciledCounts.WithLabelValues(metrics.OutcomeNoop).Add(float64(rep.Checked - rep.Corrected - rep.Failed))
	metrics.ReconciledCounts.WithLabelValues(metrics.OutcomeError).Add(float64(rep.Failed))

	l.Info().
		Int(pkglog.FieldCount, rep.Checked).
		Int("corrected", rep.Corrected).
		Int("failed", rep.Failed).
		Msg("follower count reconciliation complete")
	return rep
}

// reconcileAuthor reports whether the cached count had to be rewritten.
func (r *Reconciler) reconcileAuthor(ctx context.Context, authorID string) (bool, error) {
	actual, err := r.repo.GetFollowersCount(ctx, authorID)
	if err != nil {
		return false, fmt.Errorf("count followers: %w", err)
	}
	cached, found, err := r.store.GetFollowersCount(ctx, authorID)
	if err != nil {
		return false, fmt.Errorf("read cached count: %w", err)
	}
	if found && cached == actual {
		return false, nil
	}
	if err := r.store.SetFollowersCount(ctx, authorID, actual); err != nil {
		return false, fmt.Errorf("write cached count: %w", err)
	}
	if found {
		l := pkglog.L()
		l.Warn().
			Str(pkglog.FieldLogType, pkglog.LogTypeAudit).
			Str(pkglog.FieldAuthorID, authorID).
			Int64("cached", cached).
			Int64("actual", actual).
			Msg("follower count drift corrected")
	}
	return true, nil
}
