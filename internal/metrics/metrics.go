package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "blog"

var (
	// TimelineCacheRequests counts home timeline lookups by result (hit, miss, error).
	TimelineCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "timeline_cache_requests_total",
		Help:      "Home timeline cache lookups by result.",
	}, []string{"result"})

	// TimelineCacheInvalidations counts explicit cache invalidations.
	TimelineCacheInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "timeline_cache_invalidations_total",
		Help:      "Explicit home timeline cache invalidations.",
	})

	// FollowOperations counts follow graph mutations by operation and outcome.
	FollowOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "follow_operations_total",
		Help:      "Follow and unfollow calls by outcome.",
	}, []string{"op", "outcome"})

	// CDCEvents counts follows-table change events by Debezium op and outcome.
	CDCEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cdc_events_total",
		Help:      "Follows CDC events consumed, by op and outcome.",
	}, []string{"op", "outcome"})

	// ReconciledCounts counts cached follower counts checked by the reconciler, by outcome.
	ReconciledCounts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconciled_follower_counts_total",
		Help:      "Cached follower counts checked by the reconciler, by outcome.",
	}, []string{"outcome"})

	// PostWrites counts post mutations by operation.
	PostWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "post_writes_total",
		Help:      "Post create, update and delete operations.",
	}, []string{"op"})
)

const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"

	OpFollow   = "follow"
	OpUnfollow = "unfollow"

	OutcomeChanged  = "changed"
	OutcomeNoop     = "noop"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
	OutcomeApplied  = "applied"
	OutcomeSkipped  = "skipped"

	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)
