package notification

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/trezcool/college/core"
)

const unreadCountPurpose = "unread_notifications"

var cacheLookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "college_unread_count_cache_lookups_total",
		Help: "Unread notification count cache lookups, by result (hit, miss, error).",
	},
	[]string{"result"},
)

// UnreadCountKey is the cache key holding a user's unread notification count.
func UnreadCountKey(userID string) core.CacheKey {
	return core.NewCacheKey(unreadCountPurpose, userID)
}

// Counter serves per-user unread notification counts from a cache, falling back to the store.
// A stale count is tolerated until the entry expires or is invalidated.
type Counter struct {
	cache  core.Cache
	repo   Repository
	ttl    time.Duration
	logger core.Logger
}

func NewCounter(cache core.Cache, repo Repository, ttl time.Duration, logger core.Logger) *Counter {
	vala.BeginValidation().Validate(
		vala.IsNotNil(cache, "cache"),
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()

	return &Counter{cache: cache, repo: repo, ttl: ttl, logger: logger}
}

// Count returns the unread count of the user. Guests (empty userID) always have 0.
// Cache failures are logged and the store is queried instead.
func (c *Counter) Count(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, nil
	}
	key := UnreadCountKey(userID)

	val, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		cacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn(fmt.Sprintf("reading %s from cache: %v", key, err), err)
	case ok:
		if n, convErr := strconv.Atoi(val); convErr == nil {
			cacheLookups.WithLabelValues("hit").Inc()
			return n, nil
		}
		cacheLookups.WithLabelValues("error").Inc()
	default:
		cacheLookups.WithLabelValues("miss").Inc()
	}

	n, err := c.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, errors.Wrap(err, "counting unread notifications")
	}
	if err = c.cache.Set(ctx, key, strconv.Itoa(n), c.ttl); err != nil {
		c.logger.Warn(fmt.Sprintf("writing %s to cache: %v", key, err), err)
	}
	return n, nil
}

// Invalidate drops the cached count; the next Count recomputes it.
func (c *Counter) Invalidate(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	key := UnreadCountKey(userID)
	if err := c.cache.Delete(ctx, key); err != nil {
		c.logger.Warn(fmt.Sprintf("deleting %s from cache: %v", key, err), err)
	}
}
