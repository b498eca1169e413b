package notification_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/college/core"
	"github.com/trezcool/college/core/notification"
	cachesvc "github.com/trezcool/college/services/cache"
	logsvc "github.com/trezcool/college/services/logger"
	inmemdb "github.com/trezcool/college/storage/database/inmem"
)

var errCacheDown = errors.New("cache down")

// fakeCache wraps a memory cache, records TTLs and optionally fails every call.
type fakeCache struct {
	*cachesvc.MemoryCache

	mu      sync.Mutex
	failing bool
	ttls    map[string]time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{MemoryCache: cachesvc.NewMemoryCache(), ttls: make(map[string]time.Duration)}
}

func (c *fakeCache) setFailing(failing bool) {
	c.mu.Lock()
	c.failing = failing
	c.mu.Unlock()
}

func (c *fakeCache) isFailing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failing
}

func (c *fakeCache) Get(ctx context.Context, key core.CacheKey) (string, bool, error) {
	if c.isFailing() {
		return "", false, errCacheDown
	}
	return c.MemoryCache.Get(ctx, key)
}

func (c *fakeCache) Set(ctx context.Context, key core.CacheKey, value string, ttl time.Duration) error {
	if c.isFailing() {
		return errCacheDown
	}
	c.mu.Lock()
	c.ttls[key.String()] = ttl
	c.mu.Unlock()
	return c.MemoryCache.Set(ctx, key, value, ttl)
}

func (c *fakeCache) Delete(ctx context.Context, key core.CacheKey) error {
	if c.isFailing() {
		return errCacheDown
	}
	return c.MemoryCache.Delete(ctx, key)
}

type counterEnv struct {
	ctx     context.Context
	cache   *fakeCache
	repo    notification.Repository
	counter *notification.Counter
}

func setupCounter(t *testing.T) counterEnv {
	conf := core.NewTestConfig()
	repo := inmemdb.NewNotificationRepository(inmemdb.Open())
	cache := newFakeCache()
	logger := logsvc.NewRollbarLogger(io.Discard, "TEST", conf)
	return counterEnv{
		ctx:     context.Background(),
		cache:   cache,
		repo:    repo,
		counter: notification.NewCounter(cache, repo, time.Minute, logger),
	}
}

func (env counterEnv) add(t *testing.T, userID string, isRead bool) notification.Notification {
	n, err := env.repo.CreateNotification(env.ctx, notification.Notification{
		UserID:    userID,
		Type:      notification.TypeSystem,
		Title:     "hello",
		IsRead:    isRead,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	return n
}

func TestCounter_MissThenHit(t *testing.T) {
	env := setupCounter(t)
	env.add(t, "u1", false)
	env.add(t, "u1", false)
	env.add(t, "u1", true)
	env.add(t, "u2", false)

	n, err := env.counter.Count(env.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	val, ok, err := env.cache.Get(env.ctx, notification.UnreadCountKey("u1"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", val)
	assert.Equal(t, time.Minute, env.cache.ttls["unread_notifications:u1"])

	// a stale count is served until invalidated
	env.add(t, "u1", false)
	n, err = env.counter.Count(env.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	env.counter.Invalidate(env.ctx, "u1")
	n, err = env.counter.Count(env.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestCounter_Guest(t *testing.T) {
	env := setupCounter(t)
	env.add(t, "", false)

	n, err := env.counter.Count(env.ctx, "")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, env.cache.ttls)

	env.counter.Invalidate(env.ctx, "") // no-op
}

func TestCounter_CacheFailure(t *testing.T) {
	env := setupCounter(t)
	env.add(t, "u1", false)
	env.cache.setFailing(true)

	n, err := env.counter.Count(env.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	env.counter.Invalidate(env.ctx, "u1") // logged, never fails

	env.add(t, "u1", false)
	n, err = env.counter.Count(env.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCounter_CorruptedEntry(t *testing.T) {
	env := setupCounter(t)
	env.add(t, "u1", false)
	require.NoError(t, env.cache.Set(env.ctx, notification.UnreadCountKey("u1"), "lol", 0))

	n, err := env.counter.Count(env.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
