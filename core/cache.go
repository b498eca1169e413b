package core

import (
	"context"
	"time"
)

// CacheKey is a typed cache key: a purpose plus the subject it is computed for.
type CacheKey struct {
	Purpose string
	Subject string
}

func NewCacheKey(purpose, subject string) CacheKey {
	return CacheKey{Purpose: purpose, Subject: subject}
}

func (k CacheKey) String() string {
	return k.Purpose + ":" + k.Subject
}

// Cache is a string key-value store with expiring entries.
type Cache interface {
	// Get returns false if the key is missing or expired.
	Get(ctx context.Context, key CacheKey) (string, bool, error)
	Set(ctx context.Context, key CacheKey, value string, ttl time.Duration) error
	Delete(ctx context.Context, key CacheKey) error
}
