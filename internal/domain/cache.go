package domain

import (
	"context"
	"time"
)

// PageCache stores rendered pages. Keys are built with PageCacheKey;
// Invalidate(path) drops every entry built from that path, whatever its query or viewer.
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, path string) error
}

// PageCacheKey is the cache key of the page at path, rendered for viewer.
func PageCacheKey(path, query, viewer string) string {
	return PageCachePrefix(path) + query + "|" + viewer
}

// PageCachePrefix is the common prefix of every key built from path.
func PageCachePrefix(path string) string {
	return path + "|"
}

// SubmissionGuard refuses a second concurrent submission of the same form instance.
// Acquire returns ok=false, without error, when the key is already held. The
// token names this hold: Release drops the key only while it still carries
// token, so a hold that expired and was taken over survives the late release.
type SubmissionGuard interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}
