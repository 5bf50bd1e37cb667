package repository

import (
	"context"
	"time"
)

// CacheRepository is a byte-oriented cache for query results. A nil value
// with a nil error means cache miss.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// InvalidatePrefix removes every key under the given prefix. Used after
	// ingestion and truncation to drop stale query results.
	InvalidatePrefix(ctx context.Context, prefix string) error
}
