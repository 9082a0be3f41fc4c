package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	resultKeyPrefix = "recognition:etag:"
	recordKeyPrefix = "blob:record:"
)

// Entry is one cached recognition outcome, keyed by content fingerprint.
// Exactly one of Result and Error is set.
type Entry struct {
	Timestamp int64  `json:"timestamp"`
	Result    string `json:"result,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ResultCache stores recognition outcomes by content fingerprint. Success
// entries expire after the configured lifetime; failure entries never
// expire, since a file that is not an image will not become one.
type ResultCache struct {
	client   *redis.Client
	lifetime time.Duration
}

func NewResultCache(client *redis.Client, lifetime time.Duration) *ResultCache {
	return &ResultCache{client: client, lifetime: lifetime}
}

// Lookup returns the cached entry for a fingerprint, or nil on a miss.
func (c *ResultCache) Lookup(ctx context.Context, etag string) (*Entry, error) {
	data, err := c.client.Get(ctx, resultKeyPrefix+etag).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var entry Entry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, err
	}

	return &entry, nil
}

func (c *ResultCache) StoreSuccess(ctx context.Context, etag, result string, now time.Time) error {
	return c.store(ctx, etag, &Entry{Timestamp: now.Unix(), Result: result}, c.lifetime)
}

func (c *ResultCache) StoreFailure(ctx context.Context, etag, errMsg string, now time.Time) error {
	return c.store(ctx, etag, &Entry{Timestamp: now.Unix(), Error: errMsg}, 0)
}

func (c *ResultCache) store(ctx context.Context, etag string, entry *Entry, ttl time.Duration) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, resultKeyPrefix+etag, data, ttl).Err()
}

// InvalidateRecord drops the api-side cached copy of a blob record so the
// next GET observes the new status.
func (c *ResultCache) InvalidateRecord(ctx context.Context, blobID string) error {
	return c.client.Del(ctx, recordKeyPrefix+blobID).Err()
}
