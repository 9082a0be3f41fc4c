package cache

import (
	"context"
	"encoding/json"
	"time"

	"visionRelay/api/database"
	"visionRelay/api/dto"
)

const (
	recordKeyPrefix = "blob:record:"
	recordTTL       = 10 * time.Minute
)

// RecordCache keeps recently served blob records in Redis. The worker
// deletes the key on every status transition, so a cached entry is never
// older than the record it was built from.
type RecordCache struct {
	cache *database.Cache
}

func NewRecordCache(cache *database.Cache) *RecordCache {
	return &RecordCache{cache: cache}
}

func (rc *RecordCache) Get(ctx context.Context, blobID string) (*dto.BlobResponse, error) {
	data, err := rc.cache.Get(ctx, recordKeyPrefix+blobID)
	if err != nil {
		return nil, err
	}

	var record dto.BlobResponse
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, err
	}

	return &record, nil
}

func (rc *RecordCache) Set(ctx context.Context, blobID string, record *dto.BlobResponse) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	return rc.cache.Set(ctx, recordKeyPrefix+blobID, data, recordTTL)
}
