package engine

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"visionRelay/worker/cache"
	"visionRelay/worker/kafka"
	"visionRelay/worker/models"
	"visionRelay/worker/prevalidate"
	"visionRelay/worker/recognizer"
	"visionRelay/worker/repository"
)

// ObjectStore is the slice of object storage the engine needs: the two
// prevalidation reads and the post-recognition delete.
type ObjectStore interface {
	ReadRange(ctx context.Context, bucket, key string, start, end int64) ([]byte, error)
	ReadSuffix(ctx context.Context, bucket, key string, n int64) ([]byte, error)
	Delete(ctx context.Context, bucket, key string) error
}

// ResultCache stores recognition outcomes by content fingerprint.
type ResultCache interface {
	Lookup(ctx context.Context, etag string) (*cache.Entry, error)
	StoreSuccess(ctx context.Context, etag, result string, now time.Time) error
	StoreFailure(ctx context.Context, etag, errMsg string, now time.Time) error
	InvalidateRecord(ctx context.Context, blobID string) error
}

// Engine drives a blob from upload to its terminal status. All
// collaborators are injected; the engine holds no other state, so
// concurrent Process calls only interact through the stores.
type Engine struct {
	tasks         repository.Repository
	cache         ResultCache
	storage       ObjectStore
	recognizer    recognizer.Recognizer
	events        kafka.StatusProducer
	cacheLifetime time.Duration
	logger        *zap.Logger
}

func NewEngine(tasks repository.Repository, resultCache ResultCache, storage ObjectStore, rec recognizer.Recognizer, events kafka.StatusProducer, cacheLifetime time.Duration, logger *zap.Logger) *Engine {
	return &Engine{
		tasks:         tasks,
		cache:         resultCache,
		storage:       storage,
		recognizer:    rec,
		events:        events,
		cacheLifetime: cacheLifetime,
		logger:        logger,
	}
}

// Process handles one uploaded blob: cache lookup, prevalidation,
// recognition, terminal transition. Triggered at least once per upload;
// re-running an already-terminal blob overwrites the same terminal state.
func (e *Engine) Process(ctx context.Context, blobID, bucket, etag string) error {
	now := time.Now()

	hit, err := e.applyCached(ctx, blobID, etag, now)
	if err != nil {
		return err
	}
	if hit {
		e.logger.Info("Cache hit", zap.String("blob_id", blobID), zap.String("etag", etag))
		return nil
	}

	result, recErr := e.recognize(ctx, bucket, blobID)
	if recErr != nil {
		if err := e.transition(ctx, blobID, models.StatusFailed, "", recErr.Message); err != nil {
			return err
		}
		if recErr.Cacheable() {
			if err := e.cache.StoreFailure(ctx, etag, recErr.Message, now); err != nil {
				e.logger.Warn("Failed to cache recognition failure",
					zap.String("etag", etag),
					zap.Error(err),
				)
			}
		}
		return nil
	}

	if err := e.transition(ctx, blobID, models.StatusRecognized, result, ""); err != nil {
		return err
	}

	if err := e.cache.StoreSuccess(ctx, etag, result, now); err != nil {
		e.logger.Warn("Failed to cache recognition result",
			zap.String("etag", etag),
			zap.Error(err),
		)
	}

	// The blob content is no longer needed; identical uploads are served
	// by fingerprint from the cache, not by re-reading this object.
	if err := e.storage.Delete(ctx, bucket, blobID); err != nil {
		e.logger.Warn("Failed to delete recognized blob",
			zap.String("blob_id", blobID),
			zap.Error(err),
		)
	}

	return nil
}

// applyCached finishes the blob from the fingerprint cache if possible.
// Cached failures are honored no matter how old they are; cached results
// stale past the configured lifetime count as a miss.
func (e *Engine) applyCached(ctx context.Context, blobID, etag string, now time.Time) (bool, error) {
	entry, err := e.cache.Lookup(ctx, etag)
	if err != nil {
		e.logger.Warn("Cache lookup failed, treating as miss",
			zap.String("etag", etag),
			zap.Error(err),
		)
		return false, nil
	}
	if entry == nil {
		return false, nil
	}

	if entry.Error != "" {
		return true, e.transition(ctx, blobID, models.StatusCachedFailure, "", entry.Error)
	}

	if now.Unix()-entry.Timestamp < int64(e.cacheLifetime.Seconds()) {
		return true, e.transition(ctx, blobID, models.StatusCachedResult, entry.Result, "")
	}

	return false, nil
}

// recognize prevalidates the stored bytes and runs label detection. Every
// failure comes back as a classified *recognizer.Error.
func (e *Engine) recognize(ctx context.Context, bucket, key string) (string, *recognizer.Error) {
	head, err := e.storage.ReadRange(ctx, bucket, key, 0, prevalidate.HeaderSize-1)
	if err != nil {
		e.logger.Error("Failed to read blob header", zap.String("key", key), zap.Error(err))
		return "", recognizer.ErrInternal
	}

	// The footer only matters for JPEG; PNG is judged on the header
	// alone, which saves the second ranged read.
	var tail []byte
	if prevalidate.HasJPEGHeader(head) {
		tail, err = e.storage.ReadSuffix(ctx, bucket, key, prevalidate.FooterSize)
		if err != nil {
			e.logger.Error("Failed to read blob footer", zap.String("key", key), zap.Error(err))
			return "", recognizer.ErrInternal
		}
	}

	if !prevalidate.Valid(head, tail) {
		return "", recognizer.ErrInvalidFormat
	}

	result, err := e.recognizer.DetectLabels(ctx, bucket, key)
	if err != nil {
		var recErr *recognizer.Error
		if errors.As(err, &recErr) {
			return "", recErr
		}
		return "", recognizer.ErrInternal
	}

	return result, nil
}

// transition writes the terminal state, invalidates the served record
// copy and, for blobs with a registered callback, publishes the new
// record image for the dispatcher.
func (e *Engine) transition(ctx context.Context, blobID string, status models.BlobStatus, result, errMsg string) error {
	if err := e.tasks.SetTerminal(ctx, blobID, status, result, errMsg); err != nil {
		return err
	}

	e.logger.Info("Blob transitioned",
		zap.String("blob_id", blobID),
		zap.String("status", string(status)),
		zap.String("error", errMsg),
	)

	if err := e.cache.InvalidateRecord(ctx, blobID); err != nil {
		e.logger.Warn("Failed to invalidate record cache",
			zap.String("blob_id", blobID),
			zap.Error(err),
		)
	}

	blob, err := e.tasks.GetBlob(ctx, blobID)
	if err != nil {
		e.logger.Warn("Failed to load blob for callback check",
			zap.String("blob_id", blobID),
			zap.Error(err),
		)
		return nil
	}

	if blob.CallbackURL == "" {
		return nil
	}

	msg := &kafka.StatusMessage{
		BlobID:                blobID,
		Status:                string(status),
		Result:                result,
		Error:                 errMsg,
		CallbackURL:           blob.CallbackURL,
		AllowInsecureCallback: blob.AllowInsecureCallback,
	}
	if err := e.events.PublishStatus(ctx, msg); err != nil {
		e.logger.Error("Failed to publish status event",
			zap.String("blob_id", blobID),
			zap.Error(err),
		)
	}

	return nil
}
