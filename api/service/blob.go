package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"visionRelay/api/dto"
	"visionRelay/api/models"
	"visionRelay/api/repository"
)

// UploadPresigner is the slice of the object storage client the create
// operation needs.
type UploadPresigner interface {
	PresignUpload(ctx context.Context, key string, maxSize int64, ttl time.Duration) (*dto.UploadInfo, error)
}

// RecordCache caches served blob records.
type RecordCache interface {
	Get(ctx context.Context, blobID string) (*dto.BlobResponse, error)
	Set(ctx context.Context, blobID string, record *dto.BlobResponse) error
}

type BlobService struct {
	repo        repository.Repository
	cache       RecordCache
	storage     UploadPresigner
	maxFileSize int64
	uploadTTL   time.Duration
	logger      *zap.Logger
}

func NewBlobService(repo repository.Repository, recordCache RecordCache, storage UploadPresigner, maxFileSize int64, uploadTTL time.Duration, logger *zap.Logger) *BlobService {
	return &BlobService{
		repo:        repo,
		cache:       recordCache,
		storage:     storage,
		maxFileSize: maxFileSize,
		uploadTTL:   uploadTTL,
		logger:      logger,
	}
}

// CreateBlob issues a fresh blob id and a presigned upload credential and
// records the blob as AWAITING_UPLOAD. The record is written after the
// credential is issued but before the response is returned, so a record
// always exists by the time an upload can land.
func (s *BlobService) CreateBlob(ctx context.Context, req *dto.CreateBlobRequest) (*dto.CreateBlobResponse, error) {
	blobID := uuid.New().String()

	uploadInfo, err := s.storage.PresignUpload(ctx, blobID, s.maxFileSize, s.uploadTTL)
	if err != nil {
		return nil, err
	}

	blob := &models.Blob{
		ID:     blobID,
		Status: models.StatusAwaitingUpload,
	}
	if req.CallbackURL != nil {
		blob.CallbackURL = *req.CallbackURL
		if req.AllowInsecureCallback != nil {
			blob.AllowInsecureCallback = *req.AllowInsecureCallback
		}
	}

	if err := s.repo.CreateBlob(ctx, blob); err != nil {
		return nil, err
	}

	s.logger.Info("Generated blob", zap.String("blob_id", blobID))

	return &dto.CreateBlobResponse{
		BlobID:     blobID,
		UploadInfo: *uploadInfo,
	}, nil
}

func (s *BlobService) GetBlob(ctx context.Context, blobID string) (*dto.BlobResponse, error) {
	if _, err := uuid.Parse(blobID); err != nil {
		return nil, repository.ErrBlobNotFound
	}

	if record, err := s.cache.Get(ctx, blobID); err == nil {
		return record, nil
	}

	blob, err := s.repo.GetBlob(ctx, blobID)
	if err != nil {
		return nil, err
	}

	record := toResponse(blob)

	if err := s.cache.Set(ctx, blobID, record); err != nil {
		s.logger.Warn("Failed to cache blob record",
			zap.String("blob_id", blobID),
			zap.Error(err),
		)
	}

	return record, nil
}

func toResponse(blob *models.Blob) *dto.BlobResponse {
	record := &dto.BlobResponse{
		BlobID:        blob.ID,
		Status:        string(blob.Status),
		Error:         blob.ErrorMessage,
		CallbackURL:   blob.CallbackURL,
		CallbackError: blob.CallbackError,
	}

	// The result is stored as a serialized string; callers get it back as
	// structured JSON.
	if blob.Result != "" {
		if json.Valid([]byte(blob.Result)) {
			record.Result = json.RawMessage(blob.Result)
		} else {
			quoted, _ := json.Marshal(blob.Result)
			record.Result = quoted
		}
	}

	return record
}
