package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"visionRelay/api/dto"
	"visionRelay/api/models"
	"visionRelay/api/repository"
)

type fakeRepo struct {
	created *models.Blob
	blob    *models.Blob
}

func (f *fakeRepo) CreateBlob(ctx context.Context, blob *models.Blob) error {
	f.created = blob
	return nil
}

func (f *fakeRepo) GetBlob(ctx context.Context, id string) (*models.Blob, error) {
	if f.blob == nil || f.blob.ID != id {
		return nil, repository.ErrBlobNotFound
	}
	return f.blob, nil
}

type fakeRecordCache struct {
	records map[string]*dto.BlobResponse
}

func newFakeRecordCache() *fakeRecordCache {
	return &fakeRecordCache{records: make(map[string]*dto.BlobResponse)}
}

func (f *fakeRecordCache) Get(ctx context.Context, blobID string) (*dto.BlobResponse, error) {
	if record, ok := f.records[blobID]; ok {
		return record, nil
	}
	return nil, errors.New("cache miss")
}

func (f *fakeRecordCache) Set(ctx context.Context, blobID string, record *dto.BlobResponse) error {
	f.records[blobID] = record
	return nil
}

type fakePresigner struct {
	presignedKeys []string
}

func (f *fakePresigner) PresignUpload(ctx context.Context, key string, maxSize int64, ttl time.Duration) (*dto.UploadInfo, error) {
	f.presignedKeys = append(f.presignedKeys, key)
	return &dto.UploadInfo{
		URL:    "http://storage.local/recognition-blobs",
		Fields: map[string]string{"key": key},
	}, nil
}

func newService(t *testing.T, repo *fakeRepo, recordCache *fakeRecordCache, presigner *fakePresigner) *BlobService {
	return NewBlobService(repo, recordCache, presigner, 15*1024*1024, time.Hour, zaptest.NewLogger(t))
}

func TestCreateBlob(t *testing.T) {
	repo := &fakeRepo{}
	presigner := &fakePresigner{}
	s := newService(t, repo, newFakeRecordCache(), presigner)

	callbackURL := "https://example.com/hook"
	insecure := true
	resp, err := s.CreateBlob(context.Background(), &dto.CreateBlobRequest{
		CallbackURL:           &callbackURL,
		AllowInsecureCallback: &insecure,
	})
	if err != nil {
		t.Fatalf("CreateBlob failed: %v", err)
	}

	if _, err := uuid.Parse(resp.BlobID); err != nil {
		t.Errorf("Expected blob_id to be a UUID, got %q", resp.BlobID)
	}

	if repo.created == nil {
		t.Fatal("Expected a blob record to be written")
	}
	if repo.created.Status != models.StatusAwaitingUpload {
		t.Errorf("Expected AWAITING_UPLOAD, got %s", repo.created.Status)
	}
	if repo.created.CallbackURL != callbackURL || !repo.created.AllowInsecureCallback {
		t.Error("Expected callback configuration on the record")
	}

	// The credential is scoped to the blob's own key.
	if len(presigner.presignedKeys) != 1 || presigner.presignedKeys[0] != resp.BlobID {
		t.Errorf("Expected presigned key %q, got %v", resp.BlobID, presigner.presignedKeys)
	}
}

func TestCreateBlob_NoCallback(t *testing.T) {
	repo := &fakeRepo{}
	s := newService(t, repo, newFakeRecordCache(), &fakePresigner{})

	if _, err := s.CreateBlob(context.Background(), &dto.CreateBlobRequest{}); err != nil {
		t.Fatalf("CreateBlob failed: %v", err)
	}

	if repo.created.CallbackURL != "" || repo.created.AllowInsecureCallback {
		t.Error("Expected no callback configuration on the record")
	}
}

func TestGetBlob_StripsInternalFields(t *testing.T) {
	blobID := uuid.New().String()
	repo := &fakeRepo{blob: &models.Blob{
		ID:                    blobID,
		Status:                models.StatusRecognized,
		Result:                `[{"name":"Cat","confidence":99.1}]`,
		CallbackURL:           "https://example.com/hook",
		AllowInsecureCallback: true,
		UpdatedAt:             time.Now(),
	}}
	s := newService(t, repo, newFakeRecordCache(), &fakePresigner{})

	record, err := s.GetBlob(context.Background(), blobID)
	if err != nil {
		t.Fatalf("GetBlob failed: %v", err)
	}

	if record.Status != "SUCCESSFUL_RECOGNITION" {
		t.Errorf("Expected SUCCESSFUL_RECOGNITION, got %s", record.Status)
	}
	if string(record.Result) != `[{"name":"Cat","confidence":99.1}]` {
		t.Errorf("Expected structured result, got %s", record.Result)
	}
	if record.CallbackURL != "https://example.com/hook" {
		t.Error("Expected callback_url to be returned")
	}
}

func TestGetBlob_NotFound(t *testing.T) {
	s := newService(t, &fakeRepo{}, newFakeRecordCache(), &fakePresigner{})

	_, err := s.GetBlob(context.Background(), uuid.New().String())
	if !errors.Is(err, repository.ErrBlobNotFound) {
		t.Errorf("Expected ErrBlobNotFound, got %v", err)
	}
}

func TestGetBlob_MalformedIDIsNotFound(t *testing.T) {
	s := newService(t, &fakeRepo{}, newFakeRecordCache(), &fakePresigner{})

	_, err := s.GetBlob(context.Background(), "not-a-uuid")
	if !errors.Is(err, repository.ErrBlobNotFound) {
		t.Errorf("Expected ErrBlobNotFound, got %v", err)
	}
}

func TestGetBlob_ServesFromCache(t *testing.T) {
	blobID := uuid.New().String()
	recordCache := newFakeRecordCache()
	recordCache.records[blobID] = &dto.BlobResponse{BlobID: blobID, Status: "AWAITING_UPLOAD"}

	s := newService(t, &fakeRepo{}, recordCache, &fakePresigner{})

	record, err := s.GetBlob(context.Background(), blobID)
	if err != nil {
		t.Fatalf("GetBlob failed: %v", err)
	}
	if record.Status != "AWAITING_UPLOAD" {
		t.Errorf("Expected cached record, got %+v", record)
	}
}
