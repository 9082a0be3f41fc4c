package repository

import (
	"context"
	"errors"

	"visionRelay/api/models"
)

var ErrBlobNotFound = errors.New("blob not found")

type Repository interface {
	CreateBlob(ctx context.Context, blob *models.Blob) error
	GetBlob(ctx context.Context, id string) (*models.Blob, error)
}
