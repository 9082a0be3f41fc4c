package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"visionRelay/worker/models"
)

var ErrBlobNotFound = errors.New("blob not found")

type Repository interface {
	GetBlob(ctx context.Context, blobID string) (*models.Blob, error)
	SetTerminal(ctx context.Context, blobID string, status models.BlobStatus, result, errMsg string) error
	SetCallbackError(ctx context.Context, blobID, message string) error
}

type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) GetBlob(ctx context.Context, blobID string) (*models.Blob, error) {
	query := `
		SELECT id, status, result, error_message, callback_url, allow_insecure_callback, callback_error
		FROM blobs
		WHERE id = $1
	`

	var blob models.Blob
	err := r.db.QueryRow(ctx, query, blobID).Scan(
		&blob.ID,
		&blob.Status,
		&blob.Result,
		&blob.ErrorMessage,
		&blob.CallbackURL,
		&blob.AllowInsecureCallback,
		&blob.CallbackError,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBlobNotFound
		}
		return nil, err
	}

	return &blob, nil
}

// SetTerminal records a status transition together with its result or
// error in a single write. Last write wins; duplicate triggers for the
// same blob simply overwrite the same terminal state.
func (r *PostgresRepo) SetTerminal(ctx context.Context, blobID string, status models.BlobStatus, result, errMsg string) error {
	query := `
		UPDATE blobs
		SET status = $1, result = $2, error_message = $3, updated_at = NOW()
		WHERE id = $4
	`

	tag, err := r.db.Exec(ctx, query, status, result, errMsg, blobID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBlobNotFound
	}

	return nil
}

// SetCallbackError is purely diagnostic and deliberately leaves status,
// result and error untouched.
func (r *PostgresRepo) SetCallbackError(ctx context.Context, blobID, message string) error {
	query := `UPDATE blobs SET callback_error = $1 WHERE id = $2`

	tag, err := r.db.Exec(ctx, query, message, blobID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBlobNotFound
	}

	return nil
}
