package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"visionRelay/api/database"
	"visionRelay/api/models"
)

type PostgresRepo struct {
	db *database.DB
}

func NewPostgresRepo(db *database.DB) Repository {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) CreateBlob(ctx context.Context, blob *models.Blob) error {
	query := `
		INSERT INTO blobs (id, status, callback_url, allow_insecure_callback, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING updated_at
	`

	return r.db.Pool.QueryRow(ctx, query,
		blob.ID,
		blob.Status,
		blob.CallbackURL,
		blob.AllowInsecureCallback,
	).Scan(&blob.UpdatedAt)
}

func (r *PostgresRepo) GetBlob(ctx context.Context, id string) (*models.Blob, error) {
	query := `
		SELECT id, status, result, error_message, callback_url, allow_insecure_callback, callback_error, updated_at
		FROM blobs
		WHERE id = $1
	`

	row := r.db.Pool.QueryRow(ctx, query, id)

	var blob models.Blob
	err := row.Scan(
		&blob.ID,
		&blob.Status,
		&blob.Result,
		&blob.ErrorMessage,
		&blob.CallbackURL,
		&blob.AllowInsecureCallback,
		&blob.CallbackError,
		&blob.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBlobNotFound
		}
		return nil, err
	}

	return &blob, nil
}
