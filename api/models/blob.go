package models

import (
	"time"
)

type BlobStatus string

const (
	// Presigned upload credential issued, no file uploaded yet.
	StatusAwaitingUpload BlobStatus = "AWAITING_UPLOAD"
	// Recognition ran and produced labels.
	StatusRecognized BlobStatus = "SUCCESSFUL_RECOGNITION"
	// Identical content was recognized recently, result served from cache.
	StatusCachedResult BlobStatus = "SUCCESSFUL_CACHED"
	// Recognition failed (or the file never was an image).
	StatusFailed BlobStatus = "FAILED_RECOGNITION"
	// Identical content already failed recognition before.
	StatusCachedFailure BlobStatus = "FAILED_CACHED"
)

// Terminal reports whether s is past AWAITING_UPLOAD. Terminal statuses
// never change again.
func (s BlobStatus) Terminal() bool {
	return s != "" && s != StatusAwaitingUpload
}

type Blob struct {
	ID                    string
	Status                BlobStatus
	Result                string
	ErrorMessage          string
	CallbackURL           string
	AllowInsecureCallback bool
	CallbackError         string
	UpdatedAt             time.Time
}
