package models

type BlobStatus string

const (
	StatusAwaitingUpload BlobStatus = "AWAITING_UPLOAD"
	StatusRecognized     BlobStatus = "SUCCESSFUL_RECOGNITION"
	StatusCachedResult   BlobStatus = "SUCCESSFUL_CACHED"
	StatusFailed         BlobStatus = "FAILED_RECOGNITION"
	StatusCachedFailure  BlobStatus = "FAILED_CACHED"
)

type Blob struct {
	ID                    string
	Status                BlobStatus
	Result                string
	ErrorMessage          string
	CallbackURL           string
	AllowInsecureCallback bool
	CallbackError         string
}
