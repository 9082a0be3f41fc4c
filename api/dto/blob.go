package dto

import "encoding/json"

// CreateBlobRequest is the optional JSON body of POST /blobs. Pointer
// fields distinguish absent values from zero values during validation.
type CreateBlobRequest struct {
	CallbackURL           *string `json:"callback_url"`
	AllowInsecureCallback *bool   `json:"allow_insecure_callback"`
}

type UploadInfo struct {
	URL    string            `json:"url"`
	Fields map[string]string `json:"fields"`
}

type CreateBlobResponse struct {
	BlobID     string     `json:"blob_id"`
	UploadInfo UploadInfo `json:"upload_info"`
}

// BlobResponse mirrors the stored record minus internal fields
// (timestamp, allow_insecure_callback). Result is the recognition labels
// re-parsed into structured JSON rather than the stored string form.
type BlobResponse struct {
	BlobID        string          `json:"blob_id"`
	Status        string          `json:"status"`
	Result        json.RawMessage `json:"result,omitempty"`
	Error         string          `json:"error,omitempty"`
	CallbackURL   string          `json:"callback_url,omitempty"`
	CallbackError string          `json:"callback_error,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
