package kafka

import (
	"encoding/json"
	"net/url"
)

// UploadNotification is the S3-compatible event the storage bucket
// publishes to the uploads topic when an object lands. Only the fields
// the engine needs are decoded.
type UploadNotification struct {
	Records []UploadRecord `json:"Records"`
}

type UploadRecord struct {
	S3 S3Entity `json:"s3"`
}

type S3Entity struct {
	Bucket BucketInfo `json:"bucket"`
	Object ObjectInfo `json:"object"`
}

type BucketInfo struct {
	Name string `json:"name"`
}

type ObjectInfo struct {
	Key  string `json:"key"`
	ETag string `json:"eTag"`
	Size int64  `json:"size"`
}

func ParseUploadNotification(data []byte) (*UploadNotification, error) {
	var event UploadNotification
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}

	// Object keys arrive URL-encoded in bucket notifications.
	for i := range event.Records {
		if key, err := url.QueryUnescape(event.Records[i].S3.Object.Key); err == nil {
			event.Records[i].S3.Object.Key = key
		}
	}

	return &event, nil
}

// StatusMessage carries the new record image after a terminal transition.
// It is published only for blobs with a registered callback and consumed
// by the callback dispatcher.
type StatusMessage struct {
	BlobID                string `json:"blob_id"`
	Status                string `json:"status"`
	Result                string `json:"result,omitempty"`
	Error                 string `json:"error,omitempty"`
	CallbackURL           string `json:"callback_url"`
	AllowInsecureCallback bool   `json:"allow_insecure_callback"`
}
