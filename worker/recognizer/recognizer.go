package recognizer

import "context"

type ErrorKind int

const (
	// The content is not a JPEG or PNG image. Permanent for given bytes.
	KindInvalidFormat ErrorKind = iota
	// The image exceeds the recognition API's size limit. Permanent.
	KindTooLarge
	// The recognition API rate limit was hit. Transient.
	KindThrottled
	// Any other recognition fault. Transient.
	KindInternal
)

// Error is a classified recognition failure. Message is the exact text
// stored on the blob record (and in the failure cache when the kind is
// permanent), so callers branch on Kind, never on the string.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Cacheable reports whether the failure is guaranteed to recur for the
// same content.
func (e *Error) Cacheable() bool {
	return e.Kind == KindInvalidFormat || e.Kind == KindTooLarge
}

var (
	ErrInvalidFormat = &Error{Kind: KindInvalidFormat, Message: "415 Invalid image format"}
	ErrTooLarge      = &Error{Kind: KindTooLarge, Message: "400 Image too large"}
	ErrThrottled     = &Error{Kind: KindThrottled, Message: "429 Try again later"}
	ErrInternal      = &Error{Kind: KindInternal, Message: "500 Internal server error"}
)

// Label is one detected label with its confidence score.
type Label struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Recognizer detects labels on an image already sitting in object
// storage. Implementations return the labels serialized as JSON, or an
// *Error classifying the failure.
type Recognizer interface {
	DetectLabels(ctx context.Context, bucket, key string) (string, error)
}
