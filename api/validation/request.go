package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"visionRelay/api/dto"
)

const maxBodySize = 4 << 10

// ParseCreateRequest validates and normalizes the POST /blobs body. A
// request without a body (or without a content type) is a valid request
// for a blob with no callback. Any present body must be strict JSON with
// only the known fields and correctly typed values.
func ParseCreateRequest(r *http.Request) (*dto.CreateBlobRequest, error) {
	req := &dto.CreateBlobRequest{}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return nil, ErrMalformedJSON
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" || len(body) == 0 {
		return req, nil
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "application/json" {
		return nil, ErrContentType
	}

	if err := decodeStrict(body, req); err != nil {
		return nil, err
	}

	if req.CallbackURL != nil {
		if err := validateCallbackURL(*req.CallbackURL); err != nil {
			return nil, err
		}
	} else {
		// The flag only has meaning alongside a callback URL.
		req.AllowInsecureCallback = nil
	}

	return req, nil
}

func decodeStrict(body []byte, req *dto.CreateBlobRequest) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	if err := dec.Decode(req); err != nil {
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &typeErr):
			if typeErr.Field == "allow_insecure_callback" {
				return ErrInsecureFlagType
			}
			return ErrCallbackURLType
		case strings.Contains(err.Error(), "unknown field"):
			return ErrUnknownFields
		default:
			return ErrMalformedJSON
		}
	}

	// Trailing garbage after the JSON document.
	if dec.More() {
		return ErrMalformedJSON
	}

	return nil
}

func validateCallbackURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ErrCallbackHost
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrCallbackScheme
	}

	if parsed.Host == "" {
		return ErrCallbackHost
	}

	return nil
}
