package validation

import "errors"

var (
	ErrContentType      = errors.New("this endpoint accepts application/json only")
	ErrMalformedJSON    = errors.New("unable to parse body as JSON, please check your request")
	ErrUnknownFields    = errors.New("request contains unknown keys, please make sure only (callback_url, allow_insecure_callback) fields are present")
	ErrCallbackURLType  = errors.New("callback_url should be a string")
	ErrInsecureFlagType = errors.New("allow_insecure_callback should be a boolean")
	ErrCallbackScheme   = errors.New("callback_url only supports http and https protocols, please make sure your callback URL starts with 'http://' or 'https://'")
	ErrCallbackHost     = errors.New("invalid callback_url, please check your request")
)
