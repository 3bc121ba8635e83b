package handler

const (
	// RootPath is the root path the route group.
	RootPath = "/"

	// APIPath is the prefix of all JSON endpoints.
	APIPath = RootPath + "api/"

	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg, db or auth service is nil"

	// MsgInvalidID is returned for a malformed :id parameter.
	MsgInvalidID = "invalid id"
	// MsgInvalidBody is returned when the request body cannot be parsed.
	MsgInvalidBody = "invalid request body"
	// MsgValidationFailed is returned when the request body fails validation.
	MsgValidationFailed = "validation failed"
	// MsgInternal is returned for storage failures.
	MsgInternal = "internal error"

	// HeaderStaleCache is set on a saved change whose cached copy could not be dropped.
	// Readers keep seeing the old value until the cache entry expires.
	HeaderStaleCache = "X-Cache-Stale"
)
