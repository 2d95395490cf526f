package sessauth

import "errors"

var (
	// ErrInvalidAccessToken is returned whenever a token fails verification:
	// malformed encoding, bad signature, expiry in the past, or a subject that
	// is absent from the directory or no longer logged in. Sub-causes are
	// never distinguished.
	ErrInvalidAccessToken = errors.New("invalid access token")
	// ErrInvalidLogin is returned when a login request is structurally
	// unusable (empty loginname).
	ErrInvalidLogin = errors.New("invalid login request")
	// ErrForbidden is returned when an authenticated identity lacks the
	// required role. Distinct from ErrInvalidAccessToken: authentication
	// succeeded, authorization failed.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned by positional directory lookups with an index
	// out of range.
	ErrNotFound = errors.New("not found")
	// ErrInternal is returned when token signing fails. Detail is logged
	// locally, never surfaced to the caller.
	ErrInternal = errors.New("internal error")
	// ErrEngineNotReady is returned when an Engine method is called on a nil
	// or unbuilt engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
