package model

import "errors"

// Sentinel errors returned by services and stores. The transport layer
// maps each to its own status code; auth failures are deliberately kept
// distinct (missing vs unknown user vs bad secret) because clients rely
// on the distinction.
var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrUnknownUser        = errors.New("unknown user")
	ErrBadSecret          = errors.New("bad secret")

	ErrRegistrationClosed = errors.New("registrations closed")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrDuplicateUser      = errors.New("username already registered")

	ErrIncompleteDocument = errors.New("incomplete document")
	ErrMissingDocument    = errors.New("missing document")
	ErrNotFound           = errors.New("not found")
)
