package workflow

import "errors"

// Sentinel errors for the workflow engine. Handlers map these to HTTP
// status codes; anything else is reported as a generic server error.
var (
	// ErrValidation covers bad input: non-PDF uploads, missing fields,
	// unknown decision values.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when an id or username resolves to nothing.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned on duplicate username/email at signup.
	ErrConflict = errors.New("already exists")

	// ErrAuth covers bad credentials, invalid OTP codes and role checks.
	ErrAuth = errors.New("unauthorized")

	// ErrStorage is returned when the object store rejects a write.
	ErrStorage = errors.New("object storage failure")
)
