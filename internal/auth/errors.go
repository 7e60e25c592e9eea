package auth

import "errors"

var (
	// ErrValidation covers missing or empty required fields.
	ErrValidation = errors.New("missing required field")

	// ErrDuplicateAccount is returned when the username or the email is
	// already taken. The store's uniqueness constraints are the arbiter.
	ErrDuplicateAccount = errors.New("username or email already registered")

	// ErrInvalidCredentials is returned both for an unknown username and for
	// a wrong password. A single value with a single message, so the two
	// cases are indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUnauthenticated is returned for a missing, malformed, or expired
	// session token on a protected surface.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrStoreUnavailable wraps persistence failures.
	ErrStoreUnavailable = errors.New("store unavailable")
)
