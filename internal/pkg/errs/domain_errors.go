package errs

import "errors"

// Domain-specific sentinel errors shared across usecase layers
var (
	// Access decision errors
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")

	// Infrastructure-facing errors. These are never shown verbatim to API
	// callers; handlers map them to a generic message plus a 500 status.
	ErrServerConfiguration = errors.New("server configuration error")
	ErrIdentityProvider    = errors.New("identity provider failure")
	ErrMembershipLookup    = errors.New("membership lookup failed")

	// Directory errors
	ErrInvalidStatusFilter = errors.New("invalid status filter")
)
