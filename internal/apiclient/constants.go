package apiclient

import "time"

const (
	// DefaultTimeout bounds every call that has no tighter deadline of its own
	DefaultTimeout = 30 * time.Second

	// MutationTimeout is the abort deadline for create, forgot-password and the
	// user listing, after which the call reports ErrTimedOut
	MutationTimeout = 15 * time.Second

	// cookieSaveTimeout bounds writes to the persistent cookie store
	cookieSaveTimeout = 2 * time.Second
)

// Redirect targets for the global unauthorized/forbidden reaction.
const (
	UnauthorizedRedirect = "/"
	ForbiddenRedirect    = "/?error=forbidden"
)
