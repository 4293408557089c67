// api/errors/access_errors.go
package errors

import "errors"

var (
	// ErrUnauthenticated: missing, expired or unrecognized session credential.
	ErrUnauthenticated = errors.New("unauthenticated")

	// Authorization denials. All of them map to 403 at the HTTP surface.
	ErrRoleMismatch      = errors.New("role not permitted for operation")
	ErrCrossTenant       = errors.New("resource belongs to another tenant")
	ErrInactivePrincipal = errors.New("principal is inactive")

	// ErrInvalidRequest: the request parameters could not be parsed. The
	// guard pipeline still runs first, so an unauthenticated caller with
	// bad parameters is told 401, not 400.
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrUpstreamUnavailable: identity provider or principal store
	// unreachable or timed out.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrCacheBackend is degraded-mode only: it is logged and absorbed,
	// never returned to a caller of the guard.
	ErrCacheBackend = errors.New("cache backend error")

	ErrPrincipalNotFound = errors.New("principal not found")
	ErrTenantNotFound    = errors.New("tenant not found")

	// ErrDatabaseOperation: the principal/tenant store failed a query. The
	// guard reports it as the upstream being unavailable.
	ErrDatabaseOperation = errors.New("database operation failed")
)
