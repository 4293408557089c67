// api/middleware/guard.go
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuspulse/api/authz"
	"github.com/campuspulse/api/cache"
	campus_errors "github.com/campuspulse/api/errors"
	"github.com/campuspulse/api/guard"
	"github.com/campuspulse/api/model"
	"github.com/campuspulse/api/util"
)

// HandlerBuilder parses request parameters (path, query) and returns the
// pure payload handler the guard may invoke, plus the canonical variant of
// the parameters the payload depends on ("" when there are none). It runs
// before authorization, so it must not touch any data store; it only reads
// the request.
type HandlerBuilder func(c *gin.Context) (guard.Handler, string, error)

// Protected wires one route into the server-side request guard. The
// credential comes from the Authorization header and the resource tenant
// from the :tenantId path parameter. On allow, the response carries the
// tier's Cache-Control header.
//
// A parameter parse failure does not answer early: the request still runs
// the guard pipeline with a handler that fails, so session resolution and
// the authorization decision settle first and an unauthenticated caller
// with bad parameters gets 401, not 400.
func Protected(g *guard.Guard, operation string, requirement authz.Requirement, volatility cache.Volatility, scope guard.Scope, build HandlerBuilder) gin.HandlerFunc {
	return func(c *gin.Context) {
		handle, variant, err := build(c)
		if err != nil {
			buildErr := err
			handle = func(ctx context.Context, p model.Principal) ([]byte, error) {
				return nil, fmt.Errorf("%w: %v", campus_errors.ErrInvalidRequest, buildErr)
			}
			// No valid build ever produces this variant, so the failing
			// handler can neither read nor seed a real entry.
			variant = "invalid"
		}

		result, err := g.Do(c.Request.Context(), guard.Request{
			Credential:       c.GetHeader("Authorization"),
			Operation:        operation,
			Requirement:      requirement,
			ResourceTenantID: c.Param("tenantId"),
			Volatility:       volatility,
			Scope:            scope,
			Variant:          variant,
		}, handle)
		if err != nil {
			status := StatusForError(err)
			if status >= http.StatusInternalServerError {
				util.RespondWithError(c, status, err.Error(), err)
			} else {
				c.JSON(status, gin.H{"error": err.Error()})
			}
			return
		}

		c.Header("Cache-Control", result.Tier.CacheControl())
		c.Header("X-Cache", string(result.CacheStatus))
		c.Data(http.StatusOK, "application/json", result.Payload)
	}
}

// StatusForError maps the guard error taxonomy to HTTP status classes.
// Cache backend errors never reach this point: the guard absorbs them.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, campus_errors.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, campus_errors.ErrRoleMismatch),
		errors.Is(err, campus_errors.ErrCrossTenant),
		errors.Is(err, campus_errors.ErrInactivePrincipal):
		return http.StatusForbidden
	case errors.Is(err, campus_errors.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, campus_errors.ErrUpstreamUnavailable),
		errors.Is(err, campus_errors.ErrDatabaseOperation):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
