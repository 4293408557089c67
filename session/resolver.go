// api/session/resolver.go

// Package session turns an opaque session credential into a verified
// principal. It never caches negative results: a revoked session must fail
// on the very next call.
package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	campus_errors "github.com/campuspulse/api/errors"
	logger "github.com/campuspulse/api/logging"
	"github.com/campuspulse/api/model"
)

// IdentityProvider verifies a credential with the external identity provider
// and returns the provider's stable external identity reference.
//
// Implementations report a bad credential with ErrUnauthenticated and an
// unreachable provider with ErrUpstreamUnavailable; any other error is
// treated as the provider being unavailable.
type IdentityProvider interface {
	Verify(ctx context.Context, credential string) (string, error)
}

// PrincipalStore looks up the local principal record joined by the
// provider's external reference.
type PrincipalStore interface {
	ByExternalRef(ctx context.Context, externalRef string) (model.Principal, error)
}

// Resolver chains the identity provider and the principal store. Both calls
// share one timeout so a hung collaborator fails the request instead of
// hanging it.
type Resolver struct {
	provider IdentityProvider
	store    PrincipalStore
	timeout  time.Duration
}

func NewResolver(provider IdentityProvider, store PrincipalStore, timeout time.Duration) *Resolver {
	return &Resolver{provider: provider, store: store, timeout: timeout}
}

// Resolve maps a session credential to a Principal, or fails with
// ErrUnauthenticated (missing, expired, unrecognized credential; principal
// record absent) or ErrUpstreamUnavailable (provider or store unreachable,
// timeout).
func (r *Resolver) Resolve(ctx context.Context, credential string) (model.Principal, error) {
	if credential == "" {
		return model.Principal{}, campus_errors.ErrUnauthenticated
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	externalRef, err := r.provider.Verify(ctx, credential)
	if err != nil {
		if isUnavailable(ctx, err) {
			logger.Error("Identity provider unavailable", zap.Error(err))
			return model.Principal{}, campus_errors.ErrUpstreamUnavailable
		}
		logger.Debug("Credential rejected by identity provider", zap.Error(err))
		return model.Principal{}, campus_errors.ErrUnauthenticated
	}

	principal, err := r.store.ByExternalRef(ctx, externalRef)
	if err != nil {
		if errors.Is(err, campus_errors.ErrPrincipalNotFound) {
			logger.Warn("Verified identity has no principal record",
				zap.String("externalRef", externalRef))
			return model.Principal{}, campus_errors.ErrUnauthenticated
		}
		logger.Error("Principal store lookup failed", zap.Error(err),
			zap.String("externalRef", externalRef))
		return model.Principal{}, campus_errors.ErrUpstreamUnavailable
	}

	return principal, nil
}

func isUnavailable(ctx context.Context, err error) bool {
	return errors.Is(err, campus_errors.ErrUpstreamUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) ||
		ctx.Err() != nil
}
