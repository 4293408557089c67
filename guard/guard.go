// api/guard/guard.go

// Package guard is the server-side authority over every protected operation.
// It sequences session resolution, the authorization decision, the response
// cache and finally the handler, in that order; no handler or cache work
// happens before authorization has fully resolved.
package guard

import (
	"context"
	stderrors "errors"
	"time"

	"go.uber.org/zap"

	"github.com/campuspulse/api/audit"
	"github.com/campuspulse/api/authz"
	"github.com/campuspulse/api/cache"
	campus_errors "github.com/campuspulse/api/errors"
	logger "github.com/campuspulse/api/logging"
	"github.com/campuspulse/api/model"
	"github.com/campuspulse/api/util"
)

// EventCacheRefresh is the bus topic for stale-entry refreshes.
const EventCacheRefresh = "cache.refresh"

// SessionResolver turns a session credential into a verified principal.
// session.Resolver is the production implementation.
type SessionResolver interface {
	Resolve(ctx context.Context, credential string) (model.Principal, error)
}

// Handler computes the payload for an operation once the guard has allowed
// it. The principal is the resolved caller; handlers use its tenant id for
// data scoping.
type Handler func(ctx context.Context, p model.Principal) ([]byte, error)

// Scope states how widely a cached payload may be shared.
type Scope int

const (
	// ScopeShared: one payload per (operation, tenant, role, variant),
	// shared by every principal with that tenant and role.
	ScopeShared Scope = iota
	// ScopePersonal: the payload belongs to one individual, so the cache
	// key carries the principal id as well. Two principals with the same
	// tenant and role never observe each other's entry.
	ScopePersonal
)

// Request is one protected operation invocation. Variant is the canonical
// form of the request parameters the payload depends on (pagination, time
// window); requests that differ in Variant never share a cache entry.
type Request struct {
	Credential       string
	Operation        string
	Requirement      authz.Requirement
	ResourceTenantID string
	Volatility       cache.Volatility
	Scope            Scope
	Variant          string
}

// CacheStatus reports how the payload was obtained.
type CacheStatus string

const (
	CacheHit    CacheStatus = "hit"
	CacheStale  CacheStatus = "stale"
	CacheMiss   CacheStatus = "miss"
	CacheBypass CacheStatus = "bypass"
)

// Result is a successful guard outcome.
type Result struct {
	Payload     []byte
	Tier        cache.Tier
	Principal   model.Principal
	CacheStatus CacheStatus
}

type refreshTask struct {
	Key       cache.Key
	Tier      cache.Tier
	Principal model.Principal
	Handle    Handler
}

// Guard holds the shared collaborators. It is constructed once and passed by
// handle so tests can substitute an isolated cache per case.
type Guard struct {
	resolver       SessionResolver
	store          cache.Store
	bus            *util.EventBus
	handlerTimeout time.Duration
	refreshTimeout time.Duration
	now            func() time.Time
}

func New(resolver SessionResolver, store cache.Store, bus *util.EventBus, handlerTimeout, refreshTimeout time.Duration) *Guard {
	g := &Guard{
		resolver:       resolver,
		store:          store,
		bus:            bus,
		handlerTimeout: handlerTimeout,
		refreshTimeout: refreshTimeout,
		now:            time.Now,
	}
	if bus != nil {
		bus.Subscribe(EventCacheRefresh, g.handleRefresh)
	}
	return g
}

// Do runs the full pipeline for one request.
//
// Failure short-circuits: a resolution failure never reaches the decision
// engine, and a deny never reaches the cache or the handler. Cache backend
// failures are absorbed (direct compute, log only). A request canceled
// mid-computation never writes the cache.
func (g *Guard) Do(ctx context.Context, req Request, handle Handler) (Result, error) {
	principal, err := g.resolver.Resolve(ctx, req.Credential)
	if err != nil {
		g.publishDecision(model.Principal{}, req, false, resolveReason(err), "")
		return Result{}, err
	}

	decision := authz.Decide(principal, req.Requirement, req.ResourceTenantID)
	if !decision.Allowed {
		g.publishDecision(principal, req, false, string(decision.Reason), "")
		return Result{}, denyError(decision.Reason)
	}

	tier := cache.SelectTier(req.Volatility)
	key := cache.Key{Operation: req.Operation, TenantID: principal.TenantID, Role: principal.Role, Variant: req.Variant}
	if req.Scope == ScopePersonal {
		key.PrincipalID = principal.ID
	}

	status := CacheMiss
	entry, found, err := g.store.Get(ctx, key)
	if err != nil {
		// Degraded mode: the cache never fails a request.
		logger.Warn("Cache read failed, serving uncached",
			zap.Error(err), zap.String("key", key.String()))
		status = CacheBypass
		found = false
	}

	if found {
		switch cache.Freshness(entry, g.now()) {
		case cache.Fresh:
			g.publishDecision(principal, req, true, "", string(CacheHit))
			return Result{Payload: entry.Payload, Tier: tier, Principal: principal, CacheStatus: CacheHit}, nil
		case cache.StaleServable:
			if g.bus != nil {
				g.bus.Publish(context.Background(), EventCacheRefresh, refreshTask{
					Key:       key,
					Tier:      tier,
					Principal: principal,
					Handle:    handle,
				})
			}
			g.publishDecision(principal, req, true, "", string(CacheStale))
			return Result{Payload: entry.Payload, Tier: tier, Principal: principal, CacheStatus: CacheStale}, nil
		}
		// Expired entries fall through to compute.
	}

	payload, err := g.compute(ctx, principal, handle)
	if err != nil {
		return Result{}, err
	}

	if status != CacheBypass {
		if ctx.Err() != nil {
			logger.Debug("Request canceled, skipping cache store", zap.String("key", key.String()))
		} else if err := g.store.Set(ctx, key, payload, tier); err != nil {
			logger.Warn("Cache write failed", zap.Error(err), zap.String("key", key.String()))
		}
	}

	g.publishDecision(principal, req, true, "", string(status))
	return Result{Payload: payload, Tier: tier, Principal: principal, CacheStatus: status}, nil
}

func (g *Guard) compute(ctx context.Context, principal model.Principal, handle Handler) ([]byte, error) {
	if g.handlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.handlerTimeout)
		defer cancel()
	}

	payload, err := handle(ctx, principal)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, campus_errors.ErrUpstreamUnavailable
		}
		return nil, err
	}
	return payload, nil
}

// handleRefresh recomputes a stale entry in the background. Best effort: a
// refresh failure leaves the still-servable stale entry untouched.
func (g *Guard) handleRefresh(_ context.Context, event util.Event) error {
	task, ok := event.Payload.(refreshTask)
	if !ok {
		return nil
	}

	ctx := context.Background()
	if g.refreshTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.refreshTimeout)
		defer cancel()
	}

	payload, err := task.Handle(ctx, task.Principal)
	if err != nil {
		return err
	}
	return g.store.Set(ctx, task.Key, payload, task.Tier)
}

func (g *Guard) publishDecision(p model.Principal, req Request, allowed bool, reason, cacheStatus string) {
	if g.bus == nil {
		return
	}
	g.bus.Publish(context.Background(), audit.EventDecision, audit.DecisionRecord{
		Timestamp:   g.now(),
		PrincipalID: p.ID,
		Role:        string(p.Role),
		TenantID:    p.TenantID,
		Operation:   req.Operation,
		Allowed:     allowed,
		Reason:      reason,
		CacheStatus: cacheStatus,
	})
}

func denyError(reason authz.DenyReason) error {
	switch reason {
	case authz.ReasonRoleMismatch:
		return campus_errors.ErrRoleMismatch
	case authz.ReasonCrossTenant:
		return campus_errors.ErrCrossTenant
	case authz.ReasonInactive:
		return campus_errors.ErrInactivePrincipal
	}
	return campus_errors.ErrUnauthenticated
}

func resolveReason(err error) string {
	if stderrors.Is(err, campus_errors.ErrUpstreamUnavailable) {
		return "UPSTREAM_UNAVAILABLE"
	}
	return string(authz.ReasonUnauthenticated)
}
