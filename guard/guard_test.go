package guard

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/campuspulse/api/audit"
	"github.com/campuspulse/api/authz"
	"github.com/campuspulse/api/cache"
	campus_errors "github.com/campuspulse/api/errors"
	"github.com/campuspulse/api/logging"
	"github.com/campuspulse/api/model"
	campus_mock "github.com/campuspulse/api/test/mock"
	"github.com/campuspulse/api/util"
)

func init() {
	logging.InitTestLogger()
}

func teacherS1() model.Principal {
	return model.Principal{ID: "p-1", Role: model.RoleTeacher, TenantID: "S1", Active: true}
}

func resolverFor(credential string, p model.Principal) *campus_mock.MockSessionResolver {
	r := new(campus_mock.MockSessionResolver)
	r.On("Resolve", mock.Anything, credential).Return(p, nil)
	return r
}

func neverCalled(t *testing.T) Handler {
	return func(ctx context.Context, p model.Principal) ([]byte, error) {
		t.Fatal("handler must not be invoked")
		return nil, nil
	}
}

func TestDo_UnauthenticatedShortCircuits(t *testing.T) {
	resolver := new(campus_mock.MockSessionResolver)
	resolver.On("Resolve", mock.Anything, "").Return(model.Principal{}, campus_errors.ErrUnauthenticated)
	store := new(campus_mock.MockCacheStore)

	g := New(resolver, store, nil, 0, 0)
	_, err := g.Do(context.Background(), Request{Operation: "op"}, neverCalled(t))

	assert.ErrorIs(t, err, campus_errors.ErrUnauthenticated)
	store.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDo_ResolverUnreachableNoHandlerNoCacheWrite(t *testing.T) {
	resolver := new(campus_mock.MockSessionResolver)
	resolver.On("Resolve", mock.Anything, "Bearer t").Return(model.Principal{}, campus_errors.ErrUpstreamUnavailable)
	store := new(campus_mock.MockCacheStore)

	g := New(resolver, store, nil, 0, 0)
	_, err := g.Do(context.Background(), Request{Credential: "Bearer t", Operation: "op"}, neverCalled(t))

	assert.ErrorIs(t, err, campus_errors.ErrUpstreamUnavailable)
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDo_DenyNeverTouchesCacheOrHandler(t *testing.T) {
	cases := []struct {
		name      string
		principal model.Principal
		req       Request
		wantErr   error
	}{
		{
			name:      "role mismatch",
			principal: teacherS1(),
			req: Request{Credential: "Bearer t", Operation: "op",
				Requirement: authz.Requirement{RequiredRoles: []model.Role{model.RolePrincipal}}},
			wantErr: campus_errors.ErrRoleMismatch,
		},
		{
			name:      "cross tenant",
			principal: model.Principal{ID: "p", Role: model.RolePrincipal, TenantID: "S1", Active: true},
			req: Request{Credential: "Bearer t", Operation: "op", ResourceTenantID: "S2",
				Requirement: authz.Requirement{RequiredRoles: []model.Role{model.RolePrincipal}, TenantScoped: true}},
			wantErr: campus_errors.ErrCrossTenant,
		},
		{
			name:      "inactive",
			principal: model.Principal{ID: "p", Role: model.RoleParent, TenantID: "S1", Active: false},
			req:       Request{Credential: "Bearer t", Operation: "op"},
			wantErr:   campus_errors.ErrInactivePrincipal,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := new(campus_mock.MockCacheStore)
			g := New(resolverFor("Bearer t", tc.principal), store, nil, 0, 0)

			_, err := g.Do(context.Background(), tc.req, neverCalled(t))

			assert.ErrorIs(t, err, tc.wantErr)
			store.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
			store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestDo_MissComputesStoresThenHits(t *testing.T) {
	p := model.Principal{ID: "p", Role: model.RoleParent, TenantID: "S1", Active: true}
	store := cache.NewMemoryStore()
	g := New(resolverFor("Bearer t", p), store, nil, 0, 0)

	req := Request{Credential: "Bearer t", Operation: "dashboard.announcements",
		Requirement: authz.Requirement{TenantScoped: true}, ResourceTenantID: "S1",
		Volatility: cache.Static}

	computed := 0
	handle := func(ctx context.Context, p model.Principal) ([]byte, error) {
		computed++
		return []byte(`["announcement"]`), nil
	}

	first, err := g.Do(context.Background(), req, handle)
	require.NoError(t, err)
	assert.Equal(t, CacheMiss, first.CacheStatus)
	assert.Equal(t, "STATIC", first.Tier.Name)

	second, err := g.Do(context.Background(), req, handle)
	require.NoError(t, err)
	assert.Equal(t, CacheHit, second.CacheStatus)
	assert.Equal(t, first.Payload, second.Payload)
	assert.Equal(t, 1, computed, "second call must come from cache")
	assert.Equal(t, "private, max-age=600, stale-while-revalidate=1200", second.Tier.CacheControl())
}

func TestDo_StaleServedAndRefreshedInBackground(t *testing.T) {
	p := teacherS1()
	tier := cache.SelectTier(cache.Realtime)
	staleEntry := cache.Entry{
		Payload:  []byte("old"),
		StoredAt: time.Now().Add(-45 * time.Second), // past ttl, inside stale window
		Tier:     tier,
	}

	store := new(campus_mock.MockCacheStore)
	store.On("Get", mock.Anything, mock.Anything).Return(staleEntry, true, nil)

	refreshed := make(chan []byte, 1)
	store.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			refreshed <- args.Get(2).([]byte)
		}).Return(nil)

	bus := util.NewEventBus()
	g := New(resolverFor("Bearer t", p), store, bus, 0, time.Second)

	result, err := g.Do(context.Background(), Request{
		Credential: "Bearer t", Operation: "dashboard.attendance.today",
		Requirement: authz.Requirement{RequiredRoles: []model.Role{model.RoleTeacher}, TenantScoped: true},
		ResourceTenantID: "S1", Volatility: cache.Realtime,
	}, func(ctx context.Context, p model.Principal) ([]byte, error) {
		return []byte("new"), nil
	})

	require.NoError(t, err)
	assert.Equal(t, CacheStale, result.CacheStatus)
	assert.Equal(t, []byte("old"), result.Payload, "stale entry is served as-is")

	select {
	case payload := <-refreshed:
		assert.Equal(t, []byte("new"), payload)
	case <-time.After(2 * time.Second):
		t.Fatal("expected background refresh to store the recomputed payload")
	}
}

func TestDo_RefreshFailureLeavesStaleEntryServable(t *testing.T) {
	p := teacherS1()
	staleEntry := cache.Entry{
		Payload:  []byte("old"),
		StoredAt: time.Now().Add(-45 * time.Second),
		Tier:     cache.SelectTier(cache.Realtime),
	}
	store := new(campus_mock.MockCacheStore)
	store.On("Get", mock.Anything, mock.Anything).Return(staleEntry, true, nil)

	bus := util.NewEventBus()
	g := New(resolverFor("Bearer t", p), store, bus, 0, time.Second)

	req := Request{Credential: "Bearer t", Operation: "op", Volatility: cache.Realtime}
	failing := func(ctx context.Context, p model.Principal) ([]byte, error) {
		return nil, fmt.Errorf("recompute failed")
	}

	result, err := g.Do(context.Background(), req, failing)
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), result.Payload)

	// The failed refresh must not have invalidated anything.
	result, err = g.Do(context.Background(), req, failing)
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), result.Payload)
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDo_CacheReadFailureDegradesToDirectCompute(t *testing.T) {
	p := teacherS1()
	store := new(campus_mock.MockCacheStore)
	store.On("Get", mock.Anything, mock.Anything).Return(cache.Entry{}, false, campus_errors.ErrCacheBackend)

	g := New(resolverFor("Bearer t", p), store, nil, 0, 0)

	result, err := g.Do(context.Background(), Request{Credential: "Bearer t", Operation: "op"},
		func(ctx context.Context, p model.Principal) ([]byte, error) {
			return []byte("direct"), nil
		})

	require.NoError(t, err, "a cache failure never changes the request outcome")
	assert.Equal(t, []byte("direct"), result.Payload)
	assert.Equal(t, CacheBypass, result.CacheStatus)
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDo_CacheWriteFailureIsAbsorbed(t *testing.T) {
	p := teacherS1()
	store := new(campus_mock.MockCacheStore)
	store.On("Get", mock.Anything, mock.Anything).Return(cache.Entry{}, false, nil)
	store.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(campus_errors.ErrCacheBackend)

	g := New(resolverFor("Bearer t", p), store, nil, 0, 0)

	result, err := g.Do(context.Background(), Request{Credential: "Bearer t", Operation: "op"},
		func(ctx context.Context, p model.Principal) ([]byte, error) {
			return []byte("direct"), nil
		})

	require.NoError(t, err)
	assert.Equal(t, []byte("direct"), result.Payload)
}

func TestDo_CancellationSkipsCacheWrite(t *testing.T) {
	p := teacherS1()
	store := cache.NewMemoryStore()
	g := New(resolverFor("Bearer t", p), store, nil, 0, 0)

	ctx, cancel := context.WithCancel(context.Background())
	req := Request{Credential: "Bearer t", Operation: "op", Volatility: cache.Slow}

	result, err := g.Do(ctx, req, func(ctx context.Context, p model.Principal) ([]byte, error) {
		cancel() // request dies while the handler is computing
		return []byte("late"), nil
	})

	require.NoError(t, err)
	assert.Equal(t, []byte("late"), result.Payload)

	_, found, _ := store.Get(context.Background(), cache.Key{
		Operation: "op", TenantID: "S1", Role: model.RoleTeacher,
	})
	assert.False(t, found, "a canceled request must not write to the cache")
}

func TestDo_HandlerTimeoutIsUpstreamUnavailable(t *testing.T) {
	p := teacherS1()
	g := New(resolverFor("Bearer t", p), cache.NewMemoryStore(), nil, 20*time.Millisecond, 0)

	_, err := g.Do(context.Background(), Request{Credential: "Bearer t", Operation: "op"},
		func(ctx context.Context, p model.Principal) ([]byte, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

	assert.ErrorIs(t, err, campus_errors.ErrUpstreamUnavailable)
}

// Two tenants issuing the same operation concurrently never observe each
// other's payload, under arbitrary interleaving.
func TestDo_ConcurrentTenantsStayIsolated(t *testing.T) {
	resolver := new(campus_mock.MockSessionResolver)
	resolver.On("Resolve", mock.Anything, "Bearer s1").
		Return(model.Principal{ID: "a", Role: model.RolePrincipal, TenantID: "S1", Active: true}, nil)
	resolver.On("Resolve", mock.Anything, "Bearer s2").
		Return(model.Principal{ID: "b", Role: model.RolePrincipal, TenantID: "S2", Active: true}, nil)

	store := cache.NewMemoryStore()
	g := New(resolver, store, nil, 0, 0)

	requirement := authz.Requirement{RequiredRoles: []model.Role{model.RolePrincipal}, TenantScoped: true}
	handlerFor := func(tenant string) Handler {
		return func(ctx context.Context, p model.Principal) ([]byte, error) {
			return []byte("payload-for-" + tenant), nil
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		for _, tenant := range []string{"S1", "S2"} {
			wg.Add(1)
			go func(tenant string) {
				defer wg.Done()
				credential := "Bearer s1"
				if tenant == "S2" {
					credential = "Bearer s2"
				}
				result, err := g.Do(context.Background(), Request{
					Credential: credential, Operation: "dashboard.overview",
					Requirement: requirement, ResourceTenantID: tenant,
					Volatility: cache.Moderate,
				}, handlerFor(tenant))
				assert.NoError(t, err)
				assert.Equal(t, []byte("payload-for-"+tenant), result.Payload)
			}(tenant)
		}
	}
	wg.Wait()
}

// Two principals sharing a tenant and role must never observe each other's
// personal payload: a personal-scope operation keys its entries by the
// individual, so the second caller computes their own record instead of
// hitting the first caller's.
func TestDo_PersonalScopeKeysEntriesPerPrincipal(t *testing.T) {
	resolver := new(campus_mock.MockSessionResolver)
	resolver.On("Resolve", mock.Anything, "Bearer alice").
		Return(model.Principal{ID: "alice", Role: model.RoleTeacher, TenantID: "S1", Active: true}, nil)
	resolver.On("Resolve", mock.Anything, "Bearer bob").
		Return(model.Principal{ID: "bob", Role: model.RoleTeacher, TenantID: "S1", Active: true}, nil)

	g := New(resolver, cache.NewMemoryStore(), nil, 0, 0)

	identity := func(ctx context.Context, p model.Principal) ([]byte, error) {
		return json.Marshal(p)
	}
	req := func(credential string) Request {
		return Request{Credential: credential, Operation: "session.me",
			Volatility: cache.Realtime, Scope: ScopePersonal}
	}

	first, err := g.Do(context.Background(), req("Bearer alice"), identity)
	require.NoError(t, err)
	assert.Contains(t, string(first.Payload), "alice")

	second, err := g.Do(context.Background(), req("Bearer bob"), identity)
	require.NoError(t, err)
	assert.Equal(t, CacheMiss, second.CacheStatus, "bob must not hit alice's entry")
	assert.Contains(t, string(second.Payload), "bob")
	assert.NotContains(t, string(second.Payload), "alice")

	// Each principal still hits their own entry on repeat.
	again, err := g.Do(context.Background(), req("Bearer alice"), identity)
	require.NoError(t, err)
	assert.Equal(t, CacheHit, again.CacheStatus)
	assert.Contains(t, string(again.Payload), "alice")
}

// Requests that differ only in their parameter variant get distinct cache
// entries; each variant hits its own entry on repeat.
func TestDo_VariantsGetDistinctCacheEntries(t *testing.T) {
	p := model.Principal{ID: "h", Role: model.RolePrincipal, TenantID: "S1", Active: true}
	g := New(resolverFor("Bearer t", p), cache.NewMemoryStore(), nil, 0, 0)

	req := func(variant string) Request {
		return Request{Credential: "Bearer t", Operation: "dashboard.teachers",
			Requirement: authz.Requirement{RequiredRoles: []model.Role{model.RolePrincipal}, TenantScoped: true},
			ResourceTenantID: "S1", Volatility: cache.Slow, Variant: variant}
	}
	pageFor := func(page string) Handler {
		return func(ctx context.Context, p model.Principal) ([]byte, error) {
			return []byte(page), nil
		}
	}

	one, err := g.Do(context.Background(), req("limit=10,offset=0"), pageFor("page-one"))
	require.NoError(t, err)
	assert.Equal(t, CacheMiss, one.CacheStatus)

	two, err := g.Do(context.Background(), req("limit=10,offset=10"), pageFor("page-two"))
	require.NoError(t, err)
	assert.Equal(t, CacheMiss, two.CacheStatus, "a different pagination must not reuse the first page's entry")
	assert.Equal(t, []byte("page-two"), two.Payload)

	oneAgain, err := g.Do(context.Background(), req("limit=10,offset=0"), neverCalled(t))
	require.NoError(t, err)
	assert.Equal(t, CacheHit, oneAgain.CacheStatus)
	assert.Equal(t, []byte("page-one"), oneAgain.Payload)
}

func TestDo_PublishesDecisionRecords(t *testing.T) {
	bus := util.NewEventBus()
	records := make(chan audit.DecisionRecord, 1)
	bus.Subscribe(audit.EventDecision, func(ctx context.Context, event util.Event) error {
		records <- event.Payload.(audit.DecisionRecord)
		return nil
	})

	p := teacherS1()
	g := New(resolverFor("Bearer t", p), cache.NewMemoryStore(), bus, 0, 0)

	_, err := g.Do(context.Background(), Request{
		Credential:  "Bearer t",
		Operation:   "dashboard.students",
		Requirement: authz.Requirement{RequiredRoles: []model.Role{model.RolePrincipal}},
	}, neverCalled(t))
	require.ErrorIs(t, err, campus_errors.ErrRoleMismatch)

	select {
	case record := <-records:
		assert.False(t, record.Allowed)
		assert.Equal(t, string(authz.ReasonRoleMismatch), record.Reason)
		assert.Equal(t, "S1", record.TenantID)
		assert.Equal(t, "dashboard.students", record.Operation)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a decision record on the bus")
	}
}

// The stored payload round-trips as opaque bytes; marshaling happens in the
// handler, so a cached JSON document is byte-identical on a hit.
func TestDo_CachedPayloadRoundTrip(t *testing.T) {
	p := model.Principal{ID: "p", Role: model.RoleParent, TenantID: "S1", Active: true}
	g := New(resolverFor("Bearer t", p), cache.NewMemoryStore(), nil, 0, 0)

	payload, _ := json.Marshal(map[string]string{"hello": "world"})
	req := Request{Credential: "Bearer t", Operation: "op", Volatility: cache.Static}
	handle := func(ctx context.Context, p model.Principal) ([]byte, error) { return payload, nil }

	first, err := g.Do(context.Background(), req, handle)
	require.NoError(t, err)
	second, err := g.Do(context.Background(), req, handle)
	require.NoError(t, err)
	assert.JSONEq(t, string(first.Payload), string(second.Payload))
}
