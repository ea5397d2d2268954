package domainresolver_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dpp-hub/portal-core/internal/domain"
	"github.com/dpp-hub/portal-core/internal/domainresolver"
	"github.com/dpp-hub/portal-core/internal/sessioncache"
)

func TestDetectPlatformHostsSkipLookup(t *testing.T) {
	lookup := &fakeLookup{}
	resolver := newResolver(lookup)
	cache := sessioncache.NewMemoryStore()

	for _, host := range []string{"localhost", "LOCALHOST:5173", "127.0.0.1", "acme.dpp-hub.app", "preview-42.dpp-hub.app."} {
		state, _ := resolver.Detect(context.Background(), cache, host)
		require.False(t, state.IsCustomDomain, host)
		require.False(t, state.IsResolving, host)
		require.Nil(t, state.Resolution, host)
		require.Nil(t, state.Error, host)
	}
	require.Zero(t, lookup.callCount())
	require.Zero(t, cache.Len())
}

func TestDetectCacheHitSkipsLookup(t *testing.T) {
	lookup := &fakeLookup{}
	resolver := newResolver(lookup)
	cache := sessioncache.NewMemoryStore()

	cached := domain.DomainResolution{TenantID: "t-1", TenantSlug: "acme", PortalType: domain.PortalTypeSupplier}
	payload, err := json.Marshal(cached)
	require.NoError(t, err)
	require.NoError(t, cache.Set(context.Background(), "domain-resolution:portal.acme.com", string(payload)))

	state, _ := resolver.Detect(context.Background(), cache, "portal.acme.com")
	require.True(t, state.IsCustomDomain)
	require.False(t, state.IsResolving)
	require.Nil(t, state.Error)
	require.Equal(t, cached, *state.Resolution)
	require.Zero(t, lookup.callCount())
}

func TestResolveMalformedCacheEntryFallsThrough(t *testing.T) {
	for name, raw := range map[string]string{
		"not json":     "{not-json",
		"empty object": "{}",
	} {
		t.Run(name, func(t *testing.T) {
			lookup := &fakeLookup{result: acmeResolution()}
			resolver := newResolver(lookup)
			cache := sessioncache.NewMemoryStore()
			key := domainresolver.CacheKey("portal.acme.com")
			require.NoError(t, cache.Set(context.Background(), key, raw))

			state, ok := resolver.Resolve(context.Background(), cache, "portal.acme.com")
			require.True(t, ok)
			require.Equal(t, 1, lookup.callCount())
			require.Equal(t, acmeResolution(), state.Resolution)

			stored, found, err := cache.Get(context.Background(), key)
			require.NoError(t, err)
			require.True(t, found)
			require.JSONEq(t, `{"tenantId":"t-1","tenantSlug":"acme","portalType":"customer_portal"}`, stored)
		})
	}
}

func TestResolveCachesSuccessfulLookup(t *testing.T) {
	lookup := &fakeLookup{result: acmeResolution()}
	resolver := newResolver(lookup)
	cache := sessioncache.NewMemoryStore()

	initial, updates := resolver.Detect(context.Background(), cache, "Portal.Acme.com")
	require.True(t, initial.IsCustomDomain)
	require.True(t, initial.IsResolving)

	first, ok := <-updates
	require.True(t, ok)
	require.True(t, first.IsCustomDomain)
	require.False(t, first.IsResolving)
	require.Nil(t, first.Error)
	require.Equal(t, acmeResolution(), first.Resolution)

	_, found, err := cache.Get(context.Background(), "domain-resolution:portal.acme.com")
	require.NoError(t, err)
	require.True(t, found)

	second, ok := resolver.Resolve(context.Background(), cache, "portal.acme.com")
	require.True(t, ok)
	require.Equal(t, first, second)
	require.Equal(t, 1, lookup.callCount())
}

func TestResolveNotFoundIsNotCached(t *testing.T) {
	lookup := &fakeLookup{}
	resolver := newResolver(lookup)
	cache := sessioncache.NewMemoryStore()

	state, ok := resolver.Resolve(context.Background(), cache, "unknown.example.org")
	require.True(t, ok)
	require.True(t, state.IsCustomDomain)
	require.False(t, state.IsResolving)
	require.Nil(t, state.Resolution)
	require.NotNil(t, state.Error)
	require.Equal(t, domainresolver.ErrDomainNotFound, *state.Error)
	require.Zero(t, cache.Len())

	_, _ = resolver.Resolve(context.Background(), cache, "unknown.example.org")
	require.Equal(t, 2, lookup.callCount())
}

func TestResolveLookupErrorIsNotCached(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("connection refused")}
	resolver := newResolver(lookup)
	cache := sessioncache.NewMemoryStore()

	state, ok := resolver.Resolve(context.Background(), cache, "portal.acme.com")
	require.True(t, ok)
	require.True(t, state.IsCustomDomain)
	require.Nil(t, state.Resolution)
	require.NotNil(t, state.Error)
	require.Equal(t, domainresolver.ErrResolution, *state.Error)
	require.Zero(t, cache.Len())
}

func TestResolveUnrecognizedPortalTypeIsNotFound(t *testing.T) {
	lookup := &fakeLookup{result: &domain.DomainResolution{TenantID: "t-1", TenantSlug: "acme", PortalType: "kiosk"}}
	resolver := newResolver(lookup)
	cache := sessioncache.NewMemoryStore()

	state, ok := resolver.Resolve(context.Background(), cache, "portal.acme.com")
	require.True(t, ok)
	require.Equal(t, domainresolver.ErrDomainNotFound, *state.Error)
	require.Zero(t, cache.Len())
}

func TestResolveEmptyHostWithoutLookup(t *testing.T) {
	lookup := &fakeLookup{result: acmeResolution()}
	resolver := newResolver(lookup)

	state, ok := resolver.Resolve(context.Background(), sessioncache.NewMemoryStore(), "  ")
	require.True(t, ok)
	require.Equal(t, domainresolver.ErrDomainNotFound, *state.Error)
	require.Zero(t, lookup.callCount())
}

func TestDetectDropsResultAfterCancellation(t *testing.T) {
	release := make(chan struct{})
	lookup := &fakeLookup{result: acmeResolution(), block: release}
	recorder := &recorder{}
	resolver := domainresolver.NewResolver(domainresolver.Dependencies{
		Hosts:   testHosts(),
		Lookup:  lookup,
		Metrics: recorder,
	})
	cache := sessioncache.NewMemoryStore()

	ctx, cancel := context.WithCancel(context.Background())
	state, updates := resolver.Detect(ctx, cache, "portal.acme.com")
	require.True(t, state.IsResolving)

	cancel()
	select {
	case final, ok := <-updates:
		require.False(t, ok, "unexpected state after cancellation: %+v", final)
	case <-time.After(time.Second):
		t.Fatal("updates channel not closed after cancellation")
	}

	close(release)
	require.Eventually(t, func() bool { return lookup.callCount() == 1 }, time.Second, 5*time.Millisecond)
	require.Zero(t, cache.Len())
	require.Equal(t, 1, recorder.count(domainresolver.OutcomeCancelled))
}

func TestResolveCoalescesConcurrentLookups(t *testing.T) {
	release := make(chan struct{})
	lookup := &fakeLookup{result: acmeResolution(), block: release}
	resolver := newResolver(lookup)
	cache := sessioncache.NewMemoryStore()

	const callers = 8
	var wg sync.WaitGroup
	results := make(chan domainresolver.State, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state, _ := resolver.Resolve(context.Background(), cache, "portal.acme.com")
			results <- state
		}()
	}

	require.Eventually(t, func() bool { return lookup.callCount() == 1 }, time.Second, 5*time.Millisecond)
	// let the remaining callers join the in-flight lookup
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	for state := range results {
		require.Equal(t, acmeResolution(), state.Resolution)
	}
	require.Equal(t, 1, lookup.callCount())
}

func TestNewHostSetSuffixForms(t *testing.T) {
	set := domainresolver.NewHostSet([]string{"LocalHost"}, []string{"*.example.com", "platform.io", " "})

	require.True(t, set.IsPlatform("localhost"))
	require.True(t, set.IsPlatform("a.example.com"))
	require.True(t, set.IsPlatform("deep.a.platform.io"))
	require.False(t, set.IsPlatform("example.com"))
	require.False(t, set.IsPlatform("notexample.com"))
	require.False(t, set.IsPlatform("shop.acme.com"))
}

func TestNormalizeHost(t *testing.T) {
	require.Equal(t, "shop.acme.com", domainresolver.NormalizeHost(" Shop.ACME.com:443 "))
	require.Equal(t, "shop.acme.com", domainresolver.NormalizeHost("shop.acme.com."))
	require.Equal(t, "::1", domainresolver.NormalizeHost("[::1]:8080"))
	require.Equal(t, "", domainresolver.NormalizeHost(""))
}

func newResolver(lookup domainresolver.Lookup) *domainresolver.Resolver {
	return domainresolver.NewResolver(domainresolver.Dependencies{
		Hosts:  testHosts(),
		Lookup: lookup,
	})
}

func testHosts() *domainresolver.HostSet {
	return domainresolver.NewHostSet([]string{"localhost", "127.0.0.1"}, []string{".dpp-hub.app"})
}

func acmeResolution() *domain.DomainResolution {
	return &domain.DomainResolution{TenantID: "t-1", TenantSlug: "acme", PortalType: domain.PortalTypeCustomer}
}

type fakeLookup struct {
	result *domain.DomainResolution
	err    error
	block  chan struct{}
	calls  atomic.Int32
}

func (f *fakeLookup) ResolveTenantByDomain(_ context.Context, _ string) (*domain.DomainResolution, error) {
	f.calls.Add(1)
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.result == nil {
		return nil, nil
	}
	res := *f.result
	return &res, nil
}

func (f *fakeLookup) callCount() int {
	return int(f.calls.Load())
}

type recorder struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (r *recorder) RecordDomainResolution(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outcomes == nil {
		r.outcomes = map[string]int{}
	}
	r.outcomes[outcome]++
}

func (r *recorder) count(outcome string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcomes[outcome]
}
