// Package domainresolver decides whether a request host is one of the
// platform's own hosts or a tenant custom domain, and resolves custom domains
// to their tenant portal. Successful resolutions are remembered in the
// caller's session cache for the rest of the session.
package domainresolver

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/dpp-hub/portal-core/internal/domain"
	"github.com/dpp-hub/portal-core/internal/sessioncache"
)

// CacheKeyPrefix prefixes the session cache key of a hostname.
const CacheKeyPrefix = "domain-resolution:"

// Outcome labels used for metrics.
const (
	OutcomePlatform  = "platform"
	OutcomeCacheHit  = "cache_hit"
	OutcomeResolved  = "resolved"
	OutcomeNotFound  = "not_found"
	OutcomeError     = "error"
	OutcomeCancelled = "cancelled"
)

// Lookup finds the tenant owning a hostname. A nil result with a nil error
// means no tenant claims it.
type Lookup interface {
	ResolveTenantByDomain(ctx context.Context, hostname string) (*domain.DomainResolution, error)
}

// Recorder receives resolution outcomes.
type Recorder interface {
	RecordDomainResolution(outcome string)
}

// Dependencies bundles resolver collaborators.
type Dependencies struct {
	Hosts   *HostSet
	Lookup  Lookup
	Logger  *zap.Logger
	Metrics Recorder
}

// Resolver classifies hostnames and resolves custom domains.
type Resolver struct {
	hosts   *HostSet
	lookup  Lookup
	logger  *zap.Logger
	metrics Recorder
	group   singleflight.Group
}

// NewResolver builds a resolver.
func NewResolver(deps Dependencies) *Resolver {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		hosts:   deps.Hosts,
		lookup:  deps.Lookup,
		logger:  logger,
		metrics: deps.Metrics,
	}
}

// CacheKey returns the session cache key for hostname.
func CacheKey(hostname string) string {
	return CacheKeyPrefix + hostname
}

// Detect returns the state of hostname right away. Platform hosts and cached
// resolutions are settled without any remote call. Otherwise the returned
// state is resolving and the channel delivers exactly one terminal state. If
// ctx ends before the lookup completes the result is dropped: nothing is
// cached and the channel is closed without a value.
func (r *Resolver) Detect(ctx context.Context, cache sessioncache.Store, hostname string) (State, <-chan State) {
	host := NormalizeHost(hostname)

	if r.hosts.IsPlatform(host) {
		r.record(OutcomePlatform)
		return settled(State{})
	}
	if host == "" {
		r.record(OutcomeNotFound)
		return settled(failed(ErrDomainNotFound))
	}

	if res, ok := r.readCache(ctx, cache, host); ok {
		r.record(OutcomeCacheHit)
		return settled(State{IsCustomDomain: true, Resolution: res})
	}

	out := make(chan State, 1)
	go r.resolveRemote(ctx, cache, host, out)
	return State{IsCustomDomain: true, IsResolving: true}, out
}

// Resolve blocks until hostname reaches a terminal state. The boolean is
// false when ctx ended first and the result was discarded.
func (r *Resolver) Resolve(ctx context.Context, cache sessioncache.Store, hostname string) (State, bool) {
	state, updates := r.Detect(ctx, cache, hostname)
	if !state.IsResolving {
		return state, true
	}
	final, ok := <-updates
	return final, ok
}

func (r *Resolver) resolveRemote(ctx context.Context, cache sessioncache.Store, host string, out chan<- State) {
	defer close(out)

	// The shared call must outlive any single waiter; each waiter drops the
	// result on its own cancellation below.
	lookupCtx := context.WithoutCancel(ctx)
	results := r.group.DoChan(host, func() (any, error) {
		return r.lookup.ResolveTenantByDomain(lookupCtx, host)
	})

	var result singleflight.Result
	select {
	case <-ctx.Done():
		r.record(OutcomeCancelled)
		return
	case result = <-results:
	}
	if ctx.Err() != nil {
		r.record(OutcomeCancelled)
		return
	}

	if result.Err != nil {
		r.logger.Warn("custom domain lookup failed", zap.String("host", host), zap.Error(result.Err))
		r.record(OutcomeError)
		out <- failed(ErrResolution)
		return
	}

	res, _ := result.Val.(*domain.DomainResolution)
	if res == nil || !res.Valid() {
		r.logger.Info("custom domain not claimed", zap.String("host", host))
		r.record(OutcomeNotFound)
		out <- failed(ErrDomainNotFound)
		return
	}

	resolved := *res
	r.writeCache(ctx, cache, host, resolved)
	r.logger.Debug("custom domain resolved",
		zap.String("host", host),
		zap.String("tenant_id", resolved.TenantID),
		zap.String("portal_type", string(resolved.PortalType)))
	r.record(OutcomeResolved)
	out <- State{IsCustomDomain: true, Resolution: &resolved}
}

// readCache returns a cached resolution. Entries that do not decode into a
// usable resolution are removed.
func (r *Resolver) readCache(ctx context.Context, cache sessioncache.Store, host string) (*domain.DomainResolution, bool) {
	if cache == nil {
		return nil, false
	}
	key := CacheKey(host)
	raw, ok, err := cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn("session cache read failed", zap.String("host", host), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var res domain.DomainResolution
	if err := json.Unmarshal([]byte(raw), &res); err != nil || !res.Valid() {
		r.logger.Debug("discarding malformed session cache entry", zap.String("host", host))
		if err := cache.Remove(ctx, key); err != nil {
			r.logger.Warn("session cache remove failed", zap.String("host", host), zap.Error(err))
		}
		return nil, false
	}
	return &res, true
}

func (r *Resolver) writeCache(ctx context.Context, cache sessioncache.Store, host string, res domain.DomainResolution) {
	if cache == nil {
		return
	}
	payload, err := json.Marshal(res)
	if err != nil {
		r.logger.Warn("encode domain resolution", zap.String("host", host), zap.Error(err))
		return
	}
	if err := cache.Set(ctx, CacheKey(host), string(payload)); err != nil {
		r.logger.Warn("session cache write failed", zap.String("host", host), zap.Error(err))
	}
}

func (r *Resolver) record(outcome string) {
	if r.metrics != nil {
		r.metrics.RecordDomainResolution(outcome)
	}
}

func settled(state State) (State, <-chan State) {
	ch := make(chan State, 1)
	ch <- state
	close(ch)
	return state, ch
}
