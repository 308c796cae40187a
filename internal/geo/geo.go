/*
Package geo turns free-text queries into candidate places and coordinates into
short place names.
*/
package geo

import (
	"context"
	"log/slog"

	"github.com/shanehull/digmap/internal/metrics"
	"github.com/shanehull/digmap/internal/types"
)

const (
	DefaultCacheSize = 100
	DefaultFallback  = "этом районе"
)

// Provider is a geocoding backend. Implementations return *types.Unavailable on
// upstream failure and ("", nil) or (nil, nil) when nothing matches.
type Provider interface {
	Search(ctx context.Context, query string) ([]types.PlaceCandidate, error)
	Reverse(ctx context.Context, coord types.Coordinate) (string, error)
}

type Options struct {
	CacheSize int
	// Fallback is returned by ReverseResolve when no address is available.
	Fallback string
}

// Resolver wraps a Provider with search memoisation and failure absorption.
type Resolver struct {
	provider Provider
	cache    *searchCache
	fallback string
}

func NewResolver(p Provider, opts Options) *Resolver {
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.Fallback == "" {
		opts.Fallback = DefaultFallback
	}
	return &Resolver{
		provider: p,
		cache:    newSearchCache(opts.CacheSize),
		fallback: opts.Fallback,
	}
}

// ForwardSearch returns candidates for query, or an empty slice. Results,
// including empty ones, are cached by the exact query string.
func (r *Resolver) ForwardSearch(ctx context.Context, query string) []types.PlaceCandidate {
	if cached, ok := r.cache.get(query); ok {
		metrics.CacheHits.WithLabelValues("forward_search").Inc()
		return cached
	}
	metrics.CacheMisses.WithLabelValues("forward_search").Inc()

	candidates, err := r.provider.Search(ctx, query)
	if err != nil {
		reason := types.ReasonOf(err)
		metrics.UpstreamFailures.WithLabelValues("geocoder", string(reason)).Inc()
		slog.WarnContext(ctx, "forward search failed", "query", query, "reason", reason, "error", err)
		// Failures are not cached so the next call retries the provider.
		return []types.PlaceCandidate{}
	}

	if candidates == nil {
		candidates = []types.PlaceCandidate{}
	}
	r.cache.put(query, candidates)
	return candidates
}

// ReverseResolve returns the first segment of the address at coord, or the
// fallback name.
func (r *Resolver) ReverseResolve(ctx context.Context, coord types.Coordinate) string {
	address, err := r.provider.Reverse(ctx, coord)
	if err != nil {
		reason := types.ReasonOf(err)
		metrics.UpstreamFailures.WithLabelValues("geocoder", string(reason)).Inc()
		slog.WarnContext(ctx, "reverse resolve failed", "coord", coord.String(), "reason", reason, "error", err)
		return r.fallback
	}

	if name := types.PlaceNameFromAddress(address); name != "" {
		return name
	}
	return r.fallback
}
