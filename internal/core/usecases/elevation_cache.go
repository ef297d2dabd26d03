package usecases

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/samirrijal/routeslope/internal/core/domain"
	"github.com/samirrijal/routeslope/internal/core/ports"
	"github.com/samirrijal/routeslope/internal/pkg/geospatial"
	"github.com/samirrijal/routeslope/internal/pkg/logging"
	"github.com/samirrijal/routeslope/internal/pkg/metrics"
)

// elevationKeyPrecision gives cells of roughly 5 m, finer than any elevation dataset.
const elevationKeyPrecision = 9

// CachingElevationProvider serves elevations from a cache keyed by geohash and
// only forwards the misses to the wrapped provider.
type CachingElevationProvider struct {
	next       ports.ElevationProvider
	cache      ports.CacheService
	ttlSeconds int
}

// NewCachingElevationProvider wraps next. A nil cache disables caching.
func NewCachingElevationProvider(next ports.ElevationProvider, cache ports.CacheService, ttlSeconds int) *CachingElevationProvider {
	return &CachingElevationProvider{next: next, cache: cache, ttlSeconds: ttlSeconds}
}

// Elevations returns one elevation per point in submission order.
func (p *CachingElevationProvider) Elevations(ctx context.Context, points []domain.GeoPoint) (domain.ElevationSeries, error) {
	if p.cache == nil {
		return p.next.Elevations(ctx, points)
	}

	out := make(domain.ElevationSeries, len(points))
	keys := make([]string, len(points))
	var missIdx []int
	var missPts []domain.GeoPoint

	// After the first cache failure the rest of the call bypasses the cache.
	cacheDown := false
	for i, pt := range points {
		keys[i] = "elev:" + geospatial.Geohash(pt, elevationKeyPrecision)
		if !cacheDown {
			data, err := p.cache.Get(ctx, keys[i])
			switch {
			case err == nil:
				if v, perr := strconv.ParseFloat(string(data), 64); perr == nil {
					out[i] = v
					metrics.CacheHits.WithLabelValues("elevation").Inc()
					continue
				}
				// unparseable entry; evict so the refetched value replaces it
				_ = p.cache.Delete(ctx, keys[i])
			case !errors.Is(err, ports.ErrCacheMiss):
				logging.FromContext(ctx).Warn("elevation cache unavailable, bypassing", "error", err)
				cacheDown = true
			}
		}
		metrics.CacheMisses.WithLabelValues("elevation").Inc()
		missIdx = append(missIdx, i)
		missPts = append(missPts, pt)
	}

	if len(missPts) == 0 {
		return out, nil
	}

	fetched, err := p.next.Elevations(ctx, missPts)
	if err != nil {
		return nil, err
	}
	if len(fetched) != len(missPts) {
		return nil, fmt.Errorf("%w: %d elevations for %d points", domain.ErrAlignmentMismatch, len(fetched), len(missPts))
	}

	for j, i := range missIdx {
		out[i] = fetched[j]
		if cacheDown {
			continue
		}
		val := strconv.FormatFloat(fetched[j], 'f', -1, 64)
		if err := p.cache.Set(ctx, keys[i], []byte(val), p.ttlSeconds); err != nil {
			logging.FromContext(ctx).Debug("elevation cache set failed", "key", keys[i], "error", err)
		}
	}
	return out, nil
}
