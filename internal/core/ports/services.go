package ports

import (
	"context"
	"errors"

	"github.com/samirrijal/routeslope/internal/core/domain"
)

// RouteProvider returns a driving route polyline between two points.
type RouteProvider interface {
	Route(ctx context.Context, origin, destination domain.GeoPoint) (domain.Route, error)
}

// ElevationProvider looks up elevations for a batch of points, in submission order.
type ElevationProvider interface {
	Elevations(ctx context.Context, points []domain.GeoPoint) (domain.ElevationSeries, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishSlopeAnalysed(ctx context.Context, event *domain.SlopeAnalysed) error
}

// ErrCacheMiss is returned by CacheService.Get for an absent key. Any other
// error means the cache itself failed.
var ErrCacheMiss = errors.New("cache miss")

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
