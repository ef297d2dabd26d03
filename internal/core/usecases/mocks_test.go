package usecases_test

import (
	"context"
	"sync"

	"github.com/samirrijal/routeslope/internal/core/domain"
	"github.com/samirrijal/routeslope/internal/core/ports"
)

// --- Mock RouteProvider ---

type mockRouteProvider struct {
	routeFn func(ctx context.Context, origin, destination domain.GeoPoint) (domain.Route, error)
	calls   int
}

func (m *mockRouteProvider) Route(ctx context.Context, origin, destination domain.GeoPoint) (domain.Route, error) {
	m.calls++
	if m.routeFn != nil {
		return m.routeFn(ctx, origin, destination)
	}
	return nil, nil
}

// --- Mock ElevationProvider ---

type mockElevationProvider struct {
	elevationsFn func(ctx context.Context, points []domain.GeoPoint) (domain.ElevationSeries, error)
	calls        int
	lastPoints   []domain.GeoPoint
}

func (m *mockElevationProvider) Elevations(ctx context.Context, points []domain.GeoPoint) (domain.ElevationSeries, error) {
	m.calls++
	m.lastPoints = points
	if m.elevationsFn != nil {
		return m.elevationsFn(ctx, points)
	}
	return make(domain.ElevationSeries, len(points)), nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	events []*domain.SlopeAnalysed
	err    error
}

func (m *mockPublisher) PublishSlopeAnalysed(ctx context.Context, event *domain.SlopeAnalysed) error {
	m.events = append(m.events, event)
	return m.err
}

// --- Mock CacheService ---

type mockCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
	setErr error
	gets   int
	sets   int
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ports.ErrCacheMiss
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// equatorRoute returns n points along the equator spaced 0.001 degrees (~111 m) apart.
func equatorRoute(n int) domain.Route {
	route := make(domain.Route, n)
	for i := range route {
		route[i] = domain.GeoPoint{Lat: 0, Lon: float64(i) * 0.001}
	}
	return route
}
