package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/routeslope/internal/core/domain"
	"github.com/samirrijal/routeslope/internal/core/usecases"
)

var bilbaoReq = domain.SlopeRequest{
	Origin:      domain.GeoPoint{Lat: 43.263, Lon: -2.935},
	Destination: domain.GeoPoint{Lat: 43.27, Lon: -2.92},
}

func TestSlopeService_Analyze_Success(t *testing.T) {
	routes := &mockRouteProvider{
		routeFn: func(ctx context.Context, origin, destination domain.GeoPoint) (domain.Route, error) {
			return equatorRoute(11), nil
		},
	}
	elevations := &mockElevationProvider{
		elevationsFn: func(ctx context.Context, points []domain.GeoPoint) (domain.ElevationSeries, error) {
			// 6 samples: flat, uphill, steep, descent, flat
			return domain.ElevationSeries{100, 101, 110, 130, 90, 95}, nil
		},
	}
	pub := &mockPublisher{}

	svc := usecases.NewSlopeService(routes, elevations, pub, usecases.DefaultAnalysisOptions())
	report, err := svc.Analyze(context.Background(), bilbaoReq)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(elevations.lastPoints) != 6 {
		t.Fatalf("expected 6 sample points sent for elevation, got %d", len(elevations.lastPoints))
	}
	if report.Origin != "-2.935,43.263" {
		t.Errorf("expected origin -2.935,43.263, got %s", report.Origin)
	}
	if report.Destination != "-2.92,43.27" {
		t.Errorf("expected destination -2.92,43.27, got %s", report.Destination)
	}
	if report.FlatKm == 0 || report.UphillKm == 0 || report.SteepUphillKm == 0 {
		t.Errorf("expected every bucket to be used, got %+v", report)
	}
	if report.FlatKm <= report.UphillKm {
		t.Errorf("expected three flat segments to outweigh one uphill, got %+v", report)
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(pub.events))
	}
	if pub.events[0].SamplePoints != 6 || pub.events[0].RoutePoints != 11 {
		t.Errorf("unexpected event counts: %+v", pub.events[0])
	}
}

func TestSlopeService_Analyze_InvalidInput(t *testing.T) {
	routes := &mockRouteProvider{}
	svc := usecases.NewSlopeService(routes, &mockElevationProvider{}, nil, usecases.DefaultAnalysisOptions())

	_, err := svc.Analyze(context.Background(), domain.SlopeRequest{
		Origin:      domain.GeoPoint{Lat: 95, Lon: 0},
		Destination: domain.GeoPoint{Lat: 43, Lon: -2},
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if routes.calls != 0 {
		t.Error("route provider must not be called for invalid input")
	}
}

func TestSlopeService_Analyze_RouteFailure(t *testing.T) {
	routes := &mockRouteProvider{
		routeFn: func(ctx context.Context, origin, destination domain.GeoPoint) (domain.Route, error) {
			return nil, errors.New("connection refused")
		},
	}
	elevations := &mockElevationProvider{}
	pub := &mockPublisher{}
	svc := usecases.NewSlopeService(routes, elevations, pub, usecases.DefaultAnalysisOptions())

	report, err := svc.Analyze(context.Background(), bilbaoReq)
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("expected ErrProviderFailure, got %v", err)
	}
	if report != nil {
		t.Error("expected no partial report")
	}
	if elevations.calls != 0 {
		t.Error("elevation provider must not be called after route failure")
	}
	if len(pub.events) != 0 {
		t.Error("no event expected on failure")
	}
}

func TestSlopeService_Analyze_ElevationFailure(t *testing.T) {
	routes := &mockRouteProvider{
		routeFn: func(ctx context.Context, origin, destination domain.GeoPoint) (domain.Route, error) {
			return equatorRoute(11), nil
		},
	}
	elevations := &mockElevationProvider{
		elevationsFn: func(ctx context.Context, points []domain.GeoPoint) (domain.ElevationSeries, error) {
			return nil, errors.New("HTTP 503")
		},
	}
	svc := usecases.NewSlopeService(routes, elevations, nil, usecases.DefaultAnalysisOptions())

	_, err := svc.Analyze(context.Background(), bilbaoReq)
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("expected ErrProviderFailure, got %v", err)
	}
}

func TestSlopeService_Analyze_AlignmentMismatch(t *testing.T) {
	routes := &mockRouteProvider{
		routeFn: func(ctx context.Context, origin, destination domain.GeoPoint) (domain.Route, error) {
			return equatorRoute(11), nil
		},
	}
	elevations := &mockElevationProvider{
		elevationsFn: func(ctx context.Context, points []domain.GeoPoint) (domain.ElevationSeries, error) {
			return domain.ElevationSeries{1, 2}, nil
		},
	}
	svc := usecases.NewSlopeService(routes, elevations, nil, usecases.DefaultAnalysisOptions())

	_, err := svc.Analyze(context.Background(), bilbaoReq)
	if !errors.Is(err, domain.ErrAlignmentMismatch) {
		t.Fatalf("expected ErrAlignmentMismatch, got %v", err)
	}
}

func TestSlopeService_Analyze_DegenerateRoute(t *testing.T) {
	routes := &mockRouteProvider{
		routeFn: func(ctx context.Context, origin, destination domain.GeoPoint) (domain.Route, error) {
			return domain.Route{{Lat: 43.263, Lon: -2.935}}, nil
		},
	}
	elevations := &mockElevationProvider{}
	svc := usecases.NewSlopeService(routes, elevations, nil, usecases.DefaultAnalysisOptions())

	report, err := svc.Analyze(context.Background(), bilbaoReq)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.TotalDistanceKm != 0 || report.FlatKm != 0 || report.UphillKm != 0 || report.SteepUphillKm != 0 {
		t.Errorf("expected zero report, got %+v", report)
	}
	if elevations.calls != 0 {
		t.Error("no elevation lookup expected for a single sample")
	}
}

func TestSlopeService_Analyze_PublishFailureIgnored(t *testing.T) {
	routes := &mockRouteProvider{
		routeFn: func(ctx context.Context, origin, destination domain.GeoPoint) (domain.Route, error) {
			return equatorRoute(5), nil
		},
	}
	pub := &mockPublisher{err: errors.New("nats down")}
	svc := usecases.NewSlopeService(routes, &mockElevationProvider{}, pub, usecases.DefaultAnalysisOptions())

	if _, err := svc.Analyze(context.Background(), bilbaoReq); err != nil {
		t.Fatalf("publish failure must not fail the analysis: %v", err)
	}
}

func TestSlopeService_CustomThresholds(t *testing.T) {
	routes := &mockRouteProvider{
		routeFn: func(ctx context.Context, origin, destination domain.GeoPoint) (domain.Route, error) {
			return domain.Route{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.0027}}, nil
		},
	}
	elevations := &mockElevationProvider{
		elevationsFn: func(ctx context.Context, points []domain.GeoPoint) (domain.ElevationSeries, error) {
			return domain.ElevationSeries{100, 104}, nil
		},
	}
	opts := usecases.AnalysisOptions{IntervalKm: 0.25, Thresholds: domain.Thresholds{Low: 3, High: 5}}
	svc := usecases.NewSlopeService(routes, elevations, nil, opts)

	report, err := svc.Analyze(context.Background(), bilbaoReq)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.UphillKm != 0.3 {
		t.Errorf("expected 0.3 km uphill with a 3 m threshold, got %+v", report)
	}
}
