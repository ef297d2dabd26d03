package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/routeslope/internal/core/domain"
	"github.com/samirrijal/routeslope/internal/core/ports"
	"github.com/samirrijal/routeslope/internal/core/slope"
	"github.com/samirrijal/routeslope/internal/pkg/logging"
	"github.com/samirrijal/routeslope/internal/pkg/metrics"
	"github.com/samirrijal/routeslope/internal/pkg/telemetry"
)

var tracer = otel.Tracer(telemetry.TracerName)

// AnalysisOptions tune sampling and bucketing.
type AnalysisOptions struct {
	IntervalKm float64
	Thresholds domain.Thresholds
}

// DefaultAnalysisOptions returns a 0.25 km interval with 7 m / 15 m thresholds.
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		IntervalKm: domain.DefaultIntervalKm,
		Thresholds: domain.DefaultThresholds(),
	}
}

// SlopeService fetches a route and its elevation profile and buckets the
// distance by gradient.
type SlopeService struct {
	routes     ports.RouteProvider
	elevations ports.ElevationProvider
	publisher  ports.EventPublisher
	opts       AnalysisOptions
}

// NewSlopeService creates a new SlopeService. publisher may be nil.
func NewSlopeService(
	routes ports.RouteProvider,
	elevations ports.ElevationProvider,
	publisher ports.EventPublisher,
	opts AnalysisOptions,
) *SlopeService {
	if opts.IntervalKm <= 0 {
		opts.IntervalKm = domain.DefaultIntervalKm
	}
	if opts.Thresholds == (domain.Thresholds{}) {
		opts.Thresholds = domain.DefaultThresholds()
	}
	return &SlopeService{routes: routes, elevations: elevations, publisher: publisher, opts: opts}
}

// Analyze runs one analysis. Errors wrap domain.ErrInvalidInput,
// domain.ErrProviderFailure or domain.ErrAlignmentMismatch; no partial
// report is ever returned alongside an error.
func (s *SlopeService) Analyze(ctx context.Context, req domain.SlopeRequest) (*domain.SlopeReport, error) {
	ctx, span := tracer.Start(ctx, telemetry.SpanAnalyze)
	defer span.End()

	report, event, err := s.analyze(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.AnalysesTotal.WithLabelValues(outcome(err)).Inc()
		return nil, err
	}
	metrics.AnalysesTotal.WithLabelValues("ok").Inc()

	if s.publisher != nil {
		if err := s.publisher.PublishSlopeAnalysed(ctx, event); err != nil {
			logging.FromContext(ctx).Warn("publish slope analysis failed", "error", err)
		}
	}
	return report, nil
}

func (s *SlopeService) analyze(ctx context.Context, req domain.SlopeRequest) (*domain.SlopeReport, *domain.SlopeAnalysed, error) {
	log := logging.FromContext(ctx)

	if !req.Origin.Valid() {
		return nil, nil, fmt.Errorf("%w: origin out of range", domain.ErrInvalidInput)
	}
	if !req.Destination.Valid() {
		return nil, nil, fmt.Errorf("%w: destination out of range", domain.ErrInvalidInput)
	}

	route, err := s.fetchRoute(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	sampled := slope.Resample(route, s.opts.IntervalKm)
	metrics.AnalysisSamples.Observe(float64(len(sampled)))

	var summary domain.SlopeSummary
	if len(sampled) >= 2 {
		elevations, err := s.fetchElevations(ctx, sampled)
		if err != nil {
			return nil, nil, err
		}

		_, span := tracer.Start(ctx, telemetry.SpanClassify)
		segs, err := slope.Segments(sampled, elevations, s.opts.Thresholds)
		if err != nil {
			span.End()
			return nil, nil, err
		}
		for _, seg := range segs {
			metrics.SegmentsClassified.WithLabelValues(string(seg.Bucket)).Inc()
		}
		summary = slope.Summarize(segs)
		span.End()
	}

	log.Info("slope analysed",
		"origin", req.Origin.LonLat(),
		"destination", req.Destination.LonLat(),
		"route_points", len(route),
		"sample_points", len(sampled),
		"total_km", summary.TotalDistanceKm,
	)

	report := domain.NewSlopeReport(req, summary)
	event := &domain.SlopeAnalysed{
		RequestID:    logging.RequestID(ctx),
		Origin:       req.Origin,
		Destination:  req.Destination,
		RoutePoints:  len(route),
		SamplePoints: len(sampled),
		Summary:      summary,
		AnalysedAt:   time.Now().Unix(),
	}
	return &report, event, nil
}

func (s *SlopeService) fetchRoute(ctx context.Context, req domain.SlopeRequest) (domain.Route, error) {
	ctx, span := tracer.Start(ctx, telemetry.SpanRoute)
	defer span.End()

	route, err := s.routes.Route(ctx, req.Origin, req.Destination)
	if err != nil {
		span.RecordError(err)
		return nil, providerError("route lookup", err)
	}
	span.SetAttributes(attribute.Int("route.points", len(route)))
	return route, nil
}

func (s *SlopeService) fetchElevations(ctx context.Context, points domain.SampledRoute) (domain.ElevationSeries, error) {
	ctx, span := tracer.Start(ctx, telemetry.SpanElevation)
	defer span.End()
	span.SetAttributes(attribute.Int("elevation.points", len(points)))

	elevations, err := s.elevations.Elevations(ctx, points)
	if err != nil {
		span.RecordError(err)
		return nil, providerError("elevation lookup", err)
	}
	return elevations, nil
}

// providerError tags err as a provider failure unless it already is one.
func providerError(op string, err error) error {
	if errors.Is(err, domain.ErrProviderFailure) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrProviderFailure, err)
}

func outcome(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrAlignmentMismatch):
		return "alignment_mismatch"
	case errors.Is(err, domain.ErrProviderFailure):
		return "provider_failure"
	default:
		return "error"
	}
}
