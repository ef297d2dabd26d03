package workflows

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/routeslope/internal/core/domain"
	"github.com/samirrijal/routeslope/internal/core/ports"
)

// Activity names as registered from AnalysisActivities.
const (
	ActivityFetchRoute      = "FetchRoute"
	ActivityFetchElevations = "FetchElevations"
	ActivityPublishAnalysis = "PublishAnalysis"
)

// errTypeAlignment marks elevation responses that can never line up on retry.
const errTypeAlignment = "AlignmentMismatch"

// AnalysisActivities holds the provider calls made on behalf of the slope workflow.
type AnalysisActivities struct {
	Routes     ports.RouteProvider
	Elevations ports.ElevationProvider
	Publisher  ports.EventPublisher // optional
}

// FetchRoute asks the routing provider for the polyline between two points.
func (a *AnalysisActivities) FetchRoute(ctx context.Context, origin, destination domain.GeoPoint) (domain.Route, error) {
	return a.Routes.Route(ctx, origin, destination)
}

// FetchElevations looks up one elevation per sampled point.
func (a *AnalysisActivities) FetchElevations(ctx context.Context, points []domain.GeoPoint) (domain.ElevationSeries, error) {
	elevations, err := a.Elevations.Elevations(ctx, points)
	if err != nil {
		if errors.Is(err, domain.ErrAlignmentMismatch) {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), errTypeAlignment, err)
		}
		return nil, err
	}
	if len(elevations) != len(points) {
		return nil, temporal.NewNonRetryableApplicationError(
			"elevation count does not match sample count", errTypeAlignment, domain.ErrAlignmentMismatch)
	}
	return elevations, nil
}

// PublishAnalysis emits the analysis event, if a publisher is configured.
func (a *AnalysisActivities) PublishAnalysis(ctx context.Context, event domain.SlopeAnalysed) error {
	if a.Publisher == nil {
		activity.GetLogger(ctx).Debug("no publisher configured, skipping event", "request_id", event.RequestID)
		return nil
	}
	return a.Publisher.PublishSlopeAnalysed(ctx, &event)
}
