package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/routeslope/internal/core/domain"
	"github.com/samirrijal/routeslope/internal/core/slope"
)

// errTypeInvalidInput marks requests rejected before any provider call.
const errTypeInvalidInput = "InvalidInput"

// SlopeWorkflowInput is the input for the slope analysis workflow.
// Zero IntervalKm or Thresholds fall back to the defaults.
type SlopeWorkflowInput struct {
	Request    domain.SlopeRequest
	IntervalKm float64
	Thresholds domain.Thresholds
}

// SlopeAnalysisWorkflow fetches the route and its elevation profile through
// retried activities, then resamples and classifies in workflow code.
// Publishing the result is best effort.
func SlopeAnalysisWorkflow(ctx workflow.Context, input SlopeWorkflowInput) (domain.SlopeReport, error) {
	logger := workflow.GetLogger(ctx)
	req := input.Request

	if !req.Origin.Valid() || !req.Destination.Valid() {
		return domain.SlopeReport{}, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("coordinates out of range: %s -> %s", req.Origin.LonLat(), req.Destination.LonLat()),
			errTypeInvalidInput, domain.ErrInvalidInput)
	}

	interval := input.IntervalKm
	if interval <= 0 {
		interval = domain.DefaultIntervalKm
	}
	thresholds := input.Thresholds
	if thresholds == (domain.Thresholds{}) {
		thresholds = domain.DefaultThresholds()
	}

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        time.Second,
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{errTypeAlignment},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	logger.Info("Starting slope analysis", "origin", req.Origin.LonLat(), "destination", req.Destination.LonLat())

	// Step 1: Route
	var route domain.Route
	if err := workflow.ExecuteActivity(ctx, ActivityFetchRoute, req.Origin, req.Destination).Get(ctx, &route); err != nil {
		return domain.SlopeReport{}, err
	}

	// Step 2: Sample and look up elevations
	sampled := slope.Resample(route, interval)

	var summary domain.SlopeSummary
	if len(sampled) >= 2 {
		var elevations domain.ElevationSeries
		if err := workflow.ExecuteActivity(ctx, ActivityFetchElevations, []domain.GeoPoint(sampled)).Get(ctx, &elevations); err != nil {
			return domain.SlopeReport{}, err
		}

		// Step 3: Classify
		segs, err := slope.Segments(sampled, elevations, thresholds)
		if err != nil {
			return domain.SlopeReport{}, temporal.NewNonRetryableApplicationError(err.Error(), errTypeAlignment, err)
		}
		summary = slope.Summarize(segs)
	}

	report := domain.NewSlopeReport(req, summary)

	// Step 4: Publish
	event := domain.SlopeAnalysed{
		RequestID:    workflow.GetInfo(ctx).WorkflowExecution.ID,
		Origin:       req.Origin,
		Destination:  req.Destination,
		RoutePoints:  len(route),
		SamplePoints: len(sampled),
		Summary:      summary,
		AnalysedAt:   workflow.Now(ctx).Unix(),
	}
	if err := workflow.ExecuteActivity(ctx, ActivityPublishAnalysis, event).Get(ctx, nil); err != nil {
		logger.Warn("publishing analysis failed", "error", err)
	}

	logger.Info("Slope analysis complete", "samples", len(sampled), "total_km", summary.TotalDistanceKm)
	return report, nil
}
