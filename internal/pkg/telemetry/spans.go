package telemetry

// Instrumentation scope and span names used by the analysis pipeline.
const (
	TracerName = "github.com/samirrijal/routeslope"

	SpanAnalyze   = "slope.analyze"
	SpanRoute     = "slope.route"
	SpanElevation = "slope.elevation"
	SpanClassify  = "slope.classify"
)
