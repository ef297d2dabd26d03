package domain

// Default analysis parameters.
const (
	DefaultIntervalKm    = 0.25
	DefaultFlatMaxGainM  = 7.0
	DefaultSteepMinGainM = 15.0
)

// Thresholds bound the elevation gain (meters per segment) of each gradient bucket.
// A gain below Low is flat, Low <= gain < High is uphill, anything else is steep.
type Thresholds struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// DefaultThresholds returns the 7 m / 15 m split.
func DefaultThresholds() Thresholds {
	return Thresholds{Low: DefaultFlatMaxGainM, High: DefaultSteepMinGainM}
}

// Bucket names a gradient bucket.
type Bucket string

const (
	BucketFlat        Bucket = "flat"
	BucketUphill      Bucket = "uphill"
	BucketSteepUphill Bucket = "steep_uphill"
)

// SlopeSummary holds per-bucket distance totals in kilometers, rounded to 2 decimals.
type SlopeSummary struct {
	FlatKm          float64 `json:"flat_km"`
	UphillKm        float64 `json:"uphill_km"`
	SteepUphillKm   float64 `json:"steep_uphill_km"`
	TotalDistanceKm float64 `json:"total_distance_km"`
}

// SlopeRequest asks for an analysis between two points.
type SlopeRequest struct {
	Origin      GeoPoint `json:"origin"`
	Destination GeoPoint `json:"destination"`
}

// SlopeReport is the response payload for one analysis.
type SlopeReport struct {
	Origin          string  `json:"origin"`      // "lon,lat"
	Destination     string  `json:"destination"` // "lon,lat"
	FlatKm          float64 `json:"flat_km"`
	UphillKm        float64 `json:"uphill_km"`
	SteepUphillKm   float64 `json:"steep_uphill_km"`
	TotalDistanceKm float64 `json:"total_distance_km"`
}

// NewSlopeReport shapes a summary into the response payload.
func NewSlopeReport(req SlopeRequest, s SlopeSummary) SlopeReport {
	return SlopeReport{
		Origin:          req.Origin.LonLat(),
		Destination:     req.Destination.LonLat(),
		FlatKm:          s.FlatKm,
		UphillKm:        s.UphillKm,
		SteepUphillKm:   s.SteepUphillKm,
		TotalDistanceKm: s.TotalDistanceKm,
	}
}

// SlopeAnalysed is published after every successful analysis.
type SlopeAnalysed struct {
	RequestID    string       `json:"request_id,omitempty"`
	Origin       GeoPoint     `json:"origin"`
	Destination  GeoPoint     `json:"destination"`
	RoutePoints  int          `json:"route_points"`
	SamplePoints int          `json:"sample_points"`
	Summary      SlopeSummary `json:"summary"`
	AnalysedAt   int64        `json:"analysed_at"` // unix seconds
}
