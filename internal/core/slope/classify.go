package slope

import (
	"fmt"
	"math"

	"github.com/samirrijal/routeslope/internal/core/domain"
	"github.com/samirrijal/routeslope/internal/pkg/geospatial"
)

// BucketFor returns the gradient bucket for an elevation change in meters.
// Descents are always flat.
func BucketFor(diff float64, t domain.Thresholds) domain.Bucket {
	switch {
	case diff < t.Low:
		return domain.BucketFlat
	case diff < t.High:
		return domain.BucketUphill
	default:
		return domain.BucketSteepUphill
	}
}

// Segment is one classified stretch between consecutive samples.
type Segment struct {
	DistanceKm float64
	GainM      float64
	Bucket     domain.Bucket
}

// Segments classifies every consecutive pair of samples.
func Segments(points domain.SampledRoute, elevations domain.ElevationSeries, t domain.Thresholds) ([]Segment, error) {
	if len(points) != len(elevations) {
		return nil, fmt.Errorf("%w: %d points, %d elevations", domain.ErrAlignmentMismatch, len(points), len(elevations))
	}
	if len(points) < 2 {
		return nil, nil
	}

	segs := make([]Segment, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		diff := elevations[i] - elevations[i-1]
		segs = append(segs, Segment{
			DistanceKm: geospatial.DistanceKm(points[i-1], points[i]),
			GainM:      diff,
			Bucket:     BucketFor(diff, t),
		})
	}
	return segs, nil
}

// Classify sums segment distances per gradient bucket. The total is the sum of
// the sampled segments, not the straight-line origin-destination distance.
func Classify(points domain.SampledRoute, elevations domain.ElevationSeries, t domain.Thresholds) (domain.SlopeSummary, error) {
	segs, err := Segments(points, elevations, t)
	if err != nil {
		return domain.SlopeSummary{}, err
	}
	return Summarize(segs), nil
}

// Summarize accumulates classified segments into a rounded summary.
func Summarize(segs []Segment) domain.SlopeSummary {
	var flat, uphill, steep float64
	for _, s := range segs {
		switch s.Bucket {
		case domain.BucketFlat:
			flat += s.DistanceKm
		case domain.BucketUphill:
			uphill += s.DistanceKm
		default:
			steep += s.DistanceKm
		}
	}

	return domain.SlopeSummary{
		FlatKm:          round2(flat),
		UphillKm:        round2(uphill),
		SteepUphillKm:   round2(steep),
		TotalDistanceKm: round2(flat + uphill + steep),
	}
}

// round2 rounds half to even, so 0.125 km reports as 0.12.
func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
