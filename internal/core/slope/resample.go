// Package slope holds the route sampling and gradient classification logic.
package slope

import (
	"github.com/samirrijal/routeslope/internal/core/domain"
	"github.com/samirrijal/routeslope/internal/pkg/geospatial"
)

// Resample walks the route and keeps a vertex once the distance accumulated
// since the last kept vertex reaches intervalKm. Vertices are selected, never
// interpolated, so each gap slightly overshoots the interval. A trailing
// stretch shorter than the interval is dropped, destination included.
func Resample(route domain.Route, intervalKm float64) domain.SampledRoute {
	if len(route) == 0 {
		return domain.SampledRoute{}
	}
	if intervalKm <= 0 {
		intervalKm = domain.DefaultIntervalKm
	}

	sampled := domain.SampledRoute{route[0]}
	accum := 0.0
	for _, p := range route[1:] {
		last := sampled[len(sampled)-1]
		accum += geospatial.DistanceKm(last, p)
		if accum >= intervalKm {
			sampled = append(sampled, p)
			accum = 0
		}
	}
	return sampled
}
