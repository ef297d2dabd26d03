package geospatial

import (
	"github.com/mmcloughlin/geohash"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/samirrijal/routeslope/internal/core/domain"
)

// DistanceKm returns the haversine great-circle distance in kilometers on a
// sphere of radius orb.EarthRadius.
// Sampling and classification must both go through this function so their
// distances agree.
func DistanceKm(a, b domain.GeoPoint) float64 {
	if a == b {
		return 0
	}
	return geo.DistanceHaversine(ToOrb(a), ToOrb(b)) / 1000
}

// ToOrb converts to an orb point, which is ordered (lon, lat).
func ToOrb(p domain.GeoPoint) orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// FromOrb converts an orb point back to a GeoPoint.
func FromOrb(p orb.Point) domain.GeoPoint {
	return domain.GeoPoint{Lat: p.Lat(), Lon: p.Lon()}
}

// FromLineString flips a (lon, lat) line string into a route.
func FromLineString(ls orb.LineString) domain.Route {
	route := make(domain.Route, 0, len(ls))
	for _, p := range ls {
		route = append(route, FromOrb(p))
	}
	return route
}

// Geohash encodes a point with the given number of characters.
func Geohash(p domain.GeoPoint, precision uint) string {
	return geohash.EncodeWithPrecision(p.Lat, p.Lon, precision)
}
