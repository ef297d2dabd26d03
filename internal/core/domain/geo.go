package domain

import "strconv"

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LonLat formats the point as "lon,lat", the order routing providers use.
func (p GeoPoint) LonLat() string {
	return strconv.FormatFloat(p.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lat, 'f', -1, 64)
}

// Valid reports whether the point lies within WGS 84 bounds.
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Route is an ordered polyline as returned by a routing provider,
// first element nearest the origin.
type Route []GeoPoint

// SampledRoute is a subsequence of a Route selected at a fixed minimum spacing.
type SampledRoute []GeoPoint

// ElevationSeries holds one elevation in meters per sampled point, index aligned.
type ElevationSeries []float64
