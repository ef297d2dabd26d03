package googlemaps

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"googlemaps.github.io/maps"

	"github.com/samirrijal/routeslope/internal/core/domain"
	"github.com/samirrijal/routeslope/internal/pkg/metrics"
)

// maxElevationLocations is the per-request location cap of the Elevation API.
const maxElevationLocations = 512

// Client implements ports.RouteProvider and ports.ElevationProvider on the
// Google Directions and Elevation APIs.
type Client struct {
	maps      *maps.Client
	batchSize int
}

// New creates a Google Maps client. baseURL overrides the API host when non-empty.
func New(apiKey, baseURL string, timeout time.Duration, batchSize int) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("google maps api key is required")
	}
	if batchSize <= 0 || batchSize > maxElevationLocations {
		batchSize = maxElevationLocations
	}

	opts := []maps.ClientOption{
		maps.WithAPIKey(apiKey),
		maps.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if baseURL != "" {
		opts = append(opts, maps.WithBaseURL(baseURL))
	}

	c, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("maps.NewClient: %w", err)
	}
	return &Client{maps: c, batchSize: batchSize}, nil
}

// Route returns the decoded overview polyline of the first driving route.
func (c *Client) Route(ctx context.Context, origin, destination domain.GeoPoint) (route domain.Route, err error) {
	start := time.Now()
	defer func() { metrics.ObserveProvider("google", "directions", start, err) }()

	routes, _, err := c.maps.Directions(ctx, &maps.DirectionsRequest{
		Origin:      latLng(origin),
		Destination: latLng(destination),
		Mode:        maps.TravelModeDriving,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: google directions: %w", domain.ErrProviderFailure, err)
	}
	if len(routes) == 0 {
		return nil, fmt.Errorf("%w: google directions: no routes", domain.ErrProviderFailure)
	}

	path, err := routes[0].OverviewPolyline.Decode()
	if err != nil {
		return nil, fmt.Errorf("%w: google directions: decode polyline: %w", domain.ErrProviderFailure, err)
	}

	route = make(domain.Route, len(path))
	for i, p := range path {
		route[i] = domain.GeoPoint{Lat: p.Lat, Lon: p.Lng}
	}
	return route, nil
}

// Elevations looks points up in batches and returns elevations in submission order.
func (c *Client) Elevations(ctx context.Context, points []domain.GeoPoint) (domain.ElevationSeries, error) {
	out := make(domain.ElevationSeries, 0, len(points))
	for start := 0; start < len(points); start += c.batchSize {
		end := start + c.batchSize
		if end > len(points) {
			end = len(points)
		}
		batch, err := c.elevation(ctx, points[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, nil
}

func (c *Client) elevation(ctx context.Context, points []domain.GeoPoint) (elev domain.ElevationSeries, err error) {
	start := time.Now()
	defer func() { metrics.ObserveProvider("google", "elevation", start, err) }()

	locs := make([]maps.LatLng, len(points))
	for i, p := range points {
		locs[i] = maps.LatLng{Lat: p.Lat, Lng: p.Lon}
	}

	results, err := c.maps.Elevation(ctx, &maps.ElevationRequest{Locations: locs})
	if err != nil {
		return nil, fmt.Errorf("%w: google elevation: %w", domain.ErrProviderFailure, err)
	}
	if len(results) != len(points) {
		return nil, fmt.Errorf("%w: google elevation: %d results for %d locations",
			domain.ErrProviderFailure, len(results), len(points))
	}

	elev = make(domain.ElevationSeries, len(results))
	for i, r := range results {
		elev[i] = r.Elevation
	}
	return elev, nil
}

func latLng(p domain.GeoPoint) string {
	return fmt.Sprintf("%f,%f", p.Lat, p.Lon)
}
