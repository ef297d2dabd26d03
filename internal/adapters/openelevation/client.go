package openelevation

import (
	"context"
	"fmt"
	"time"

	"github.com/samirrijal/routeslope/internal/core/domain"
	"github.com/samirrijal/routeslope/internal/pkg/httpclient"
	"github.com/samirrijal/routeslope/internal/pkg/metrics"
)

// DefaultBatchSize keeps request bodies well under the public instance's limits.
const DefaultBatchSize = 512

// Client implements ports.ElevationProvider against an Open-Elevation lookup API.
type Client struct {
	http      *httpclient.Client
	batchSize int
}

// New creates an Open-Elevation client.
func New(baseURL string, batchSize int, opts httpclient.Options) *Client {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Client{http: httpclient.New(baseURL, opts), batchSize: batchSize}
}

type location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type lookupRequest struct {
	Locations []location `json:"locations"`
}

type lookupResponse struct {
	Results []struct {
		Latitude  float64  `json:"latitude"`
		Longitude float64  `json:"longitude"`
		Elevation *float64 `json:"elevation"`
	} `json:"results"`
}

// Elevations looks points up in batches and returns elevations in submission order.
func (c *Client) Elevations(ctx context.Context, points []domain.GeoPoint) (domain.ElevationSeries, error) {
	out := make(domain.ElevationSeries, 0, len(points))
	for start := 0; start < len(points); start += c.batchSize {
		end := start + c.batchSize
		if end > len(points) {
			end = len(points)
		}
		batch, err := c.lookup(ctx, points[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, nil
}

func (c *Client) lookup(ctx context.Context, points []domain.GeoPoint) (elev domain.ElevationSeries, err error) {
	start := time.Now()
	defer func() { metrics.ObserveProvider("open-elevation", "lookup", start, err) }()

	req := lookupRequest{Locations: make([]location, len(points))}
	for i, p := range points {
		req.Locations[i] = location{Latitude: p.Lat, Longitude: p.Lon}
	}

	var resp lookupResponse
	if err := c.http.PostJSON(ctx, "/api/v1/lookup", req, &resp); err != nil {
		return nil, fmt.Errorf("%w: open-elevation: %w", domain.ErrProviderFailure, err)
	}
	if len(resp.Results) != len(points) {
		return nil, fmt.Errorf("%w: open-elevation: %d results for %d locations",
			domain.ErrProviderFailure, len(resp.Results), len(points))
	}

	elev = make(domain.ElevationSeries, len(resp.Results))
	for i, r := range resp.Results {
		if r.Elevation == nil {
			return nil, fmt.Errorf("%w: open-elevation: result %d has no elevation", domain.ErrProviderFailure, i)
		}
		elev[i] = *r.Elevation
	}
	return elev, nil
}
