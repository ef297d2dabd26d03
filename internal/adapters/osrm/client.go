package osrm

import (
	"context"
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/routeslope/internal/core/domain"
	"github.com/samirrijal/routeslope/internal/pkg/geospatial"
	"github.com/samirrijal/routeslope/internal/pkg/httpclient"
	"github.com/samirrijal/routeslope/internal/pkg/metrics"
)

// Client implements ports.RouteProvider against an OSRM route service.
type Client struct {
	http    *httpclient.Client
	profile string
}

// New creates an OSRM client. profile is the OSRM profile, e.g. "driving".
func New(baseURL, profile string, opts httpclient.Options) *Client {
	if profile == "" {
		profile = "driving"
	}
	return &Client{http: httpclient.New(baseURL, opts), profile: profile}
}

type routeResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64           `json:"distance"`
		Geometry *geojson.Geometry `json:"geometry"`
	} `json:"routes"`
}

// Route returns the full-resolution geometry of the first OSRM route.
// OSRM answers in (lon, lat) order; the result is flipped to GeoPoints.
func (c *Client) Route(ctx context.Context, origin, destination domain.GeoPoint) (route domain.Route, err error) {
	start := time.Now()
	defer func() { metrics.ObserveProvider("osrm", "route", start, err) }()

	path := fmt.Sprintf("/route/v1/%s/%s;%s?overview=full&geometries=geojson",
		c.profile, origin.LonLat(), destination.LonLat())

	var resp routeResponse
	if err := c.http.GetJSON(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("%w: osrm: %w", domain.ErrProviderFailure, err)
	}
	if resp.Code != "Ok" {
		return nil, fmt.Errorf("%w: osrm: %s %s", domain.ErrProviderFailure, resp.Code, resp.Message)
	}
	if len(resp.Routes) == 0 || resp.Routes[0].Geometry == nil {
		return nil, fmt.Errorf("%w: osrm: no route geometry", domain.ErrProviderFailure)
	}

	ls, ok := resp.Routes[0].Geometry.Geometry().(orb.LineString)
	if !ok || len(ls) == 0 {
		return nil, fmt.Errorf("%w: osrm: geometry is %s, want LineString", domain.ErrProviderFailure, resp.Routes[0].Geometry.Type)
	}
	return geospatial.FromLineString(ls), nil
}
