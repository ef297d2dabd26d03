// Package providers builds the routing and elevation adapters selected in config.
package providers

import (
	"fmt"
	"time"

	"github.com/samirrijal/routeslope/internal/adapters/googlemaps"
	"github.com/samirrijal/routeslope/internal/adapters/openelevation"
	"github.com/samirrijal/routeslope/internal/adapters/osrm"
	"github.com/samirrijal/routeslope/internal/core/ports"
	"github.com/samirrijal/routeslope/internal/pkg/config"
	"github.com/samirrijal/routeslope/internal/pkg/httpclient"
)

// Set is a routing provider paired with an elevation provider.
type Set struct {
	Routes     ports.RouteProvider
	Elevations ports.ElevationProvider
}

// FromConfig constructs the providers named by routing.provider and elevation.provider.
// A single Google client backs both ports when both select google.
func FromConfig(cfg *config.Config) (*Set, error) {
	timeout := time.Duration(cfg.Providers.Timeout) * time.Second

	opts := httpclient.DefaultOptions()
	opts.Timeout = timeout
	opts.MaxRetries = cfg.Providers.MaxRetries

	var google *googlemaps.Client
	if cfg.UsesGoogle() {
		var err error
		google, err = googlemaps.New(cfg.Google.APIKey, cfg.Google.BaseURL, timeout, cfg.Elevation.BatchSize)
		if err != nil {
			return nil, fmt.Errorf("google maps client: %w", err)
		}
	}

	set := &Set{}

	switch cfg.Routing.Provider {
	case config.ProviderOSRM:
		set.Routes = osrm.New(cfg.Routing.OSRMURL, cfg.Routing.Profile, opts)
	case config.ProviderGoogle:
		set.Routes = google
	default:
		return nil, fmt.Errorf("unknown routing provider %q", cfg.Routing.Provider)
	}

	switch cfg.Elevation.Provider {
	case config.ProviderOpenElevation:
		set.Elevations = openelevation.New(cfg.Elevation.URL, cfg.Elevation.BatchSize, opts)
	case config.ProviderGoogle:
		set.Elevations = google
	default:
		return nil, fmt.Errorf("unknown elevation provider %q", cfg.Elevation.Provider)
	}

	return set, nil
}
