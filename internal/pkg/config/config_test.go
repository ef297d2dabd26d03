package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samirrijal/routeslope/internal/pkg/config"
)

// isolate runs the test in an empty directory so no config.yaml or .env is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("GOOGLE_MAPS_API_KEY", "")
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := config.Load("routeslope-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Analysis.IntervalKm != 0.25 {
		t.Errorf("expected interval 0.25, got %g", cfg.Analysis.IntervalKm)
	}
	if cfg.Analysis.FlatMaxGainM != 7 || cfg.Analysis.SteepMinGainM != 15 {
		t.Errorf("expected thresholds 7/15, got %g/%g", cfg.Analysis.FlatMaxGainM, cfg.Analysis.SteepMinGainM)
	}
	if cfg.Routing.Provider != config.ProviderOSRM {
		t.Errorf("expected osrm, got %q", cfg.Routing.Provider)
	}
	if cfg.Routing.OSRMURL != "http://router.project-osrm.org" {
		t.Errorf("unexpected osrm url %q", cfg.Routing.OSRMURL)
	}
	if cfg.Elevation.Provider != config.ProviderOpenElevation {
		t.Errorf("expected open-elevation, got %q", cfg.Elevation.Provider)
	}
	if cfg.Elevation.BatchSize != 512 {
		t.Errorf("expected batch size 512, got %d", cfg.Elevation.BatchSize)
	}
	if cfg.Cache.Enabled || cfg.NATS.Enabled || cfg.Telemetry.Enabled {
		t.Error("expected optional integrations disabled by default")
	}
	if cfg.Telemetry.ServiceName != "routeslope-test" {
		t.Errorf("expected service name routeslope-test, got %q", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("ROUTESLOPE_SERVER_PORT", "9090")
	t.Setenv("ROUTESLOPE_ANALYSIS_INTERVAL_KM", "0.5")
	t.Setenv("ROUTESLOPE_CACHE_ENABLED", "true")

	cfg, err := config.Load("routeslope-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Analysis.IntervalKm != 0.5 {
		t.Errorf("expected interval 0.5, got %g", cfg.Analysis.IntervalKm)
	}
	if !cfg.Cache.Enabled {
		t.Error("expected cache enabled")
	}
}

func TestLoad_GoogleKeyFallback(t *testing.T) {
	isolate(t)
	t.Setenv("ROUTESLOPE_ROUTING_PROVIDER", "google")
	t.Setenv("GOOGLE_MAPS_API_KEY", "test-key")

	cfg, err := config.Load("routeslope-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Google.APIKey != "test-key" {
		t.Errorf("expected key from GOOGLE_MAPS_API_KEY, got %q", cfg.Google.APIKey)
	}
	if !cfg.UsesGoogle() {
		t.Error("expected UsesGoogle")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("ROUTESLOPE_ROUTING_PROFILE=cycling\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("ROUTESLOPE_ROUTING_PROFILE") })

	cfg, err := config.Load("routeslope-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Routing.Profile != "cycling" {
		t.Errorf("expected profile from .env, got %q", cfg.Routing.Profile)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := isolate(t)
	yaml := "elevation:\n  batch_size: 100\nanalysis:\n  steep_min_gain_m: 20\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load("routeslope-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Elevation.BatchSize != 100 {
		t.Errorf("expected batch size 100, got %d", cfg.Elevation.BatchSize)
	}
	if cfg.Analysis.SteepMinGainM != 20 {
		t.Errorf("expected steep threshold 20, got %g", cfg.Analysis.SteepMinGainM)
	}
}

func validConfig() config.Config {
	return config.Config{
		Server:    config.ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 10, RequestTimeout: 30},
		Analysis:  config.AnalysisConfig{IntervalKm: 0.25, FlatMaxGainM: 7, SteepMinGainM: 15},
		Routing:   config.RoutingConfig{Provider: config.ProviderOSRM, OSRMURL: "http://osrm", Profile: "driving"},
		Elevation: config.ElevationConfig{Provider: config.ProviderOpenElevation, URL: "http://elev", BatchSize: 512},
		Providers: config.ProvidersConfig{Timeout: 15, MaxRetries: 2},
		Temporal:  config.TemporalConfig{TaskQueue: "slope-analysis"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{"valid", func(c *config.Config) {}, ""},
		{"bad port", func(c *config.Config) { c.Server.Port = 0 }, "server.port"},
		{"zero interval", func(c *config.Config) { c.Analysis.IntervalKm = 0 }, "analysis.interval_km"},
		{"inverted thresholds", func(c *config.Config) { c.Analysis.FlatMaxGainM = 20 }, "flat_max_gain_m"},
		{"equal thresholds", func(c *config.Config) { c.Analysis.FlatMaxGainM = 15 }, ""},
		{"unknown routing provider", func(c *config.Config) { c.Routing.Provider = "here" }, "routing.provider"},
		{"unknown elevation provider", func(c *config.Config) { c.Elevation.Provider = "srtm" }, "elevation.provider"},
		{"google without key", func(c *config.Config) { c.Elevation.Provider = config.ProviderGoogle }, "google.api_key"},
		{"google with key", func(c *config.Config) {
			c.Routing.Provider = config.ProviderGoogle
			c.Google.APIKey = "k"
		}, ""},
		{"cache without addr", func(c *config.Config) { c.Cache.Enabled = true }, "cache.addr"},
		{"nats without url", func(c *config.Config) { c.NATS.Enabled = true }, "nats.url"},
		{"negative retries", func(c *config.Config) { c.Providers.MaxRetries = -1 }, "providers.max_retries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = -1
	cfg.Elevation.BatchSize = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "server.port") || !strings.Contains(err.Error(), "elevation.batch_size") {
		t.Errorf("expected both problems reported, got %v", err)
	}
}
