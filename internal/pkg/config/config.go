package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Provider names accepted by routing.provider and elevation.provider.
const (
	ProviderOSRM          = "osrm"
	ProviderOpenElevation = "open-elevation"
	ProviderGoogle        = "google"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Routing   RoutingConfig   `mapstructure:"routing"`
	Elevation ElevationConfig `mapstructure:"elevation"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Google    GoogleConfig    `mapstructure:"google"`
	Cache     CacheConfig     `mapstructure:"cache"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	ReadTimeout    int `mapstructure:"read_timeout"`
	WriteTimeout   int `mapstructure:"write_timeout"`
	RequestTimeout int `mapstructure:"request_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AnalysisConfig holds the sampling interval and gradient thresholds (meters of gain per segment).
type AnalysisConfig struct {
	IntervalKm    float64 `mapstructure:"interval_km"`
	FlatMaxGainM  float64 `mapstructure:"flat_max_gain_m"`
	SteepMinGainM float64 `mapstructure:"steep_min_gain_m"`
}

type RoutingConfig struct {
	Provider string `mapstructure:"provider"`
	OSRMURL  string `mapstructure:"osrm_url"`
	Profile  string `mapstructure:"profile"`
}

type ElevationConfig struct {
	Provider  string `mapstructure:"provider"`
	URL       string `mapstructure:"url"`
	BatchSize int    `mapstructure:"batch_size"`
}

type ProvidersConfig struct {
	Timeout    int `mapstructure:"timeout"`
	MaxRetries int `mapstructure:"max_retries"`
}

type GoogleConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	TTL     int    `mapstructure:"ttl"`
}

type NATSConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from .env, file and environment variables.
func Load(service string) (*Config, error) {
	// .env only fills variables that are not already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.request_timeout", 30)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("analysis.interval_km", 0.25)
	v.SetDefault("analysis.flat_max_gain_m", 7.0)
	v.SetDefault("analysis.steep_min_gain_m", 15.0)
	v.SetDefault("routing.provider", ProviderOSRM)
	v.SetDefault("routing.osrm_url", "http://router.project-osrm.org")
	v.SetDefault("routing.profile", "driving")
	v.SetDefault("elevation.provider", ProviderOpenElevation)
	v.SetDefault("elevation.url", "https://api.open-elevation.com")
	v.SetDefault("elevation.batch_size", 512)
	v.SetDefault("providers.timeout", 15)
	v.SetDefault("providers.max_retries", 2)
	v.SetDefault("google.api_key", "")
	v.SetDefault("google.base_url", "")
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.ttl", 86400)
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "slope-analysis")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// Environment variables: ROUTESLOPE_ROUTING_PROVIDER → routing.provider
	v.SetEnvPrefix("ROUTESLOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("google.api_key", "ROUTESLOPE_GOOGLE_API_KEY", "GOOGLE_MAPS_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// UsesGoogle reports whether either provider is backed by Google Maps.
func (c *Config) UsesGoogle() bool {
	return c.Routing.Provider == ProviderGoogle || c.Elevation.Provider == ProviderGoogle
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "server.request_timeout must be positive")
	}

	if c.Analysis.IntervalKm <= 0 {
		errs = append(errs, fmt.Sprintf("analysis.interval_km must be positive, got %g", c.Analysis.IntervalKm))
	}
	if c.Analysis.FlatMaxGainM > c.Analysis.SteepMinGainM {
		errs = append(errs, fmt.Sprintf("analysis.flat_max_gain_m (%g) must not exceed analysis.steep_min_gain_m (%g)",
			c.Analysis.FlatMaxGainM, c.Analysis.SteepMinGainM))
	}

	switch c.Routing.Provider {
	case ProviderOSRM:
		if c.Routing.OSRMURL == "" {
			errs = append(errs, "routing.osrm_url is required for the osrm provider")
		}
		if c.Routing.Profile == "" {
			errs = append(errs, "routing.profile is required for the osrm provider")
		}
	case ProviderGoogle:
	default:
		errs = append(errs, fmt.Sprintf("routing.provider must be %q or %q, got %q", ProviderOSRM, ProviderGoogle, c.Routing.Provider))
	}

	switch c.Elevation.Provider {
	case ProviderOpenElevation:
		if c.Elevation.URL == "" {
			errs = append(errs, "elevation.url is required for the open-elevation provider")
		}
	case ProviderGoogle:
	default:
		errs = append(errs, fmt.Sprintf("elevation.provider must be %q or %q, got %q", ProviderOpenElevation, ProviderGoogle, c.Elevation.Provider))
	}
	if c.Elevation.BatchSize <= 0 {
		errs = append(errs, "elevation.batch_size must be positive")
	}

	if c.UsesGoogle() && c.Google.APIKey == "" {
		errs = append(errs, "google.api_key (or GOOGLE_MAPS_API_KEY) is required when a google provider is selected")
	}

	if c.Providers.Timeout <= 0 {
		errs = append(errs, "providers.timeout must be positive")
	}
	if c.Providers.MaxRetries < 0 {
		errs = append(errs, "providers.max_retries must not be negative")
	}

	if c.Cache.Enabled && c.Cache.Addr == "" {
		errs = append(errs, "cache.addr is required when the cache is enabled")
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, "cache.ttl must not be negative")
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required when nats is enabled")
	}
	if c.Temporal.TaskQueue == "" {
		errs = append(errs, "temporal.task_queue is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
