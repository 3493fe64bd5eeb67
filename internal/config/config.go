package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/voltpath/stationfinder/internal/models"
)

// Named fallbacks used whenever a search cannot learn better values
var DefaultCenter = models.Coordinate{Lat: 12.9716, Lng: 77.5946}

const (
	DefaultRadiusMeters       = 5000
	DefaultGeolocationTimeout = 10 * time.Second
	DefaultOverpassURL        = "https://overpass-api.de/api/interpreter"
	DefaultIPLocatorURL       = "http://ip-api.com/json"
)

type Config struct {
	Environment         string
	LogLevel            zerolog.Level
	HTTPTimeout         time.Duration
	OverpassURL         string
	OverpassHTTPTimeout time.Duration
	IPLocatorURL        string
	DefaultCenter       models.Coordinate
	DefaultRadiusMeters int
	GeolocationTimeout  time.Duration
	Port                string
}

type Option func(*Config)

// WithEnvironment allows setting the environment
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithLogLevel allows setting the log level
func WithLogLevel(level string) Option {
	return func(c *Config) {
		parsedLevel, err := zerolog.ParseLevel(level)
		if err != nil {
			parsedLevel = zerolog.InfoLevel
		}
		c.LogLevel = parsedLevel
	}
}

// WithHTTPTimeout allows setting the HTTP timeout for auxiliary lookups
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = timeout
	}
}

// WithOverpass points the data source at another interpreter endpoint
func WithOverpass(url string, timeout time.Duration) Option {
	return func(c *Config) {
		if url != "" {
			c.OverpassURL = url
		}
		if timeout > 0 {
			c.OverpassHTTPTimeout = timeout
		}
	}
}

func WithIPLocatorURL(url string) Option {
	return func(c *Config) {
		c.IPLocatorURL = url
	}
}

// WithDefaultCenter replaces the fallback center. Invalid coordinates are ignored.
func WithDefaultCenter(center models.Coordinate) Option {
	return func(c *Config) {
		if err := center.Validate(); err != nil {
			log.Warn().Err(err).Msg("Ignoring invalid default center")
			return
		}
		c.DefaultCenter = center
	}
}

func WithDefaultRadius(meters int) Option {
	return func(c *Config) {
		if meters > 0 {
			c.DefaultRadiusMeters = meters
		}
	}
}

func WithGeolocationTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.GeolocationTimeout = timeout
		}
	}
}

func WithPort(port string) Option {
	return func(c *Config) {
		c.Port = port
	}
}

// New creates a new configuration with default values
func New(opts ...Option) *Config {
	cfg := &Config{
		Environment:         "production",
		LogLevel:            zerolog.InfoLevel,
		HTTPTimeout:         10 * time.Second,
		OverpassURL:         DefaultOverpassURL,
		OverpassHTTPTimeout: 30 * time.Second,
		IPLocatorURL:        DefaultIPLocatorURL,
		DefaultCenter:       DefaultCenter,
		DefaultRadiusMeters: DefaultRadiusMeters,
		GeolocationTimeout:  DefaultGeolocationTimeout,
		Port:                "8080",
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// InitializeLogging sets up logging based on the configuration
func (c *Config) InitializeLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(c.LogLevel)

	if c.Environment == "local" || c.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	return New(
		WithEnvironment(getEnvOrDefault("ENV", "production")),
		WithLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		WithHTTPTimeout(getDurationEnvOrDefault("HTTP_TIMEOUT", 10*time.Second)),
		WithOverpass(os.Getenv("OVERPASS_URL"), getDurationEnvOrDefault("OVERPASS_HTTP_TIMEOUT", 30*time.Second)),
		WithIPLocatorURL(getEnvOrDefault("IP_LOCATOR_URL", DefaultIPLocatorURL)),
		WithDefaultCenter(models.Coordinate{
			Lat: getFloatEnvOrDefault("DEFAULT_CENTER_LAT", DefaultCenter.Lat),
			Lng: getFloatEnvOrDefault("DEFAULT_CENTER_LNG", DefaultCenter.Lng),
		}),
		WithDefaultRadius(getEnvInt("DEFAULT_RADIUS_METERS", DefaultRadiusMeters)),
		WithGeolocationTimeout(getDurationEnvOrDefault("GEOLOCATION_TIMEOUT", DefaultGeolocationTimeout)),
		WithPort(getEnvOrDefault("PORT", "8080")),
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getFloatEnvOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Warn().Str("key", key).Msg("Invalid float value in environment variable, using default")
	}
	return defaultValue
}
