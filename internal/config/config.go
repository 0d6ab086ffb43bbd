// Package config supplies the static domain configuration: breakpoint
// tables, AQI thresholds, cache TTL and service-region bounds, plus
// environment-driven settings for the external sources.
package config

import (
	"os"
	"time"

	"github.com/clearsight/clearsight/internal/geo"
)

// DefaultCacheTTL is how long a resolved reading stays fresh.
const DefaultCacheTTL = 30 * time.Minute

// ServiceRegion is the Delhi-NCR bounding rectangle. Coordinates outside
// it are still served, flagged with a region warning.
var ServiceRegion = geo.Bounds{
	North: 29.0,
	South: 28.4,
	East:  77.5,
	West:  76.8,
}

// LiveFeedRegion is the bounding rectangle within which the governmental
// live feed is worth querying at all. Much larger than ServiceRegion: the
// feed covers stations across the country.
var LiveFeedRegion = geo.Bounds{
	North: 38.0,
	South: 6.0,
	East:  98.0,
	West:  68.0,
}

// Config holds environment-driven settings for the API and worker.
type Config struct {
	Port string
	Env  string

	// CuratedStationsPath is the curated station dataset JSON file.
	CuratedStationsPath string

	// CPCBFeedURL is the governmental live XML feed endpoint.
	CPCBFeedURL string

	// OpenAQBaseURL is the secondary public API base URL.
	OpenAQBaseURL string

	// OpenAQAPIKey raises the OpenAQ rate limits when set.
	OpenAQAPIKey string

	// GeminiAPIKey enables the narrative insight generator when set.
	GeminiAPIKey string

	// RedisAddr enables the Redis cache backend when set; empty means
	// the in-memory cache is used.
	RedisAddr string

	CacheTTL time.Duration

	OTLPEndpoint     string
	TelemetryEnabled bool
}

// FromEnv builds a Config from environment variables with local-dev
// defaults.
func FromEnv() Config {
	ttl, err := time.ParseDuration(getEnvOrDefault("AQI_CACHE_TTL", "30m"))
	if err != nil {
		ttl = DefaultCacheTTL
	}

	return Config{
		Port:                getEnvOrDefault("APP_PORT", "8080"),
		Env:                 getEnvOrDefault("APP_ENV", "development"),
		CuratedStationsPath: getEnvOrDefault("CURATED_STATIONS_PATH", "selected_stations.json"),
		CPCBFeedURL:         getEnvOrDefault("CPCB_FEED_URL", "https://airquality.cpcb.gov.in/caaqms/rss_feed"),
		OpenAQBaseURL:       getEnvOrDefault("OPENAQ_BASE_URL", "https://api.openaq.org/v2"),
		OpenAQAPIKey:        os.Getenv("OPENAQ_API_KEY"),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		CacheTTL:            ttl,
		OTLPEndpoint:        getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TelemetryEnabled:    os.Getenv("OTEL_ENABLED") == "true",
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
