// Package openaq provides a client for the OpenAQ public API, used as
// the last-resort measurement source.
package openaq

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/clearsight/clearsight/internal/aqi"
	"github.com/clearsight/clearsight/internal/gateway"
	"github.com/clearsight/clearsight/internal/geo"
	"github.com/clearsight/clearsight/internal/provider/resilience"
)

const (
	// SourceName identifies this source in readings and logs.
	SourceName = "OpenAQ"

	// DefaultBaseURL is the OpenAQ API base URL.
	DefaultBaseURL = "https://api.openaq.org/v2"

	// defaultRadiusMeters bounds the location search around the query
	// coordinate.
	defaultRadiusMeters = 25000
)

// ClientConfig holds configuration for the OpenAQ client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional, defaults to DefaultBaseURL).
	BaseURL string

	// APIKey is sent as X-API-Key when set. OpenAQ serves modest rate
	// limits without one.
	APIKey string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Logger for client operations.
	Logger zerolog.Logger
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is an OpenAQ API client implementing the gateway's secondary
// measurement source.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new OpenAQ client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig("openaq"))
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the source name.
func (c *Client) Name() string { return SourceName }

// FetchNear queries the latest measurements around the coordinate and
// aggregates the nearest location's values. Returns (nil, nil) when the
// API has no coverage there.
func (c *Client) FetchNear(ctx context.Context, at geo.Coordinate) (*gateway.MeasurementSet, error) {
	url := fmt.Sprintf("%s/latest?coordinates=%.4f,%.4f&radius=%d&limit=5&order_by=distance",
		c.baseURL, at.Lat, at.Lon, defaultRadiusMeters)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", gateway.ErrSourceUnavailable, resp.StatusCode)
	}

	var oaqResp latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&oaqResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return c.toMeasurementSet(&oaqResp, at), nil
}

// toMeasurementSet converts an OpenAQ response to the gateway model,
// folding the nearest locations' measurements together. Values are
// rounded to whole numbers; the nearest location wins on duplicates.
func (c *Client) toMeasurementSet(resp *latestResponse, at geo.Coordinate) *gateway.MeasurementSet {
	if len(resp.Results) == 0 {
		return nil
	}

	readings := make(aqi.Readings)
	var measuredAt time.Time
	for _, result := range resp.Results {
		for _, m := range result.Measurements {
			p, ok := toPollutant(m.Parameter)
			if !ok || m.Value <= 0 {
				continue
			}
			if _, seen := readings[p]; seen {
				continue
			}
			readings[p] = math.Round(m.Value)
			if m.LastUpdated.After(measuredAt) {
				measuredAt = m.LastUpdated
			}
		}
	}

	if len(readings) == 0 {
		return nil
	}

	nearest := resp.Results[0]
	return &gateway.MeasurementSet{
		Location: nearest.Location,
		Readings: readings,
		DistanceKm: geo.DistanceKm(at, geo.Coordinate{
			Lat: nearest.Coordinates.Latitude,
			Lon: nearest.Coordinates.Longitude,
		}),
		MeasuredAt: measuredAt,
	}
}

// toPollutant maps an OpenAQ parameter code to a pollutant.
func toPollutant(parameter string) (aqi.Pollutant, bool) {
	switch parameter {
	case "pm25":
		return aqi.PM25, true
	case "pm10":
		return aqi.PM10, true
	case "no2":
		return aqi.NO2, true
	case "so2":
		return aqi.SO2, true
	case "co":
		return aqi.CO, true
	case "o3":
		return aqi.O3, true
	default:
		return "", false
	}
}

// OpenAQ API response structures.

type latestResponse struct {
	Results []struct {
		Location    string `json:"location"`
		Coordinates struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"coordinates"`
		Measurements []struct {
			Parameter   string    `json:"parameter"`
			Value       float64   `json:"value"`
			Unit        string    `json:"unit"`
			LastUpdated time.Time `json:"lastUpdated"`
		} `json:"measurements"`
	} `json:"results"`
}
