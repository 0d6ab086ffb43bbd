// Package cpcb provides a client for the CPCB live air-quality XML feed.
package cpcb

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/clearsight/clearsight/internal/aqi"
	"github.com/clearsight/clearsight/internal/gateway"
	"github.com/clearsight/clearsight/internal/geo"
	"github.com/clearsight/clearsight/internal/provider/resilience"
	"github.com/clearsight/clearsight/internal/source/curated"
	"github.com/clearsight/clearsight/internal/station"
)

const (
	// DefaultFeedURL is the CPCB CAAQMS RSS feed endpoint.
	DefaultFeedURL = "https://airquality.cpcb.gov.in/caaqms/rss_feed"

	// SourceName identifies this source in readings and logs.
	SourceName = "CPCB (Govt. of India)"
)

// ClientConfig holds configuration for the CPCB feed client.
type ClientConfig struct {
	// FeedURL is the feed endpoint (defaults to DefaultFeedURL).
	FeedURL string

	// HTTPClient is the HTTP client to use (must implement HTTPDoer).
	// If nil, a default resilient client is created.
	HTTPClient HTTPDoer

	// Timeout for individual feed requests (default: 15s).
	Timeout time.Duration
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches and parses the CPCB live feed.
type Client struct {
	feedURL    string
	httpClient HTTPDoer
}

// NewClient creates a new CPCB feed client.
func NewClient(cfg ClientConfig) *Client {
	feedURL := cfg.FeedURL
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 15 * time.Second
		}
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:            "cpcb",
			Timeout:         timeout,
			MaxRetries:      3,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		})
	}

	return &Client{
		feedURL:    feedURL,
		httpClient: httpClient,
	}
}

// Name returns the source name for logging.
func (c *Client) Name() string { return SourceName }

// Feed XML schema.

// feedDocument matches Station elements directly under the feed root;
// the root element name varies between feed revisions and is ignored.
type feedDocument struct {
	Stations []feedStation `xml:"Station"`
}

type feedStation struct {
	ID         string          `xml:"id,attr"`
	Latitude   string          `xml:"latitude,attr"`
	Longitude  string          `xml:"longitude,attr"`
	LastUpdate string          `xml:"lastupdate,attr"`
	Pollutants []feedPollutant `xml:"Pollutant_Index"`
	AQI        feedAQI         `xml:"Air_Quality_Index"`
}

type feedPollutant struct {
	ID  string `xml:"id,attr"`
	Avg string `xml:"Avg,attr"`
}

type feedAQI struct {
	Value string `xml:"Value,attr"`
}

// FetchAll retrieves the live feed and parses it into stations.
// Stations with unparsable coordinates are skipped.
func (c *Client) FetchAll(ctx context.Context) ([]station.Station, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch cpcb feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d from cpcb feed", gateway.ErrSourceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read cpcb feed: %w", err)
	}

	return ParseStations(body)
}

// ParseStations parses a CPCB feed document into stations.
func ParseStations(data []byte) ([]station.Station, error) {
	var doc feedDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode cpcb feed: %w", err)
	}

	stations := make([]station.Station, 0, len(doc.Stations))
	for _, fs := range doc.Stations {
		lat, latErr := strconv.ParseFloat(fs.Latitude, 64)
		lon, lonErr := strconv.ParseFloat(fs.Longitude, 64)
		if latErr != nil || lonErr != nil || math.IsNaN(lat) || math.IsNaN(lon) {
			continue
		}

		pollutants := make(aqi.Readings)
		for _, fp := range fs.Pollutants {
			p, ok := curated.ToPollutant(fp.ID)
			if !ok {
				continue
			}
			if avg, err := strconv.ParseFloat(fp.Avg, 64); err == nil && avg > 0 {
				pollutants[p] = avg
			}
		}

		authoritative := 0
		if v, err := strconv.Atoi(fs.AQI.Value); err == nil && v > 0 {
			authoritative = v
		}

		var updated time.Time
		if fs.LastUpdate != "" {
			if t, err := time.Parse("02-01-2006 15:04:05", fs.LastUpdate); err == nil {
				updated = t
			}
		}

		stations = append(stations, station.Station{
			ID:               fs.ID,
			Coordinate:       geo.Coordinate{Lat: lat, Lon: lon},
			Pollutants:       pollutants,
			AuthoritativeAQI: authoritative,
			LastUpdated:      updated,
		})
	}

	return stations, nil
}
