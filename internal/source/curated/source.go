// Package curated provides the pre-vetted station dataset source. It is
// the highest-priority, offline-friendly source in the resolution chain.
package curated

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/clearsight/clearsight/internal/aqi"
	"github.com/clearsight/clearsight/internal/geo"
	"github.com/clearsight/clearsight/internal/station"
)

// SourceName identifies this source in readings and logs.
const SourceName = "CPCB (Govt. of India)"

// lastUpdateLayout is the timestamp format used by the curated dataset
// (inherited from the CPCB feed).
const lastUpdateLayout = "02-01-2006 15:04:05"

// FileSource loads the curated station dataset from a JSON file.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource reading from the given path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name returns the source name for logging.
func (s *FileSource) Name() string { return SourceName }

// stationRecord is the curated JSON schema. Numeric fields arrive as
// strings or numbers depending on how the dataset was generated.
type stationRecord struct {
	StationID  string               `json:"station_id"`
	Latitude   flexFloat            `json:"latitude"`
	Longitude  flexFloat            `json:"longitude"`
	Pollutants map[string]flexFloat `json:"pollutants"`
	AQI        flexFloat            `json:"aqi"`
	LastUpdate string               `json:"last_update"`
}

// FetchAll loads and parses the curated dataset.
func (s *FileSource) FetchAll(_ context.Context) ([]station.Station, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read curated stations: %w", err)
	}

	var records []stationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode curated stations: %w", err)
	}

	stations := make([]station.Station, 0, len(records))
	for _, rec := range records {
		stations = append(stations, rec.toStation())
	}
	return stations, nil
}

func (r stationRecord) toStation() station.Station {
	pollutants := make(aqi.Readings, len(r.Pollutants))
	for key, value := range r.Pollutants {
		if p, ok := ToPollutant(key); ok && value > 0 {
			pollutants[p] = float64(value)
		}
	}

	var updated time.Time
	if r.LastUpdate != "" {
		if t, err := time.Parse(lastUpdateLayout, r.LastUpdate); err == nil {
			updated = t
		} else if t, err := time.Parse(time.RFC3339, r.LastUpdate); err == nil {
			updated = t
		}
	}

	return station.Station{
		ID:               r.StationID,
		Coordinate:       geo.Coordinate{Lat: float64(r.Latitude), Lon: float64(r.Longitude)},
		Pollutants:       pollutants,
		AuthoritativeAQI: int(r.AQI),
		LastUpdated:      updated,
	}
}

// ToPollutant maps a source pollutant label to the canonical code.
// CPCB-derived feeds label ozone either "O3" or "OZONE".
func ToPollutant(label string) (aqi.Pollutant, bool) {
	switch strings.ToUpper(label) {
	case "PM2.5", "PM25":
		return aqi.PM25, true
	case "PM10":
		return aqi.PM10, true
	case "NO2":
		return aqi.NO2, true
	case "SO2":
		return aqi.SO2, true
	case "CO":
		return aqi.CO, true
	case "O3", "OZONE":
		return aqi.O3, true
	default:
		return "", false
	}
}

// flexFloat accepts JSON numbers and numeric strings; anything
// unparsable becomes zero, matching the dataset's loose typing.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}
