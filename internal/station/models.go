// Package station provides the monitoring-station model and the
// nearest-valid-station selection algorithm.
package station

import (
	"time"

	"github.com/clearsight/clearsight/internal/aqi"
	"github.com/clearsight/clearsight/internal/geo"
)

// Station is a monitoring station reported by one of the data sources.
type Station struct {
	// ID is the source's station identifier. Curated ids are
	// human-readable and may embed a city after a comma delimiter.
	ID string `json:"id"`

	Coordinate geo.Coordinate `json:"coordinate"`

	// Pollutants holds the raw concentrations the source reported.
	Pollutants aqi.Readings `json:"pollutants"`

	// AuthoritativeAQI is a pre-computed index from the source. When
	// present and positive it takes precedence over any derived value.
	AuthoritativeAQI int `json:"authoritativeAqi,omitempty"`

	// LastUpdated is the source's measurement timestamp, if reported.
	LastUpdated time.Time `json:"lastUpdated,omitempty"`
}

// EffectiveAQI is the index value used for station selection: the
// source's authoritative AQI when positive, otherwise max(PM2.5, PM10)
// raw concentrations. The fallback is a coarse proxy matching upstream
// source behavior, deliberately not the full sub-index calculation; the
// secondary-API path computes the full index instead, so effective AQI
// is not uniform across sources.
func (s Station) EffectiveAQI() int {
	if s.AuthoritativeAQI > 0 {
		return s.AuthoritativeAQI
	}
	pm := s.Pollutants[aqi.PM25]
	if pm10 := s.Pollutants[aqi.PM10]; pm10 > pm {
		pm = pm10
	}
	return int(pm)
}

// Valid reports whether the station carries usable data. Source feeds do
// not distinguish a zero concentration from a missing one, so a station
// whose effective AQI is zero is treated as having no data - this can
// wrongly exclude a genuinely clean-air station, which is a known
// limitation inherited from the upstream feeds.
func (s Station) Valid() bool {
	return s.EffectiveAQI() > 0
}

// Ranked pairs a station with its distance from a query point.
type Ranked struct {
	Station
	DistanceKm float64 `json:"distanceKm"`
}
