// Package aqi provides pollutant sub-index conversion and overall AQI
// aggregation per the Indian CPCB breakpoint standard.
package aqi

import "time"

// Pollutant identifies a measured pollutant.
type Pollutant string

// Pollutants tracked by the advisory system. Concentrations are µg/m³
// except CO, which is mg/m³.
const (
	PM25 Pollutant = "PM25"
	PM10 Pollutant = "PM10"
	NO2  Pollutant = "NO2"
	SO2  Pollutant = "SO2"
	CO   Pollutant = "CO"
	O3   Pollutant = "O3"
)

// AllPollutants lists the tracked pollutants in canonical order.
// The order is also the tie-break order for the dominant pollutant.
var AllPollutants = []Pollutant{PM25, PM10, NO2, SO2, CO, O3}

// Readings maps pollutant to measured concentration. A missing key means
// the pollutant was not measured; upstream sources do not distinguish a
// zero value from an absent one, so zero is treated as missing as well.
type Readings map[Pollutant]float64

// Category is an AQI band per the Indian national AQI scale.
type Category string

const (
	CategoryGood         Category = "Good"
	CategorySatisfactory Category = "Satisfactory"
	CategoryModerate     Category = "Moderate"
	CategoryPoor         Category = "Poor"
	CategoryVeryPoor     Category = "Very Poor"
	CategorySevere       Category = "Severe"
)

// Reading is the normalized air-quality result for a query coordinate.
// It is built once by the gateway and never mutated afterwards.
type Reading struct {
	// AQI is the overall index value, 0-500.
	AQI int `json:"aqi"`

	// Category is the band the AQI value falls into.
	Category Category `json:"category"`

	// DominantPollutant is the pollutant that produced the AQI value.
	DominantPollutant Pollutant `json:"dominantPollutant,omitempty"`

	// Pollutants always carries all six tracked pollutants; unmeasured
	// values are zero.
	Pollutants Readings `json:"pollutants"`

	// StationLabel is the human-readable source station identifier.
	// Curated station ids may embed a city after a delimiter.
	StationLabel string `json:"stationLabel"`

	// DistanceKm is the distance from the query point to the station.
	DistanceKm float64 `json:"distanceKm"`

	// Source names the upstream data source that produced this reading.
	Source string `json:"source"`

	// MeasuredAt is the measurement timestamp reported by the source.
	MeasuredAt time.Time `json:"measuredAt"`

	// OutsideServiceRegion flags readings for coordinates outside the
	// configured service region. The reading is still usable; results
	// may be less accurate.
	OutsideServiceRegion bool `json:"outsideServiceRegion,omitempty"`
}

// NormalizedPollutants returns a copy of r with all six tracked pollutants
// present, substituting zero for missing values.
func NormalizedPollutants(r Readings) Readings {
	out := make(Readings, len(AllPollutants))
	for _, p := range AllPollutants {
		out[p] = r[p]
	}
	return out
}
