package models

import (
	"github.com/clearsight/clearsight/internal/aqi"
	"github.com/clearsight/clearsight/internal/station"
)

// AirQualityResponse is the payload for GET /v1/air-quality.
type AirQualityResponse struct {
	AQI               int                `json:"aqi"`
	Category          string             `json:"category"`
	DominantPollutant string             `json:"dominantPollutant,omitempty"`
	Pollutants        map[string]float64 `json:"pollutants"`
	Station           string             `json:"station"`
	DistanceKm        float64            `json:"distanceKm"`
	Source            string             `json:"source"`
	MeasuredAt        Timestamp          `json:"measuredAt"`

	// RegionWarning is set when the coordinate lies outside the
	// Delhi-NCR service region.
	RegionWarning string `json:"regionWarning,omitempty"`
}

const regionWarningText = "This location is outside the Delhi-NCR service region; results may be less accurate."

// NewAirQualityResponse converts a resolved reading to the API shape.
func NewAirQualityResponse(reading *aqi.Reading) AirQualityResponse {
	pollutants := make(map[string]float64, len(reading.Pollutants))
	for p, v := range reading.Pollutants {
		pollutants[string(p)] = v
	}

	resp := AirQualityResponse{
		AQI:               reading.AQI,
		Category:          string(reading.Category),
		DominantPollutant: string(reading.DominantPollutant),
		Pollutants:        pollutants,
		Station:           reading.StationLabel,
		DistanceKm:        reading.DistanceKm,
		Source:            reading.Source,
		MeasuredAt:        Timestamp(reading.MeasuredAt),
	}

	if reading.OutsideServiceRegion {
		resp.RegionWarning = regionWarningText
	}

	return resp
}

// StationSummary is one entry of GET /v1/air-quality/stations.
type StationSummary struct {
	ID         string  `json:"id"`
	Location   Point   `json:"location"`
	AQI        int     `json:"aqi,omitempty"`
	HasData    bool    `json:"hasData"`
	DistanceKm float64 `json:"distanceKm"`
}

// StationsResponse is the payload for GET /v1/air-quality/stations.
type StationsResponse struct {
	Stations []StationSummary `json:"stations"`
}

// NewStationsResponse converts ranked stations to the API shape.
func NewStationsResponse(ranked []station.Ranked) StationsResponse {
	stations := make([]StationSummary, 0, len(ranked))
	for _, r := range ranked {
		stations = append(stations, StationSummary{
			ID:         r.ID,
			Location:   Point{Lat: r.Coordinate.Lat, Lon: r.Coordinate.Lon},
			AQI:        r.EffectiveAQI(),
			HasData:    r.Valid(),
			DistanceKm: r.DistanceKm,
		})
	}
	return StationsResponse{Stations: stations}
}
