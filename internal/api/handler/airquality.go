package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/clearsight/clearsight/internal/api/models"
	"github.com/clearsight/clearsight/internal/api/response"
	"github.com/clearsight/clearsight/internal/gateway"
	"github.com/clearsight/clearsight/internal/geo"
)

// Station listing limits.
const (
	defaultStationLimit = 10
	maxStationLimit     = 50
)

// AirQualityHandler handles air-quality endpoints.
type AirQualityHandler struct {
	gateway *gateway.Service
}

// NewAirQualityHandler creates a new AirQualityHandler.
func NewAirQualityHandler(gw *gateway.Service) *AirQualityHandler {
	return &AirQualityHandler{gateway: gw}
}

// GetAirQuality handles GET /v1/air-quality?lat=&lon= - resolves the
// current AQI reading for a coordinate.
func (h *AirQualityHandler) GetAirQuality(w http.ResponseWriter, r *http.Request) {
	coord, fieldErrors := parseCoordinate(r)
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "Invalid query parameters", fieldErrors)
		return
	}

	reading, err := h.gateway.Resolve(r.Context(), coord)
	if err != nil {
		writeResolveError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewAirQualityResponse(reading))
}

// ListStations handles GET /v1/air-quality/stations?lat=&lon=&limit= -
// lists monitoring stations near a coordinate, nearest first.
func (h *AirQualityHandler) ListStations(w http.ResponseWriter, r *http.Request) {
	coord, fieldErrors := parseCoordinate(r)

	limit := defaultStationLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			fieldErrors = append(fieldErrors, models.FieldError{
				Field:   "limit",
				Message: "must be a positive integer",
				Code:    "invalid",
			})
		} else {
			limit = parsed
			if limit > maxStationLimit {
				limit = maxStationLimit
			}
		}
	}

	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "Invalid query parameters", fieldErrors)
		return
	}

	ranked, err := h.gateway.NearbyStations(r.Context(), coord, limit)
	if err != nil {
		writeResolveError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewStationsResponse(ranked))
}

// parseCoordinate reads the lat/lon query parameters. Range validation
// is left to the gateway so both entry points reject the same way.
func parseCoordinate(r *http.Request) (geo.Coordinate, []models.FieldError) {
	var fieldErrors []models.FieldError
	var coord geo.Coordinate

	query := r.URL.Query()

	lat, err := strconv.ParseFloat(query.Get("lat"), 64)
	if err != nil {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field:   "lat",
			Message: "must be a number",
			Code:    "invalid",
		})
	}

	lon, err := strconv.ParseFloat(query.Get("lon"), 64)
	if err != nil {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field:   "lon",
			Message: "must be a number",
			Code:    "invalid",
		})
	}

	if len(fieldErrors) == 0 {
		coord = geo.Coordinate{Lat: lat, Lon: lon}
	}

	return coord, fieldErrors
}

// writeResolveError maps gateway errors onto problem responses.
func writeResolveError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, geo.ErrInvalidCoordinate):
		response.BadRequest(w, r, "Coordinate out of range", []models.FieldError{
			{Field: "lat,lon", Message: err.Error(), Code: "out_of_range"},
		})
	case errors.Is(err, gateway.ErrNoDataAvailable):
		response.ServiceUnavailable(w, r, "No air quality data available for this location right now. Please retry shortly.")
	default:
		response.InternalError(w, r, "Failed to resolve air quality data")
	}
}
