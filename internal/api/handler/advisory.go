package handler

import (
	"encoding/json"
	"net/http"

	"github.com/clearsight/clearsight/internal/advisory"
	"github.com/clearsight/clearsight/internal/api/models"
	"github.com/clearsight/clearsight/internal/api/response"
	"github.com/clearsight/clearsight/internal/gateway"
	"github.com/clearsight/clearsight/internal/geo"
	"github.com/clearsight/clearsight/internal/insight"
)

// AdvisoryHandler handles the personalized advisory endpoint.
type AdvisoryHandler struct {
	gateway   *gateway.Service
	generator *advisory.Generator
	insight   insight.Generator
}

// NewAdvisoryHandler creates a new AdvisoryHandler. A nil insight
// generator disables the narrative augmentation.
func NewAdvisoryHandler(gw *gateway.Service, gen *advisory.Generator, ins insight.Generator) *AdvisoryHandler {
	if ins == nil {
		ins = insight.Disabled{}
	}
	return &AdvisoryHandler{
		gateway:   gw,
		generator: gen,
		insight:   ins,
	}
}

// CreateAdvisory handles POST /v1/advisory - resolves air quality for
// the request location and produces the personalized advisory.
func (h *AdvisoryHandler) CreateAdvisory(w http.ResponseWriter, r *http.Request) {
	var req models.AdvisoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "Invalid request body", nil)
		return
	}

	if fieldErrors := validateAdvisoryRequest(req); len(fieldErrors) > 0 {
		response.BadRequest(w, r, "Invalid advisory request", fieldErrors)
		return
	}

	coord := geo.Coordinate{Lat: req.Location.Lat, Lon: req.Location.Lon}

	reading, err := h.gateway.Resolve(r.Context(), coord)
	if err != nil {
		writeResolveError(w, r, err)
		return
	}

	adv := h.generator.Generate(req.Profile, reading)

	if req.IncludeInsight {
		profile := req.Profile.Normalize()
		risk := advisory.AssessRisk(profile, reading)
		adv.Insight = h.insight.Generate(r.Context(), profile, reading, risk)
	}

	air := models.NewAirQualityResponse(reading)
	response.JSON(w, r, http.StatusOK, models.NewAdvisoryResponse(air, adv))
}

// validateAdvisoryRequest checks the fields the gateway does not cover.
func validateAdvisoryRequest(req models.AdvisoryRequest) []models.FieldError {
	var fieldErrors []models.FieldError

	if req.Profile.Age < 0 || req.Profile.Age > 130 {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field:   "profile.age",
			Message: "must be between 0 and 130",
			Code:    "out_of_range",
		})
	}

	if req.Profile.OutdoorHoursPerDay < 0 || req.Profile.OutdoorHoursPerDay > 24 {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field:   "profile.outdoorHoursPerDay",
			Message: "must be between 0 and 24",
			Code:    "out_of_range",
		})
	}

	return fieldErrors
}
