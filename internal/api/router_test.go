package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearsight/clearsight/internal/advisory"
	"github.com/clearsight/clearsight/internal/api"
	"github.com/clearsight/clearsight/internal/api/handler"
	"github.com/clearsight/clearsight/internal/api/models"
	"github.com/clearsight/clearsight/internal/aqi"
	"github.com/clearsight/clearsight/internal/gateway"
	"github.com/clearsight/clearsight/internal/geo"
	"github.com/clearsight/clearsight/internal/insight"
	"github.com/clearsight/clearsight/internal/station"
)

type stubStationSource struct {
	stations []station.Station
	err      error
}

func (s *stubStationSource) FetchAll(context.Context) ([]station.Station, error) {
	return s.stations, s.err
}

func (s *stubStationSource) Name() string { return "curated" }

// delhiStations is a small pool around Connaught Place.
func delhiStations() []station.Station {
	return []station.Station{
		{
			ID:               "Mandir Marg, Delhi",
			Coordinate:       geo.Coordinate{Lat: 28.6366, Lon: 77.1990},
			Pollutants:       aqi.Readings{aqi.PM25: 180, aqi.PM10: 290},
			AuthoritativeAQI: 320,
		},
		{
			ID:               "Anand Vihar, Delhi",
			Coordinate:       geo.Coordinate{Lat: 28.6468, Lon: 77.3152},
			Pollutants:       aqi.Readings{aqi.PM25: 210, aqi.PM10: 330},
			AuthoritativeAQI: 365,
		},
	}
}

type routerOption func(*api.RouterConfig)

func withChecks(checks ...handler.DependencyCheck) routerOption {
	return func(cfg *api.RouterConfig) { cfg.Checks = checks }
}

func withSource(src gateway.StationSource) routerOption {
	return func(cfg *api.RouterConfig) {
		cfg.Gateway = gateway.NewService(gateway.Config{
			Curated: src,
			Logger:  zerolog.Nop(),
		})
	}
}

func newTestRouter(opts ...routerOption) http.Handler {
	logger := zerolog.New(io.Discard)

	cfg := api.RouterConfig{
		Version:   "test",
		BuildTime: "2024-01-01T00:00:00Z",
		Logger:    logger,
		Gateway: gateway.NewService(gateway.Config{
			Curated: &stubStationSource{stations: delhiStations()},
			Logger:  zerolog.Nop(),
		}),
		AdvisoryGenerator: advisory.NewGenerator(nil),
		Insight:           insight.Disabled{},
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return api.NewRouter(cfg)
}

func TestRouter_HealthCheck(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var health models.Health
	err := json.Unmarshal(w.Body.Bytes(), &health)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.Equal(t, "test", health.Details["version"])
}

func TestRouter_ReadinessCheck(t *testing.T) {
	router := newTestRouter(withChecks(handler.DependencyCheck{
		Name:  "postgres",
		Check: func(context.Context) error { return nil },
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var health models.Health
	err := json.Unmarshal(w.Body.Bytes(), &health)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, health.Status)
}

func TestRouter_ReadinessCheck_DependencyDown(t *testing.T) {
	router := newTestRouter(withChecks(handler.DependencyCheck{
		Name:  "postgres",
		Check: func(context.Context) error { return errors.New("connection refused") },
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var health models.Health
	err := json.Unmarshal(w.Body.Bytes(), &health)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusFail, health.Status)
}

func TestRouter_SystemStatus(t *testing.T) {
	router := newTestRouter(withChecks(handler.DependencyCheck{
		Name:  "redis",
		Check: func(context.Context) error { return nil },
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var status models.SystemStatus
	err := json.Unmarshal(w.Body.Bytes(), &status)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, status.Status)
	require.Len(t, status.Subsystems, 1)
	assert.Equal(t, "redis", status.Subsystems[0].Name)
}

func TestRouter_GetAirQuality(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/air-quality?lat=28.6315&lon=77.2167", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.AirQualityResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Equal(t, 320, resp.AQI)
	assert.Equal(t, "Very Poor", resp.Category)
	assert.Equal(t, "Mandir Marg, Delhi", resp.Station)
	assert.Equal(t, "curated", resp.Source)
	assert.Empty(t, resp.RegionWarning)
}

func TestRouter_GetAirQuality_MissingParams(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/air-quality?lat=notanumber", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)

	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
	assert.Len(t, problem.Errors, 2)
}

func TestRouter_GetAirQuality_OutOfRange(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/air-quality?lat=91&lon=77.2", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)

	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
}

func TestRouter_GetAirQuality_NoData(t *testing.T) {
	router := newTestRouter(withSource(&stubStationSource{err: errors.New("upstream down")}))

	req := httptest.NewRequest(http.MethodGet, "/v1/air-quality?lat=28.63&lon=77.21", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)

	assert.Equal(t, models.ProblemTypeUnavailable, problem.Type)
	assert.Contains(t, problem.Detail, "retry")
}

func TestRouter_ListStations(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/air-quality/stations?lat=28.6315&lon=77.2167", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.StationsResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	require.Len(t, resp.Stations, 2)
	assert.Equal(t, "Mandir Marg, Delhi", resp.Stations[0].ID, "nearest station first")
	assert.True(t, resp.Stations[0].HasData)
}

func TestRouter_ListStations_InvalidLimit(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/air-quality/stations?lat=28.63&lon=77.21&limit=zero", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_CreateAdvisory(t *testing.T) {
	router := newTestRouter()

	input := models.AdvisoryRequest{
		Location: models.Point{Lat: 28.6315, Lon: 77.2167},
		Profile: advisory.HealthProfile{
			Age:         70,
			Respiratory: []advisory.ConditionCode{advisory.CondAsthma},
			Symptoms:    []advisory.SymptomCode{advisory.SymShortnessBreath},
		},
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/advisory", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.AdvisoryResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Equal(t, 320, resp.AirQuality.AQI)
	assert.Equal(t, advisory.RiskVeryHigh, resp.RiskLevel)
	assert.Equal(t, 67, resp.RiskScore)
	assert.NotEmpty(t, resp.Summary)
	assert.NotEmpty(t, resp.Actions)
	assert.Empty(t, resp.Insight, "insight omitted unless requested")
}

func TestRouter_CreateAdvisory_WithInsight(t *testing.T) {
	router := newTestRouter()

	input := models.AdvisoryRequest{
		Location:       models.Point{Lat: 28.6315, Lon: 77.2167},
		IncludeInsight: true,
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/advisory", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.AdvisoryResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Equal(t, insight.FallbackText, resp.Insight)
}

func TestRouter_CreateAdvisory_InvalidBody(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/v1/advisory", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRouter_CreateAdvisory_InvalidProfile(t *testing.T) {
	router := newTestRouter()

	input := models.AdvisoryRequest{
		Location: models.Point{Lat: 28.6315, Lon: 77.2167},
		Profile: advisory.HealthProfile{
			Age: 200,
		},
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/advisory", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)

	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "profile.age", problem.Errors[0].Field)
}

func TestRouter_RequestID_Generated(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	requestID := w.Header().Get("X-Request-Id")
	assert.NotEmpty(t, requestID)
	assert.Contains(t, requestID, "req_")
}

func TestRouter_RequestID_Preserved(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	req.Header.Set("X-Request-Id", "custom_request_id")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, "custom_request_id", w.Header().Get("X-Request-Id"))
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/nonexistent", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
