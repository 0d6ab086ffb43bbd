// Package handler provides HTTP handlers for the ClearSight API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/clearsight/clearsight/internal/api/models"
	"github.com/clearsight/clearsight/internal/api/response"
	"github.com/clearsight/clearsight/internal/provider/resilience"
)

// readinessTimeout bounds each dependency probe.
const readinessTimeout = 2 * time.Second

// DependencyCheck probes a subsystem the service cannot run without.
type DependencyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// OpsHandlerConfig holds configuration for the OpsHandler.
type OpsHandlerConfig struct {
	Version   string
	BuildTime string

	// Registry reports external data-source health on /status. Optional.
	Registry *resilience.Registry

	// Checks are the readiness probes (database, cache). Optional.
	Checks []DependencyCheck
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
	checks    []DependencyCheck
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsHandlerConfig) *OpsHandler {
	return &OpsHandler{
		version:   cfg.Version,
		buildTime: cfg.BuildTime,
		registry:  cfg.Registry,
		checks:    cfg.Checks,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. Returns
// 503 when any dependency probe fails so the load balancer stops
// routing here.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	subsystems, allOK := h.probeSubsystems(r.Context())

	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	status := http.StatusOK
	if !allOK {
		health.Status = models.HealthStatusFail
		status = http.StatusServiceUnavailable
	}

	if len(subsystems) > 0 {
		health.Details = map[string]interface{}{
			"subsystems": subsystems,
		}
	}

	response.JSON(w, r, status, health)
}

// SystemStatus handles GET /v1/ops/status - subsystem and data-source
// status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	subsystems, allOK := h.probeSubsystems(r.Context())

	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Time:       models.Timestamp(time.Now()),
		Subsystems: subsystems,
		Sources:    h.sourceStatuses(),
	}

	if !allOK {
		status.Status = models.HealthStatusFail
	} else {
		for _, src := range status.Sources {
			if src.Status != models.HealthStatusOK {
				status.Status = models.HealthStatusDegraded
				break
			}
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

// probeSubsystems runs every dependency check and reports per-subsystem
// status. The second return is false when any probe failed.
func (h *OpsHandler) probeSubsystems(ctx context.Context) ([]models.SubsystemStatus, bool) {
	subsystems := make([]models.SubsystemStatus, 0, len(h.checks))
	allOK := true

	for _, check := range h.checks {
		probeCtx, cancel := context.WithTimeout(ctx, readinessTimeout)
		err := check.Check(probeCtx)
		cancel()

		status := models.SubsystemStatus{
			Name:   check.Name,
			Status: models.HealthStatusOK,
		}
		if err != nil {
			allOK = false
			status.Status = models.HealthStatusFail
			detail := err.Error()
			status.Detail = &detail
		}

		subsystems = append(subsystems, status)
	}

	return subsystems, allOK
}

// sourceStatuses maps circuit-breaker health onto the API shape.
func (h *OpsHandler) sourceStatuses() []models.SourceStatus {
	if h.registry == nil {
		return []models.SourceStatus{}
	}

	all := h.registry.GetAllHealth()
	statuses := make([]models.SourceStatus, 0, len(all))

	for _, health := range all {
		status := models.SourceStatus{
			Source: health.Name,
			Status: models.HealthStatusOK,
		}

		switch {
		case health.IsUnhealthy():
			status.Status = models.HealthStatusFail
		case health.IsDegraded():
			status.Status = models.HealthStatusDegraded
		}

		if health.LastSuccessAt != nil {
			ts := models.Timestamp(*health.LastSuccessAt)
			status.LastSuccessAt = &ts
		}
		if health.LastFailureAt != nil {
			ts := models.Timestamp(*health.LastFailureAt)
			status.LastFailureAt = &ts
		}
		if health.LastError != "" {
			msg := health.LastError
			status.Message = &msg
		}

		statuses = append(statuses, status)
	}

	return statuses
}
