package models

import (
	"github.com/clearsight/clearsight/internal/advisory"
)

// AdvisoryRequest is the payload for POST /v1/advisory.
type AdvisoryRequest struct {
	Location Point                  `json:"location"`
	Profile  advisory.HealthProfile `json:"profile"`

	// IncludeInsight requests the AI narrative in addition to the
	// rule-based advisory.
	IncludeInsight bool `json:"includeInsight,omitempty"`
}

// AdvisoryResponse is the payload for POST /v1/advisory.
type AdvisoryResponse struct {
	AirQuality AirQualityResponse        `json:"airQuality"`
	RiskLevel  advisory.RiskLevel        `json:"riskLevel"`
	RiskScore  int                       `json:"riskScore"`
	Summary    string                    `json:"summary"`
	Impacts    []string                  `json:"impacts"`
	Actions    []advisory.Recommendation `json:"actions"`
	Warnings   []string                  `json:"warnings"`
	DayPlan    string                    `json:"dayPlan"`
	Insight    string                    `json:"insight,omitempty"`
	Generated  Timestamp                 `json:"generatedAt"`
}

// NewAdvisoryResponse combines the air-quality and advisory results.
func NewAdvisoryResponse(air AirQualityResponse, adv advisory.Advisory) AdvisoryResponse {
	return AdvisoryResponse{
		AirQuality: air,
		RiskLevel:  adv.RiskLevel,
		RiskScore:  adv.RiskScore,
		Summary:    adv.RiskSummary,
		Impacts:    adv.HealthImpacts,
		Actions:    adv.Recommendations,
		Warnings:   adv.Warnings,
		DayPlan:    adv.ActivityPlan,
		Insight:    adv.Insight,
		Generated:  Timestamp(adv.GeneratedAt),
	}
}
