package advisory

import (
	"math"

	"github.com/clearsight/clearsight/internal/aqi"
)

// Level summary strings, one per risk level.
const (
	summaryLow      = "Air quality is acceptable for you. Enjoy your day!"
	summaryModerate = "Minor health risk. Sensitive individuals should be cautious."
	summaryHigh     = "Significant health risk. Limit outdoor exposure."
	summaryVeryHigh = "Dangerous conditions. Avoid outdoor activities."
	summarySevere   = "CRITICAL HEALTH RISK. Stay indoors and take protective measures immediately."
)

// AssessRisk scores the combination of a reading and a profile on a
// 0-100 scale. The pollution contribution is capped at 50 points; the
// profile scales it through an additive vulnerability multiplier. Pure
// and deterministic.
func AssessRisk(profile HealthProfile, reading *aqi.Reading) RiskAssessment {
	base := math.Min(float64(reading.AQI)/10, 50)

	multiplier := 1.0

	if profile.Age < 10 || profile.Age > 65 {
		multiplier += 0.2
	}
	if profile.Age < 5 || profile.Age > 75 {
		multiplier += 0.1
	}

	if len(profile.Respiratory) > 0 {
		multiplier += 0.4
	}
	if len(profile.Cardiovascular) > 0 {
		multiplier += 0.3
	}
	if profile.HasCondition(CondPregnant) {
		multiplier += 0.3
	}
	if profile.HasCondition(CondDiabetes) {
		multiplier += 0.1
	}

	if len(profile.Symptoms) > 0 {
		multiplier += 0.2
	}
	if profile.HasSymptom(SymShortnessBreath) || profile.HasSymptom(SymChestTightness) {
		multiplier += 0.3
	}

	score := math.Min(base*multiplier, 100)

	level, summary := classify(score)
	return RiskAssessment{
		Level:   level,
		Score:   int(math.Round(score)),
		Summary: summary,
	}
}

// classify maps a score to its level and summary. Upper bounds are
// exclusive.
func classify(score float64) (RiskLevel, string) {
	switch {
	case score < 20:
		return RiskLow, summaryLow
	case score < 40:
		return RiskModerate, summaryModerate
	case score < 60:
		return RiskHigh, summaryHigh
	case score < 80:
		return RiskVeryHigh, summaryVeryHigh
	default:
		return RiskSevere, summarySevere
	}
}
