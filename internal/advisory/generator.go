package advisory

import (
	"time"

	"github.com/clearsight/clearsight/internal/aqi"
)

// Generator builds advisories. It carries only the clock so that
// time-of-day dependent output is testable.
type Generator struct {
	now func() time.Time
}

// NewGenerator creates a Generator. A nil clock defaults to time.Now.
func NewGenerator(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now}
}

// Generate produces the full advisory for a profile and reading. Apart
// from GeneratedAt and the time-of-day used by the activity plan, the
// output is a pure function of its inputs.
func (g *Generator) Generate(profile HealthProfile, reading *aqi.Reading) Advisory {
	profile = profile.Normalize()
	risk := AssessRisk(profile, reading)
	now := g.now()

	return Advisory{
		RiskLevel:       risk.Level,
		RiskScore:       risk.Score,
		RiskSummary:     risk.Summary,
		HealthImpacts:   healthImpacts(profile, reading),
		Recommendations: recommendations(profile, reading, risk),
		Warnings:        warnings(profile, reading, risk),
		ActivityPlan:    activityPlan(reading, risk, TimeOfDayAt(now)),
		GeneratedAt:     now,
	}
}

// healthImpacts appends impact statements for each pollutant threshold
// the reading crosses, phrased for the profile. Check order is fixed:
// PM2.5, NO2, O3, then the cough correlation.
func healthImpacts(profile HealthProfile, reading *aqi.Reading) []string {
	impacts := []string{}

	if reading.Pollutants[aqi.PM25] > 60 {
		switch {
		case profile.HasCondition(CondAsthma):
			impacts = append(impacts, "High PM2.5 may trigger asthma attacks and respiratory inflammation.")
		case len(profile.Cardiovascular) > 0:
			impacts = append(impacts, "Fine particles can convert to bloodstream, increasing cardiac stress.")
		default:
			impacts = append(impacts, "Prolonged exposure to fine particles may cause throat irritation and coughing.")
		}
	}

	if reading.Pollutants[aqi.NO2] > 80 {
		if profile.HasCondition(CondAsthma) || profile.HasCondition(CondBronchitis) {
			impacts = append(impacts, "Elevated NO2 levels significantly aggravate bronchial symptoms.")
		}
	}

	if reading.Pollutants[aqi.O3] > 100 {
		impacts = append(impacts, "Ground-level ozone may cause chest pain, coughing, and throat irritation.")
	}

	if profile.HasSymptom(SymCough) && reading.AQI > 200 {
		impacts = append(impacts, "Current pollution levels are likely exacerbating your cough.")
	}

	return impacts
}

// recommendations evaluates the recommendation rules in order. Rules
// are independent except where noted.
func recommendations(profile HealthProfile, reading *aqi.Reading, risk RiskAssessment) []Recommendation {
	recs := []Recommendation{}

	switch risk.Level {
	case RiskSevere, RiskVeryHigh:
		recs = append(recs, Recommendation{
			Type:  RecActivity,
			Icon:  "🏠",
			Title: "Stay Indoors",
			Text:  "Strictly avoid outdoor activities. Keep windows and doors closed.",
		})
	case RiskHigh:
		recs = append(recs, Recommendation{
			Type:  RecActivity,
			Icon:  "🚶",
			Title: "Limit Exposure",
			Text:  "Reduce prolonged outdoor exertion. Take breaks if effective.",
		})
	}

	if reading.AQI > 150 || (risk.Level != RiskLow && profile.IsSensitiveGroup()) {
		recs = append(recs, Recommendation{
			Type:  RecProtection,
			Icon:  "😷",
			Title: "Wear N95/N99 Mask",
			Text:  "Cloth masks are ineffective against PM2.5. Use a fitted N95/N99 respirator if you must go out.",
		})
	}

	if reading.AQI > 200 {
		recs = append(recs, Recommendation{
			Type:  RecEnvironment,
			Icon:  "🌬️",
			Title: "Use Air Purifier",
			Text:  "Run HEPA air purifier on High/Turbo mode given current PM2.5 levels.",
		})
	}

	if len(profile.Respiratory) > 0 {
		recs = append(recs, Recommendation{
			Type:  RecHealth,
			Icon:  "💊",
			Title: "Medication Readiness",
			Text:  "Keep your rescue inhaler/medication accessible. Monitor peak flow if applicable.",
		})
	}

	if profile.HasSymptom(SymCough) || profile.HasSymptom(SymThroatIrritation) {
		recs = append(recs, Recommendation{
			Type:  RecRelief,
			Icon:  "💧",
			Title: "Hydration & Steam",
			Text:  "Stay hydrated to keep airways moist. Steam inhalation can help soothe throat irritation.",
		})
	}

	if !profile.hasAnyHealthContext() && risk.Level != RiskSevere && risk.Level != RiskVeryHigh {
		recs = append(recs, Recommendation{
			Type:  RecLifestyle,
			Icon:  "🥗",
			Title: "Maintain Immunity",
			Text:  "Healthy individuals should focus on antioxidant-rich diet and hydration to mitigate general pollution effects.",
		})

		if reading.AQI < 100 {
			recs = append(recs, Recommendation{
				Type:  RecActivity,
				Icon:  "🏃",
				Title: "Safe for Activity",
				Text:  "Great conditions for outdoor exercise! Enjoy the relatively clean air.",
			})
		}
	}

	return recs
}

// warnings emits urgent escalations; both rules are checked
// independently and may both fire.
func warnings(profile HealthProfile, reading *aqi.Reading, risk RiskAssessment) []string {
	out := []string{}

	if risk.Level == RiskSevere &&
		(profile.HasSymptom(SymShortnessBreath) || profile.HasSymptom(SymChestTightness)) {
		out = append(out, "URGENT: Your symptoms combined with severe AQI indicate high risk. Consult a doctor immediately if breathing becomes difficult.")
	}

	if len(profile.Cardiovascular) > 0 && reading.AQI > 300 {
		out = append(out, "Cardiac Alert: Extremely high pollution triggers inflammation. Avoid ALL physical exertion.")
	}

	return out
}

// activityPlan suggests a safe exercise window for the day.
func activityPlan(reading *aqi.Reading, risk RiskAssessment, timeOfDay TimeOfDay) string {
	switch risk.Level {
	case RiskSevere:
		return "No safe time for outdoor exercise today. Perform light indoor activities like yoga or stretching."
	case RiskVeryHigh:
		return "Avoid outdoor exercise. Walking is safe only with N95 mask for short duration (<30 mins)."
	}

	if timeOfDay == Morning && reading.AQI > 150 {
		return "AQI is often worst in early morning. Delay outdoor activities until afternoon (12 PM - 4 PM) when levels may drop."
	}
	return "Best time for ventilation or short walks is between 2 PM and 4 PM when PM levels are typically lowest."
}
