// Package advisory computes personalized health risk assessments and
// advisories from an air-quality reading and a user health profile.
package advisory

import "time"

// ConditionCode identifies a recognized health condition.
type ConditionCode string

// Respiratory conditions.
const (
	CondAsthma     ConditionCode = "asthma"
	CondBronchitis ConditionCode = "bronchitis"
	CondCOPD       ConditionCode = "copd"
	CondRhinitis   ConditionCode = "allergic-rhinitis"
)

// Cardiovascular conditions.
const (
	CondHeartDisease ConditionCode = "heart-disease"
	CondHypertension ConditionCode = "hypertension"
)

// Other conditions.
const (
	CondPregnant ConditionCode = "pregnant"
	CondDiabetes ConditionCode = "diabetes"
)

// SymptomCode identifies a recognized current symptom.
type SymptomCode string

const (
	SymCough            SymptomCode = "cough"
	SymThroatIrritation SymptomCode = "throat-irritation"
	SymShortnessBreath  SymptomCode = "shortness-breath"
	SymChestTightness   SymptomCode = "chest-tightness"
	SymEyeIrritation    SymptomCode = "eye-irritation"
	SymHeadache         SymptomCode = "headache"
)

// ActivityLevel describes the user's typical exertion.
type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "sedentary"
	ActivityModerate  ActivityLevel = "moderate"
	ActivityActive    ActivityLevel = "active"
)

var (
	respiratoryCodes = map[ConditionCode]bool{
		CondAsthma:     true,
		CondBronchitis: true,
		CondCOPD:       true,
		CondRhinitis:   true,
	}

	cardiovascularCodes = map[ConditionCode]bool{
		CondHeartDisease: true,
		CondHypertension: true,
	}

	otherCodes = map[ConditionCode]bool{
		CondPregnant: true,
		CondDiabetes: true,
	}

	symptomCodes = map[SymptomCode]bool{
		SymCough:            true,
		SymThroatIrritation: true,
		SymShortnessBreath:  true,
		SymChestTightness:   true,
		SymEyeIrritation:    true,
		SymHeadache:         true,
	}
)

// HealthProfile describes the person an advisory is generated for. The
// condition and symptom fields hold codes from the closed sets above;
// Normalize drops anything unrecognized.
type HealthProfile struct {
	Age    int    `json:"age"`
	Gender string `json:"gender,omitempty"`

	Respiratory    []ConditionCode `json:"respiratory,omitempty"`
	Cardiovascular []ConditionCode `json:"cardiovascular,omitempty"`
	Other          []ConditionCode `json:"other,omitempty"`
	Symptoms       []SymptomCode   `json:"symptoms,omitempty"`

	OutdoorHoursPerDay float64       `json:"outdoorHoursPerDay,omitempty"`
	ActivityLevel      ActivityLevel `json:"activityLevel,omitempty"`
}

// Normalize returns a copy of the profile with unrecognized condition
// and symptom codes removed. Unknown codes are dropped rather than
// rejected so stale clients degrade gracefully.
func (p HealthProfile) Normalize() HealthProfile {
	out := p
	out.Respiratory = filterConditions(p.Respiratory, respiratoryCodes)
	out.Cardiovascular = filterConditions(p.Cardiovascular, cardiovascularCodes)
	out.Other = filterConditions(p.Other, otherCodes)

	out.Symptoms = nil
	for _, s := range p.Symptoms {
		if symptomCodes[s] {
			out.Symptoms = append(out.Symptoms, s)
		}
	}
	return out
}

func filterConditions(codes []ConditionCode, allowed map[ConditionCode]bool) []ConditionCode {
	var out []ConditionCode
	for _, c := range codes {
		if allowed[c] {
			out = append(out, c)
		}
	}
	return out
}

// HasCondition reports whether the code appears in any condition list.
func (p HealthProfile) HasCondition(code ConditionCode) bool {
	for _, list := range [][]ConditionCode{p.Respiratory, p.Cardiovascular, p.Other} {
		for _, c := range list {
			if c == code {
				return true
			}
		}
	}
	return false
}

// HasSymptom reports whether the symptom is present.
func (p HealthProfile) HasSymptom(code SymptomCode) bool {
	for _, s := range p.Symptoms {
		if s == code {
			return true
		}
	}
	return false
}

// IsSensitiveGroup reports whether the person belongs to a pollution-
// sensitive group: children, the elderly, and pregnant people.
func (p HealthProfile) IsSensitiveGroup() bool {
	return p.Age < 15 || p.Age > 65 || p.HasCondition(CondPregnant)
}

// hasAnyHealthContext reports whether the profile carries any condition
// or symptom at all.
func (p HealthProfile) hasAnyHealthContext() bool {
	return len(p.Respiratory) > 0 || len(p.Cardiovascular) > 0 ||
		len(p.Other) > 0 || len(p.Symptoms) > 0
}

// RiskLevel is the categorical risk classification.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
	RiskVeryHigh RiskLevel = "Very High"
	RiskSevere   RiskLevel = "Severe"
)

// RiskAssessment is the scored outcome of combining a reading with a
// profile.
type RiskAssessment struct {
	Level   RiskLevel `json:"level"`
	Score   int       `json:"score"`
	Summary string    `json:"summary"`
}

// RecommendationType groups recommendations for presentation.
type RecommendationType string

const (
	RecActivity    RecommendationType = "activity"
	RecProtection  RecommendationType = "protection"
	RecEnvironment RecommendationType = "environment"
	RecHealth      RecommendationType = "health"
	RecRelief      RecommendationType = "relief"
	RecLifestyle   RecommendationType = "lifestyle"
)

// Recommendation is a single actionable suggestion.
type Recommendation struct {
	Type  RecommendationType `json:"type"`
	Icon  string             `json:"icon"`
	Title string             `json:"title"`
	Text  string             `json:"text"`
}

// Advisory is the full generated report.
type Advisory struct {
	RiskLevel       RiskLevel        `json:"riskLevel"`
	RiskScore       int              `json:"riskScore"`
	RiskSummary     string           `json:"riskSummary"`
	HealthImpacts   []string         `json:"healthImpacts"`
	Recommendations []Recommendation `json:"recommendations"`
	Warnings        []string         `json:"warnings"`
	ActivityPlan    string           `json:"activityPlan"`
	Insight         string           `json:"insight,omitempty"`
	GeneratedAt     time.Time        `json:"generatedAt"`
}

// TimeOfDay buckets the wall-clock hour for activity planning.
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
	Night     TimeOfDay = "night"
)

// TimeOfDayAt buckets an instant: morning 05-12, afternoon 12-17,
// evening 17-21, night otherwise.
func TimeOfDayAt(t time.Time) TimeOfDay {
	hour := t.Hour()
	switch {
	case hour >= 5 && hour < 12:
		return Morning
	case hour >= 12 && hour < 17:
		return Afternoon
	case hour >= 17 && hour < 21:
		return Evening
	default:
		return Night
	}
}
