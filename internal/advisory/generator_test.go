package advisory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearsight/clearsight/internal/advisory"
	"github.com/clearsight/clearsight/internal/aqi"
)

func fixedClock(hour int) func() time.Time {
	return func() time.Time {
		return time.Date(2024, 12, 2, hour, 30, 0, 0, time.Local)
	}
}

func pollutedReading(value int, pollutants aqi.Readings) *aqi.Reading {
	return &aqi.Reading{
		AQI:        value,
		Category:   aqi.CategoryOf(value),
		Pollutants: aqi.NormalizedPollutants(pollutants),
	}
}

func recommendationTitles(recs []advisory.Recommendation) []string {
	titles := make([]string, 0, len(recs))
	for _, r := range recs {
		titles = append(titles, r.Title)
	}
	return titles
}

func TestGenerate_HealthyProfileModerateAir(t *testing.T) {
	gen := advisory.NewGenerator(fixedClock(14))
	profile := advisory.HealthProfile{Age: 30}

	adv := gen.Generate(profile, pollutedReading(80, aqi.Readings{aqi.PM25: 40}))

	assert.Equal(t, advisory.RiskLow, adv.RiskLevel)
	assert.Empty(t, adv.HealthImpacts)
	assert.Empty(t, adv.Warnings)

	titles := recommendationTitles(adv.Recommendations)
	assert.Contains(t, titles, "Maintain Immunity")
	assert.Contains(t, titles, "Safe for Activity")
	assert.NotContains(t, titles, "Wear N95/N99 Mask")
	assert.NotContains(t, titles, "Medication Readiness")
}

func TestGenerate_SevereProfileAndAir(t *testing.T) {
	gen := advisory.NewGenerator(fixedClock(14))
	profile := advisory.HealthProfile{
		Age:            80,
		Respiratory:    []advisory.ConditionCode{advisory.CondAsthma},
		Cardiovascular: []advisory.ConditionCode{advisory.CondHeartDisease},
		Symptoms:       []advisory.SymptomCode{advisory.SymShortnessBreath},
	}
	reading := pollutedReading(402, aqi.Readings{aqi.PM25: 250, aqi.PM10: 430, aqi.NO2: 90})

	adv := gen.Generate(profile, reading)

	assert.Equal(t, advisory.RiskSevere, adv.RiskLevel)
	assert.Equal(t, 100, adv.RiskScore)

	require.Len(t, adv.Warnings, 2, "urgent escalation and cardiac alert fire independently")
	assert.Contains(t, adv.Warnings[0], "URGENT")
	assert.Contains(t, adv.Warnings[1], "Cardiac Alert")

	// asthma phrasing wins over the cardiovascular one for PM2.5
	require.NotEmpty(t, adv.HealthImpacts)
	assert.Contains(t, adv.HealthImpacts[0], "asthma attacks")
	assert.Contains(t, adv.HealthImpacts, "Elevated NO2 levels significantly aggravate bronchial symptoms.")

	titles := recommendationTitles(adv.Recommendations)
	assert.Equal(t, "Stay Indoors", titles[0])
	assert.Contains(t, titles, "Wear N95/N99 Mask")
	assert.Contains(t, titles, "Use Air Purifier")
	assert.Contains(t, titles, "Medication Readiness")
	assert.NotContains(t, titles, "Maintain Immunity")

	assert.Contains(t, adv.ActivityPlan, "No safe time for outdoor exercise")
}

func TestGenerate_CardiovascularPhrasingWithoutAsthma(t *testing.T) {
	gen := advisory.NewGenerator(fixedClock(14))
	profile := advisory.HealthProfile{
		Age:            50,
		Cardiovascular: []advisory.ConditionCode{advisory.CondHypertension},
	}

	adv := gen.Generate(profile, pollutedReading(180, aqi.Readings{aqi.PM25: 110}))

	require.NotEmpty(t, adv.HealthImpacts)
	assert.Contains(t, adv.HealthImpacts[0], "cardiac stress")
}

func TestGenerate_CoughCorrelationNeedsHighAQI(t *testing.T) {
	gen := advisory.NewGenerator(fixedClock(14))
	profile := advisory.HealthProfile{
		Age:      30,
		Symptoms: []advisory.SymptomCode{advisory.SymCough},
	}

	low := gen.Generate(profile, pollutedReading(180, aqi.Readings{}))
	high := gen.Generate(profile, pollutedReading(220, aqi.Readings{}))

	assert.NotContains(t, low.HealthImpacts, "Current pollution levels are likely exacerbating your cough.")
	assert.Contains(t, high.HealthImpacts, "Current pollution levels are likely exacerbating your cough.")

	assert.Contains(t, recommendationTitles(high.Recommendations), "Hydration & Steam")
}

func TestGenerate_SensitiveGroupGetsMaskBelowThreshold(t *testing.T) {
	gen := advisory.NewGenerator(fixedClock(14))

	// AQI 140 is under the unconditional mask threshold; a pregnant
	// profile with non-Low risk still gets the mask recommendation.
	profile := advisory.HealthProfile{
		Age:      30,
		Other:    []advisory.ConditionCode{advisory.CondPregnant},
		Symptoms: []advisory.SymptomCode{advisory.SymCough},
	}

	adv := gen.Generate(profile, pollutedReading(140, aqi.Readings{}))

	require.NotEqual(t, advisory.RiskLow, adv.RiskLevel)
	assert.Contains(t, recommendationTitles(adv.Recommendations), "Wear N95/N99 Mask")
}

func TestGenerate_MorningSmogDelaysActivity(t *testing.T) {
	profile := advisory.HealthProfile{Age: 30}
	reading := pollutedReading(180, aqi.Readings{})

	morning := advisory.NewGenerator(fixedClock(7)).Generate(profile, reading)
	afternoon := advisory.NewGenerator(fixedClock(14)).Generate(profile, reading)

	assert.Contains(t, morning.ActivityPlan, "Delay outdoor activities until afternoon")
	assert.Contains(t, afternoon.ActivityPlan, "between 2 PM and 4 PM")
}

func TestGenerate_UnknownCodesAreDropped(t *testing.T) {
	gen := advisory.NewGenerator(fixedClock(14))
	profile := advisory.HealthProfile{
		Age:         30,
		Respiratory: []advisory.ConditionCode{"totally-made-up"},
		Symptoms:    []advisory.SymptomCode{"vibes"},
	}

	adv := gen.Generate(profile, pollutedReading(80, aqi.Readings{}))

	clean := gen.Generate(advisory.HealthProfile{Age: 30}, pollutedReading(80, aqi.Readings{}))
	assert.Equal(t, clean.RiskScore, adv.RiskScore, "unrecognized codes must not affect scoring")
	assert.Contains(t, recommendationTitles(adv.Recommendations), "Maintain Immunity")
}

func TestGenerate_Idempotent(t *testing.T) {
	gen := advisory.NewGenerator(fixedClock(14))
	profile := advisory.HealthProfile{
		Age:         70,
		Respiratory: []advisory.ConditionCode{advisory.CondAsthma},
	}
	reading := pollutedReading(320, aqi.Readings{aqi.PM25: 200})

	first := gen.Generate(profile, reading)
	second := gen.Generate(profile, reading)

	assert.Equal(t, first, second)
}

func TestTimeOfDayAt(t *testing.T) {
	tests := []struct {
		hour int
		want advisory.TimeOfDay
	}{
		{4, advisory.Night},
		{5, advisory.Morning},
		{11, advisory.Morning},
		{12, advisory.Afternoon},
		{16, advisory.Afternoon},
		{17, advisory.Evening},
		{20, advisory.Evening},
		{21, advisory.Night},
		{0, advisory.Night},
	}

	for _, tt := range tests {
		at := time.Date(2024, 12, 2, tt.hour, 0, 0, 0, time.UTC)
		assert.Equal(t, tt.want, advisory.TimeOfDayAt(at), "hour %d", tt.hour)
	}
}
