package aqi

import "math"

// maxIndex is the ceiling of the AQI scale. Concentrations above the top
// breakpoint map to this value rather than extrapolating.
const maxIndex = 500

// BandLimits holds the upper concentration bound of each AQI band for a
// single pollutant.
type BandLimits struct {
	Good         float64
	Satisfactory float64
	Moderate     float64
	Poor         float64
	VeryPoor     float64
	Severe       float64
}

// BreakpointTable maps each pollutant to its band limits.
type BreakpointTable map[Pollutant]BandLimits

// DefaultBreakpoints returns the Indian CPCB concentration breakpoints.
// Units are µg/m³ except CO (mg/m³).
func DefaultBreakpoints() BreakpointTable {
	return BreakpointTable{
		PM25: {Good: 30, Satisfactory: 60, Moderate: 90, Poor: 120, VeryPoor: 250, Severe: 380},
		PM10: {Good: 50, Satisfactory: 100, Moderate: 250, Poor: 350, VeryPoor: 430, Severe: 550},
		NO2:  {Good: 40, Satisfactory: 80, Moderate: 180, Poor: 280, VeryPoor: 400, Severe: 520},
		SO2:  {Good: 40, Satisfactory: 80, Moderate: 380, Poor: 800, VeryPoor: 1600, Severe: 2100},
		CO:   {Good: 1.0, Satisfactory: 2.0, Moderate: 10, Poor: 17, VeryPoor: 34, Severe: 46},
		O3:   {Good: 50, Satisfactory: 100, Moderate: 168, Poor: 208, VeryPoor: 748, Severe: 1000},
	}
}

// breakpoint is one piecewise-linear interpolation band.
type breakpoint struct {
	cLow, cHigh float64
	iLow, iHigh float64
}

// bands expands the band limits into interpolation breakpoints. Adjacent
// bands share their boundary concentration; the lower band wins on an
// exact boundary, so SubIndex at cHigh of band N returns iHigh of band N.
func (l BandLimits) bands() []breakpoint {
	return []breakpoint{
		{cLow: 0, cHigh: l.Good, iLow: 0, iHigh: 50},
		{cLow: l.Good, cHigh: l.Satisfactory, iLow: 51, iHigh: 100},
		{cLow: l.Satisfactory, cHigh: l.Moderate, iLow: 101, iHigh: 200},
		{cLow: l.Moderate, cHigh: l.Poor, iLow: 201, iHigh: 300},
		{cLow: l.Poor, cHigh: l.VeryPoor, iLow: 301, iHigh: 400},
		{cLow: l.VeryPoor, cHigh: l.Severe, iLow: 401, iHigh: 500},
	}
}

// Converter computes AQI sub-indices from pollutant concentrations.
type Converter struct {
	breakpoints BreakpointTable
}

// NewConverter creates a Converter over the given breakpoint table.
// A nil table uses the CPCB defaults.
func NewConverter(breakpoints BreakpointTable) *Converter {
	if breakpoints == nil {
		breakpoints = DefaultBreakpoints()
	}
	return &Converter{breakpoints: breakpoints}
}

// SubIndex maps a concentration to its AQI sub-index by linear
// interpolation within the matching band, rounded to the nearest integer.
// Concentrations above the Severe breakpoint return 500. Pollutants with
// no configured breakpoints return 0.
func (c *Converter) SubIndex(p Pollutant, concentration float64) int {
	limits, ok := c.breakpoints[p]
	if !ok {
		return 0
	}
	if concentration <= 0 {
		return 0
	}

	for _, bp := range limits.bands() {
		if concentration >= bp.cLow && concentration <= bp.cHigh {
			index := (bp.iHigh-bp.iLow)/(bp.cHigh-bp.cLow)*(concentration-bp.cLow) + bp.iLow
			return int(math.Round(index))
		}
	}

	return maxIndex
}

// OverallAQI returns the maximum sub-index across all present pollutants
// and the pollutant that produced it ("worst pollutant dominates"). Zero
// concentrations are treated as unmeasured. Returns (0, "") when no
// pollutant is present.
func (c *Converter) OverallAQI(readings Readings) (int, Pollutant) {
	overall := 0
	var dominant Pollutant

	for _, p := range AllPollutants {
		concentration, ok := readings[p]
		if !ok || concentration <= 0 {
			continue
		}
		if sub := c.SubIndex(p, concentration); sub > overall {
			overall = sub
			dominant = p
		}
	}

	return overall, dominant
}

// CategoryOf returns the AQI band for an index value.
func CategoryOf(aqi int) Category {
	switch {
	case aqi <= 50:
		return CategoryGood
	case aqi <= 100:
		return CategorySatisfactory
	case aqi <= 200:
		return CategoryModerate
	case aqi <= 300:
		return CategoryPoor
	case aqi <= 400:
		return CategoryVeryPoor
	default:
		return CategorySevere
	}
}
