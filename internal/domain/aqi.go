package domain

import "math"

// Pollutant identifies a particulate series an AQI can be derived from.
type Pollutant string

const (
	PollutantPM25 Pollutant = "pm2_5"
	PollutantPM10 Pollutant = "pm10"
)

// AQI category labels (US EPA).
const (
	CategoryGood          = "Good"
	CategoryModerate      = "Moderate"
	CategorySensitive     = "Unhealthy for Sensitive Groups"
	CategoryUnhealthy     = "Unhealthy"
	CategoryVeryUnhealthy = "Very Unhealthy"
	CategoryHazardous     = "Hazardous"
	CategoryUnknown       = "Unknown"
)

const maxAQI = 500

// breakpoint maps the concentration range [cLow, cHigh] (µg/m³) onto the
// index range [iLow, iHigh].
type breakpoint struct {
	cLow, cHigh float64
	iLow, iHigh float64
}

var pm25Breakpoints = []breakpoint{
	{0, 12.0, 0, 50},
	{12.1, 35.4, 51, 100},
	{35.5, 55.4, 101, 150},
	{55.5, 150.4, 151, 200},
	{150.5, 250.4, 201, 300},
	{250.5, 350.4, 301, 400},
	{350.5, 500.4, 401, 500},
}

var pm10Breakpoints = []breakpoint{
	{0, 54, 0, 50},
	{55, 154, 51, 100},
	{155, 254, 101, 150},
	{255, 354, 151, 200},
	{355, 424, 201, 300},
	{425, 504, 301, 400},
	{505, 604, 401, 500},
}

func breakpointsFor(p Pollutant) []breakpoint {
	switch p {
	case PollutantPM25:
		return pm25Breakpoints
	case PollutantPM10:
		return pm10Breakpoints
	default:
		return nil
	}
}

// ComputeAQI converts a pollutant concentration to the US AQI by linear
// interpolation within its EPA breakpoint range:
//
//	I = round((Ih - Il) / (Ch - Cl) * (C - Cl) + Il)
//
// Concentrations above the table saturate at 500. Values that fall in the gap
// between two published ranges (e.g. PM2.5 12.05) take the lower index of the
// next range. Negative or absent concentrations yield an absent AQI.
func ComputeAQI(p Pollutant, concentration Float) Float {
	c, ok := concentration.Get()
	if !ok || c < 0 {
		return None()
	}
	table := breakpointsFor(p)
	if table == nil {
		return None()
	}
	for _, bp := range table {
		if c > bp.cHigh {
			continue
		}
		if c < bp.cLow {
			c = bp.cLow
		}
		return Some(math.Round((bp.iHigh-bp.iLow)/(bp.cHigh-bp.cLow)*(c-bp.cLow) + bp.iLow))
	}
	return Some(maxAQI)
}

// AQIFromConcentrations derives the AQI from PM2.5, falling back to PM10 only
// when PM2.5 yields nothing. The returned pollutant is empty when neither
// concentration is usable.
func AQIFromConcentrations(pm25, pm10 Float) (Float, Pollutant) {
	if aqi := ComputeAQI(PollutantPM25, pm25); aqi.Valid() {
		return aqi, PollutantPM25
	}
	if aqi := ComputeAQI(PollutantPM10, pm10); aqi.Valid() {
		return aqi, PollutantPM10
	}
	return None(), ""
}

// CategoryFor maps a numeric AQI onto its EPA category label.
func CategoryFor(aqi Float) string {
	v, ok := aqi.Get()
	switch {
	case !ok:
		return CategoryUnknown
	case v <= 50:
		return CategoryGood
	case v <= 100:
		return CategoryModerate
	case v <= 150:
		return CategorySensitive
	case v <= 200:
		return CategoryUnhealthy
	case v <= 300:
		return CategoryVeryUnhealthy
	default:
		return CategoryHazardous
	}
}
