package domain

import "time"

// Location is the place a forecast is fetched for.
type Location struct {
	Name     string         `json:"name,omitempty"`
	Lat      float64        `json:"lat"`
	Lon      float64        `json:"lon"`
	TimeZone *time.Location `json:"-"`
}

// HasCoords reports whether coordinates are set.
func (l Location) HasCoords() bool { return l.Lat != 0 || l.Lon != 0 }

// Zone returns the configured time zone, defaulting to UTC.
func (l Location) Zone() *time.Location {
	if l.TimeZone == nil {
		return time.UTC
	}
	return l.TimeZone
}

// Reading holds the scalar inputs the verdict is derived from.
type Reading struct {
	Temperature Float  `json:"temperature_c"`
	Humidity    Float  `json:"humidity_pct"`
	WindKmh     Float  `json:"wind_kmh"`
	AQI         Float  `json:"aqi"`
	Category    string `json:"aqi_category"`
	AQISource   string `json:"aqi_source,omitempty"`
	AQITime     string `json:"aqi_time,omitempty"`
}

// msToKmh converts wind speed from m/s to km/h.
func msToKmh(v float64) float64 { return v * 3.6 }

// ResolveReading flattens the weather and air-quality series at slot.
// Weather values are taken from the exact hour only; the AQI uses the
// nearest-hour fallback of ResolveAirQuality.
func ResolveReading(weather, air HourlySeries, slot TargetSlot, mode AQIMode) Reading {
	idx := weather.IndexOf(slot)
	aq := ResolveAirQuality(air, slot, mode)
	return Reading{
		Temperature: at(weather.Temperature, idx),
		Humidity:    at(weather.Humidity, idx),
		WindKmh:     at(weather.WindSpeed, idx).Map(msToKmh),
		AQI:         aq.AQI,
		Category:    aq.Category,
		AQISource:   aq.Source,
		AQITime:     aq.Time,
	}
}

// Notification is a single push message.
type Notification struct {
	RunID   string `json:"run_id"`
	Topic   string `json:"topic"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Icon    Icon   `json:"icon"`
}

// Report is the outcome of one advisory run.
type Report struct {
	RunID   string     `json:"run_id"`
	OK      bool       `json:"ok"`
	Slot    TargetSlot `json:"slot"`
	Message string     `json:"message,omitempty"`
	Reading Reading    `json:"reading"`
	Verdict *Verdict   `json:"verdict,omitempty"`
	Error   string     `json:"error,omitempty"`
}
