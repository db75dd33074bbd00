package domain

import (
	"fmt"
	"strings"
)

// HourlySeries is an hourly forecast keyed by local timestamp strings
// (e.g. "2024-04-26T06:00"). Parallel series are either nil (not supplied by
// the source) or exactly as long as Times.
type HourlySeries struct {
	Times []string `json:"time"`

	Temperature []Float `json:"temperature_c,omitempty"`
	Humidity    []Float `json:"humidity_pct,omitempty"`
	WindSpeed   []Float `json:"wind_speed_ms,omitempty"`

	PM25     []Float  `json:"pm2_5,omitempty"`
	PM10     []Float  `json:"pm10,omitempty"`
	AQI      []Float  `json:"us_aqi,omitempty"`
	Category []string `json:"category,omitempty"` // "" marks a missing label
}

// Validate checks that every supplied series is index-aligned with Times.
func (s HourlySeries) Validate() error {
	n := len(s.Times)
	floats := []struct {
		name   string
		values []Float
	}{
		{"temperature", s.Temperature},
		{"humidity", s.Humidity},
		{"wind_speed", s.WindSpeed},
		{"pm2_5", s.PM25},
		{"pm10", s.PM10},
		{"us_aqi", s.AQI},
	}
	for _, f := range floats {
		if f.values != nil && len(f.values) != n {
			return fmt.Errorf("series %s has %d samples, want %d", f.name, len(f.values), n)
		}
	}
	if s.Category != nil && len(s.Category) != n {
		return fmt.Errorf("series category has %d samples, want %d", len(s.Category), n)
	}
	return nil
}

// IndexOf returns the first index whose timestamp starts with the slot's
// date+hour prefix, or -1 when the slot is not in the series.
func (s HourlySeries) IndexOf(slot TargetSlot) int {
	prefix := slot.Prefix()
	for i, t := range s.Times {
		if strings.HasPrefix(t, prefix) {
			return i
		}
	}
	return -1
}

// at returns values[i], or absent when i is out of range.
func at(values []Float, i int) Float {
	if i < 0 || i >= len(values) {
		return None()
	}
	return values[i]
}

// labelAt returns labels[i] verbatim, or "" when out of range or blank.
func labelAt(labels []string, i int) string {
	if i < 0 || i >= len(labels) || strings.TrimSpace(labels[i]) == "" {
		return ""
	}
	return labels[i]
}

func timeAt(times []string, i int) string {
	if i < 0 || i >= len(times) {
		return ""
	}
	return times[i]
}
