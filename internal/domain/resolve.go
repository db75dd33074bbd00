package domain

import "fmt"

// AQIMode selects where the AQI value comes from.
type AQIMode string

const (
	// AQIModeAuto uses the supplied index per hour and derives one from
	// particulate concentration for hours without it.
	AQIModeAuto AQIMode = "auto"
	// AQIModeIndex uses only the index supplied by the air-quality source.
	AQIModeIndex AQIMode = "index"
	// AQIModeConcentration ignores the supplied index and always derives the
	// AQI from PM2.5, falling back to PM10.
	AQIModeConcentration AQIMode = "concentration"
)

// ParseAQIMode validates a configured mode; empty selects AQIModeAuto.
func ParseAQIMode(s string) (AQIMode, error) {
	switch m := AQIMode(s); m {
	case "":
		return AQIModeAuto, nil
	case AQIModeAuto, AQIModeIndex, AQIModeConcentration:
		return m, nil
	default:
		return "", fmt.Errorf("unknown AQI mode %q (allowed: auto, index, concentration)", s)
	}
}

// AQISourceIndex marks an AQI taken from the source's own index series.
const AQISourceIndex = "index"

// AirQuality is the resolved AQI for a target slot.
type AirQuality struct {
	AQI      Float
	Category string
	Source   string // AQISourceIndex, "pm2_5", "pm10" or "" when absent
	Time     string // timestamp of the sample used, "" when absent
}

type aqiCandidate struct {
	value  Float
	source string
}

// ResolveAirQuality picks the AQI for slot from s. When the exact hour has no
// usable value it falls back to the nearest earlier hour, then the nearest
// later hour. Missing data degrades to an absent AQI with category "Unknown";
// it is never an error.
func ResolveAirQuality(s HourlySeries, slot TargetSlot, mode AQIMode) AirQuality {
	candidates := aqiCandidates(s, mode)
	i, ok := nearestValid(len(candidates), s.IndexOf(slot), func(i int) bool {
		return candidates[i].value.Valid()
	})
	if !ok {
		return AirQuality{AQI: None(), Category: CategoryUnknown}
	}

	c := candidates[i]
	category := ""
	if c.source == AQISourceIndex {
		category = labelAt(s.Category, i)
	}
	if category == "" {
		category = CategoryFor(c.value)
	}
	return AirQuality{
		AQI:      c.value,
		Category: category,
		Source:   c.source,
		Time:     timeAt(s.Times, i),
	}
}

// aqiCandidates computes the usable AQI per hour according to mode.
func aqiCandidates(s HourlySeries, mode AQIMode) []aqiCandidate {
	out := make([]aqiCandidate, len(s.Times))
	for i := range out {
		if mode != AQIModeConcentration {
			if v := at(s.AQI, i); v.Valid() {
				out[i] = aqiCandidate{value: v, source: AQISourceIndex}
				continue
			}
		}
		if mode == AQIModeIndex {
			continue
		}
		v, p := AQIFromConcentrations(at(s.PM25, i), at(s.PM10, i))
		out[i] = aqiCandidate{value: v, source: string(p)}
	}
	return out
}

// nearestValid returns idx when usable, otherwise scans backward from idx-1
// to 0 and then forward from idx+1 to n-1. idx may be -1 (slot not found), in
// which case only the forward scan from 0 runs.
func nearestValid(n, idx int, usable func(int) bool) (int, bool) {
	if idx >= 0 && idx < n && usable(idx) {
		return idx, true
	}
	for i := min(idx, n) - 1; i >= 0; i-- {
		if usable(i) {
			return i, true
		}
	}
	for i := idx + 1; i < n; i++ {
		if usable(i) {
			return i, true
		}
	}
	return 0, false
}
