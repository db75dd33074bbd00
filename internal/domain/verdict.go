package domain

import "encoding/json"

// Icon is the severity marker shown at the start of a notification.
type Icon int

const (
	IconSafe Icon = iota
	IconModerate
	IconSevere
)

// Verdict texts.
const (
	TextSafe       = "Safe to run"
	TextCaution    = "Caution"
	TextIndoorOnly = "Indoor only"
)

// Decision thresholds.
const (
	aqiSevere    = 101
	aqiModerate  = 51
	tempSevere   = 32
	tempModerate = 28
	rhModerate   = 75
)

// Verdict is the running recommendation for one reading.
type Verdict struct {
	Icon Icon   `json:"icon"`
	Text string `json:"text"`
}

// Classify applies the decision table for an asthmatic runner. Rules are
// evaluated in order and the first match wins:
//
//  1. AQI >= 101                          -> severe, "Indoor only"
//  2. AQI in [51,100] and temp >= 32      -> severe, "Indoor only"
//     AQI in [51,100]                     -> moderate, "Caution"
//  3. temp >= 32                          -> severe, "Indoor only"
//  4. temp >= 28 or humidity >= 75        -> moderate, "Caution"
//  5. otherwise                           -> safe, "Safe to run"
//
// Absent inputs never satisfy a threshold. windKmh does not affect the
// outcome yet; it is part of the signature so callers pass the full reading.
func Classify(tempC, rh, windKmh, aqi Float) Verdict {
	switch {
	case aqi.AtLeast(aqiSevere):
		return Verdict{Icon: IconSevere, Text: TextIndoorOnly}
	case aqi.AtLeast(aqiModerate):
		if tempC.AtLeast(tempSevere) {
			return Verdict{Icon: IconSevere, Text: TextIndoorOnly}
		}
		return Verdict{Icon: IconModerate, Text: TextCaution}
	case tempC.AtLeast(tempSevere):
		return Verdict{Icon: IconSevere, Text: TextIndoorOnly}
	case tempC.AtLeast(tempModerate), rh.AtLeast(rhModerate):
		return Verdict{Icon: IconModerate, Text: TextCaution}
	default:
		return Verdict{Icon: IconSafe, Text: TextSafe}
	}
}

// ClassifyReading is Classify over a resolved reading.
func ClassifyReading(r Reading) Verdict {
	return Classify(r.Temperature, r.Humidity, r.WindKmh, r.AQI)
}

// Emoji returns the marker used in notification text.
func (i Icon) Emoji() string {
	switch i {
	case IconSevere:
		return "🔴"
	case IconModerate:
		return "🟡"
	default:
		return "🟢"
	}
}

func (i Icon) String() string {
	switch i {
	case IconSevere:
		return "severe"
	case IconModerate:
		return "moderate"
	default:
		return "safe"
	}
}

// MarshalJSON encodes the icon by name.
func (i Icon) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.String())
}
