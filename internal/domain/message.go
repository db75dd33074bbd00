package domain

import (
	"fmt"
	"strings"
)

// MessageFormat controls presentation of the notification text. It does not
// affect classification.
type MessageFormat struct {
	Greeting string // optional lead-in, e.g. "Morning Sam"
	Location string // place label; omitted when empty
}

// Format renders a one-line notification, e.g.
//
//	🟡 Caution | Seoul 06:00 | 30.0°C RH 50% wind 36.0km/h | AQI 40 (Good)
//
// Absent readings render as "NA".
func (f MessageFormat) Format(slot TargetSlot, r Reading, v Verdict) string {
	var b strings.Builder
	if g := strings.TrimSpace(f.Greeting); g != "" {
		b.WriteString(g)
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "%s %s | ", v.Icon.Emoji(), v.Text)
	if loc := strings.TrimSpace(f.Location); loc != "" {
		b.WriteString(loc)
		b.WriteByte(' ')
	}
	b.WriteString(slot.Label())
	fmt.Fprintf(&b, " | %s°C RH %s%% wind %skm/h | AQI %s (%s)",
		r.Temperature.Format(1),
		r.Humidity.Format(0),
		r.WindKmh.Format(1),
		r.AQI.Format(0),
		r.Category,
	)
	return b.String()
}

// Title is the notification title for slot.
func (f MessageFormat) Title(slot TargetSlot) string {
	return fmt.Sprintf("Run check %s %s", slot.Date(), slot.Label())
}
