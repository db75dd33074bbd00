package domain

import (
	"fmt"
	"time"
)

// TargetSlot is the hourly forecast point a verdict is evaluated for.
type TargetSlot struct {
	Time time.Time `json:"time"`
}

// SlotAt truncates t to the hour in loc. A run triggered at 06:10 local time
// evaluates the 06:00 forecast.
//
// time.Truncate works on absolute time and would misplace the hour in zones
// with a non-whole-hour offset, so the slot is rebuilt from local fields.
func SlotAt(t time.Time, loc *time.Location) TargetSlot {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return TargetSlot{
		Time: time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, loc),
	}
}

// WithHour moves the slot to hour h on the same local date.
func (s TargetSlot) WithHour(h int) TargetSlot {
	t := s.Time
	return TargetSlot{Time: time.Date(t.Year(), t.Month(), t.Day(), h, 0, 0, 0, t.Location())}
}

// Date returns the local date as YYYY-MM-DD.
func (s TargetSlot) Date() string { return s.Time.Format(time.DateOnly) }

// Hour returns the local hour.
func (s TargetSlot) Hour() int { return s.Time.Hour() }

// Prefix is the timestamp prefix matched against forecast series, e.g.
// "2024-04-26T06".
func (s TargetSlot) Prefix() string {
	return fmt.Sprintf("%sT%02d", s.Date(), s.Hour())
}

// Label is the short local time shown in notifications, e.g. "06:00".
func (s TargetSlot) Label() string { return s.Time.Format("15:04") }
