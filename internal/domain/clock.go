package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is a package-level time source so tests can freeze time via SetClock.
// Production code uses the real clock; tests and the replay tool inject a fake.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source used to derive the target slot. Pass nil to
// reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// CurrentSlot returns the target slot for the current wall-clock time in loc.
func CurrentSlot(loc *time.Location) TargetSlot {
	return SlotAt(clock.Now(), loc)
}
