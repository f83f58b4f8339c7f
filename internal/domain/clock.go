package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock stamps run summaries and artifact names. Tests freeze it with SetClock.
var clock = clockwork.NewRealClock()

// SetClock replaces the run clock. nil restores the real clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now reads the run clock.
func Now() time.Time { return clock.Now() }
