package nominatim

import "github.com/jonboulle/clockwork"

var clock clockwork.Clock = clockwork.NewRealClock()

// SetClock replaces the package clock, usually with a fake for tests.
// Passing nil restores the real clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
