package domain

import "github.com/jonboulle/clockwork"

// clock supplies the ProcessedAt stamp on flattened events. Package-level so
// tests can freeze it with SetClock and assert exact timestamps.
var clock = clockwork.NewRealClock()

// SetClock replaces the time source used by FlattenFeature. A nil clock
// restores real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
