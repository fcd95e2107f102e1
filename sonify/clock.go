package sonify

import "time"

// Clock schedules the engine's deferred continuations (fade-out teardown,
// mode-switch rebuild). Injected so tests can drive transitions without
// real delays.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending scheduled continuation
type Timer interface {
	Stop() bool
}

// SystemClock provides real wall-clock scheduling
type SystemClock struct{}

// NewSystemClock creates the default clock
func NewSystemClock() SystemClock {
	return SystemClock{}
}

// Now returns the current time with monotonic clock reading
func (SystemClock) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules f after d on the runtime timer heap
func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
