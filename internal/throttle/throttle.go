// Package throttle rate-limits notifications.
package throttle

import "time"

// Throttle remembers when the last notification went out. The zero value
// has never fired. It is not safe for concurrent use.
type Throttle struct {
	last time.Time
}

// New returns a Throttle whose clock starts at start. Passing the current
// time suppresses throttled alerts for one timeout after startup; passing
// the zero time allows the first alert immediately.
func New(start time.Time) *Throttle {
	return &Throttle{last: start}
}

// Allow reports whether at least timeout has passed since the last mark.
// A timeout of zero or less always allows.
func (t *Throttle) Allow(now time.Time, timeout time.Duration) bool {
	if timeout <= 0 {
		return true
	}
	return now.Sub(t.last) >= timeout
}

// Mark records a notification at now.
func (t *Throttle) Mark(now time.Time) {
	t.last = now
}

// Try marks and returns true when Allow does.
func (t *Throttle) Try(now time.Time, timeout time.Duration) bool {
	if !t.Allow(now, timeout) {
		return false
	}
	t.Mark(now)
	return true
}

// Last returns the time of the last mark.
func (t *Throttle) Last() time.Time {
	return t.last
}
