// Package clock abstracts the system clock so report periods, code
// year-rollover and OTP expiry can be pinned in tests. Production code
// injects Real(); tests inject Fake().
package clock

import "time"

// Clock supplies the current time. Every time read in the domain and
// service layers goes through a Clock instead of time.Now.
type Clock interface {
	Now() time.Time
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
