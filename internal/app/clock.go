package app

import "time"

// Clock abstracts time so cycle tests can pin "today" deterministically.
// Quota and follow-up gating are calendar-date computations, so the engine
// runs on local time rather than UTC.
type Clock interface {
	Now() time.Time
}

// SystemClock uses the system time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
