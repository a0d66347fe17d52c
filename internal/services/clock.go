package services

import "time"

// Clock abstracts "now" so time-sensitive derivations are deterministic in tests
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock returns the wall clock
func SystemClock() Clock {
	return systemClock{}
}

// FixedClock is a Clock pinned to a single instant
type FixedClock struct {
	Instant time.Time
}

func (c FixedClock) Now() time.Time {
	return c.Instant
}
