package crawler

import "time"

// Clock is the time source used for the crawl deadline.
// Tests inject a controllable clock to make deadline behavior deterministic.
type Clock interface {
	Now() time.Time
}

// systemClock reads the wall clock.
type systemClock struct{}

// Now returns time.Now().
func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock {
	return systemClock{}
}
