package mealclock

import "time"

// Clock supplies the current instant. The production implementation reads the
// wall clock in the institute's timezone; tests substitute a fixed instant so
// cutoff decisions are deterministic.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in a fixed location, independent of the
// host's timezone.
type SystemClock struct {
	loc *time.Location
}

// NewSystemClock loads the named IANA zone.
func NewSystemClock(zone string) (*SystemClock, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, err
	}
	return &SystemClock{loc: loc}, nil
}

// Now returns the current instant in the configured zone.
func (c *SystemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

type fixedClock struct {
	at time.Time
}

// NewFixedClock returns a Clock pinned at the given instant, for tests.
func NewFixedClock(at time.Time) Clock {
	return fixedClock{at: at}
}

func (c fixedClock) Now() time.Time { return c.at }
