package engine

import "time"

// Clock supplies history timestamps. Tests substitute a deterministic
// implementation (testutil.StepClock).
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now returns the current time in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
