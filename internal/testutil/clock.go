package testutil

import (
	"sync"
	"time"
)

// Epoch is the first instant returned by a new StepClock.
var Epoch = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

// StepClock is a deterministic clock for tests.
//
// Every call to Now returns the previous value plus Step, starting at
// Epoch, so history timestamps are distinct, ordered and reproducible.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type StepClock struct {
	mu   sync.Mutex
	next time.Time
	Step time.Duration
}

// NewStepClock creates a clock starting at Epoch and advancing one
// second per call.
func NewStepClock() *StepClock {
	return &StepClock{next: Epoch, Step: time.Second}
}

// Now returns the current instant and advances the clock.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.next
	c.next = c.next.Add(c.Step)
	return now
}

// Reset rewinds the clock to Epoch.
func (c *StepClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next = Epoch
}

// FixedRunToken returns the same run token on every call.
//
// Thread-safety: FixedRunToken is stateless and safe for concurrent use.
type FixedRunToken string

// Generate returns the token, or "test-run-default" when it is empty.
func (t FixedRunToken) Generate() string {
	if t == "" {
		return "test-run-default"
	}
	return string(t)
}
