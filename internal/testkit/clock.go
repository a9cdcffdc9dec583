package testkit

import "time"

// FakeClock is a manually advanced ports.Clock so engine tests can pin
// elapsed time (and with it, timeout behavior) exactly.
type FakeClock struct {
	now time.Time
}

// NewFakeClock starts at a fixed instant.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *FakeClock) Now() time.Time { return c.now }

// Advance moves the clock forward.
func (c *FakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
