package testutil

import (
	"sync"
	"time"
)

// DefaultEpoch is where a DeterministicClock starts unless told otherwise:
// 2025-03-01 09:00:00 UTC, a Saturday morning opening.
var DefaultEpoch = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

// DeterministicClock is a thread-safe stepping wall clock for tests.
//
// Every call to Now returns the current instant and then advances by Step,
// so consecutive store writes get distinct, predictable creation stamps.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu    sync.Mutex
	start time.Time
	now   time.Time
	step  time.Duration
}

// NewDeterministicClock creates a clock at DefaultEpoch stepping one second
// per reading.
func NewDeterministicClock() *DeterministicClock {
	return NewDeterministicClockAt(DefaultEpoch, time.Second)
}

// NewDeterministicClockAt creates a clock starting at start and advancing by
// step after each reading. A zero step freezes the clock.
func NewDeterministicClockAt(start time.Time, step time.Duration) *DeterministicClock {
	return &DeterministicClock{start: start, now: start, step: step}
}

// Now returns the current instant and advances the clock.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Peek returns the instant the next Now call will return.
func (c *DeterministicClock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t without changing the step.
func (c *DeterministicClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Reset returns the clock to its start instant.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.start
}
