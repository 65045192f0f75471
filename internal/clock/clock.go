// Package clock abstracts wall-clock reads so round transitions can be
// tested against fixed instants.
package clock

import "time"

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// System reads the real wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always returns the same instant. Advance moves it forward.
type Fixed struct {
	T time.Time
}

// NewFixed returns a Fixed clock anchored at t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{T: t}
}

func (c *Fixed) Now() time.Time { return c.T }

// Advance moves the clock forward by d.
func (c *Fixed) Advance(d time.Duration) {
	c.T = c.T.Add(d)
}

// Set moves the clock to t.
func (c *Fixed) Set(t time.Time) {
	c.T = t
}

// OrSystem returns c, or the system clock when c is nil.
func OrSystem(c Clock) Clock {
	if c == nil {
		return System{}
	}
	return c
}
