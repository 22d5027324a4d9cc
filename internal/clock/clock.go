// Package clock holds the simulated day counter that timestamps streak and
// goal state. It is advanced explicitly and never follows wall-clock time.
package clock

// Clock is a monotonically advancing day counter. It is not safe for
// concurrent use; callers serialise access.
type Clock struct {
	day int
}

// New returns a Clock positioned at day. Negative values start at 0.
func New(day int) *Clock {
	if day < 0 {
		day = 0
	}
	return &Clock{day: day}
}

// Now returns the current simulated day.
func (c *Clock) Now() int {
	return c.day
}

// Advance moves the clock forward one day and returns the new day.
func (c *Clock) Advance() int {
	c.day++
	return c.day
}

// Reset rewinds the clock to day 0.
func (c *Clock) Reset() {
	c.day = 0
}
