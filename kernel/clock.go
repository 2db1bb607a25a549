package kernel

import "math"

// LogicalClock is a monotonic integer tick source. It starts at 0 and only
// moves when the driver calls Advance; it never reads wall time.
//
// Every successful Advance strictly increases the tick. Zero and negative
// steps are rejected rather than treated as no-ops.
type LogicalClock struct {
	tick int64
}

// NewLogicalClock creates a clock at tick 0.
func NewLogicalClock() *LogicalClock {
	return &LogicalClock{}
}

// Advance moves the clock forward by steps and returns the new tick.
// Fails with ErrInvalidArgument if steps < 1 or the tick would overflow;
// the clock is unchanged on failure.
func (c *LogicalClock) Advance(steps int64) (int64, error) {
	if steps < 1 {
		return c.tick, invalidArgument("clock step must be >= 1, got %d", steps)
	}
	if c.tick > math.MaxInt64-steps {
		return c.tick, invalidArgument("clock step %d overflows tick %d", steps, c.tick)
	}
	c.tick += steps
	return c.tick, nil
}

// Tick advances by exactly one step.
func (c *LogicalClock) Tick() int64 {
	// A single step only fails at MaxInt64, which no simulation reaches.
	t, _ := c.Advance(1)
	return t
}

// Now returns the current tick.
func (c *LogicalClock) Now() int64 {
	return c.tick
}
