package osc

// Centered is a sawtooth accumulator with phase in (-0.5, 0.5]. Its output is
// evaluated at the midpoint of each step and corrected by the fraction of the
// step that lies past the wrap point. It is the older of the two saw
// formulations and produces a slightly different spectrum than SawBox.
type Centered struct {
	Phase float64
}

// Tick advances by freq*dt and returns the corrected saw sample in [-1,1].
func (c *Centered) Tick(dt, freq float64) float64 {
	inc := freq * dt
	if inc <= minIncrement {
		c.Phase += inc
		if c.Phase > 0.5 {
			c.Phase -= 1
		}

		return 2 * c.Phase
	}

	if inc > 0.5 {
		inc = 0.5
	}

	out := c.Phase + 0.5*inc
	c.Phase += inc

	if c.Phase > 0.5 {
		out -= (c.Phase - 0.5) / inc
		c.Phase -= 1
	}

	return 2 * out
}
