// Package allpass implements first-order all-pass sections and a
// fixed-capacity cascade of them.
package allpass

import "math"

// MaxStages is the capacity of a Chain.
const MaxStages = 128

const (
	maxNormalizedFreq = 0.49
	// bias keeps long cascades out of the denormal range during silence.
	bias = 1e-12
)

// Coefficient returns the one-multiply all-pass coefficient for a
// break frequency given in cycles per sample. The analog section
// (1 - s/w)/(1 + s/w) with prewarped w = 2·tan(π·f) maps to
// (z^-1 - c)/(1 - c·z^-1) with c = -(w-2)/(w+2), which is what Tick runs.
func Coefficient(normFreq float64) float64 {
	if normFreq > maxNormalizedFreq {
		normFreq = maxNormalizedFreq
	}

	w := 2 * math.Tan(math.Pi*normFreq)

	return -(w - 2) / (w + 2)
}

// Tick runs one sample through the section whose single register is state.
func Tick(state *float64, in, c float64) float64 {
	out := *state
	in += c * out
	out -= c * in
	*state = in

	return out
}

// Chain is a cascade of up to MaxStages sections sharing one coefficient.
// The zero value has one stage.
type Chain struct {
	state  [MaxStages]float64
	stages int
}

// SetStages sets the number of active stages, clamped to [1, MaxStages].
// Stages that become inactive are cleared so they restart silent.
func (c *Chain) SetStages(n int) {
	n = max(1, min(MaxStages, n))
	for i := n; i < c.Stages(); i++ {
		c.state[i] = 0
	}

	c.stages = n
}

// Stages returns the number of active stages.
func (c *Chain) Stages() int {
	if c.stages == 0 {
		return 1
	}

	return c.stages
}

// ProcessSample runs x through every active stage.
func (c *Chain) ProcessSample(x, coeff float64) float64 {
	x += bias
	for i := range c.Stages() {
		x = Tick(&c.state[i], x, coeff)
	}

	return x
}

// ProcessBlock filters buf in place.
func (c *Chain) ProcessBlock(buf []float64, coeff float64) {
	for i, x := range buf {
		buf[i] = c.ProcessSample(x, coeff)
	}
}

// Reset clears all stages.
func (c *Chain) Reset() {
	c.state = [MaxStages]float64{}
}
