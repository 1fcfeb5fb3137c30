package ladder

import (
	"math"

	"github.com/cwbudde/algo-mjack/dsp/core"
)

const shapeEpsilon = 1e-20

// State holds the three integrator registers and the half-sample history of
// the input and output. The zero value is a silent filter.
type State struct {
	Z0, Z1, Z2    float64
	OldIn, OldOut float64
}

// Coefficient returns the one-pole smoothing factor 2π·freq·dt, clamped to 1.
func Coefficient(dt, freq float64) float64 {
	return math.Min(1, dt*2*math.Pi*freq)
}

// Tick runs the explicit saturating ladder for one sample. fb is the
// resonance feedback gain (self-oscillation starts near 8 for three stages)
// and clip the level at which the feedback path saturates. The input and
// output are averaged with the previous sample, which centres the filter's
// group delay on the sample grid.
func (s *State) Tick(dt, freq, fb, clip, in float64) float64 {
	k := Coefficient(dt, freq)

	lp := 0.5*(in+s.OldIn) - math.Tanh(s.Z2*fb/clip)*clip
	s.OldIn = in

	s.Z0 += math.Tanh(lp-s.Z0) * k
	s.Z1 += math.Tanh(s.Z0-s.Z1) * k

	old := s.Z2
	s.Z2 += math.Tanh(s.Z1-s.Z2) * k
	s.OldOut = 0.5 * (old + s.Z2)

	return s.OldOut
}

// TickNonlinear runs the implicit ladder for one sample and returns z2.
//
// Each stage is z' = k·sg(u)·u with sg(u) = tanh(u)/u taken at the start of
// the step. With trapezoidal integration every increment depends on half of
// the previous stage's increment:
//
//	Δz0 = c0 + k0/2·(Δin - fb·Δz2)
//	Δz1 = c1 + k1/2·Δz0
//	Δz2 = c2 + k2/2·Δz1
//
// Substituting Δz2 into Δz0 leaves one linear equation in Δz0, solved
// directly; Δz1 and Δz2 follow by forward substitution.
func (s *State) TickNonlinear(dt, freq, fb, clip, in float64) float64 {
	k := Coefficient(dt, freq)

	fb = fb * core.TanhShape(s.Z2*fb/clip, shapeEpsilon) * clip

	u0 := s.OldIn - s.Z0 - fb*s.Z2
	u1 := s.Z0 - s.Z1
	u2 := s.Z1 - s.Z2

	k0 := k * core.TanhShape(u0, shapeEpsilon)
	k1 := k * core.TanhShape(u1, shapeEpsilon)
	k2 := k * core.TanhShape(u2, shapeEpsilon)

	inStep := in - s.OldIn

	c0 := k0 * u0
	c1 := k1 * u1
	c2 := k2 * u2

	d0 := c0 + k0*0.5*(inStep-fb*(c2+k2*0.5*c1))
	d0 /= 1 + k0*0.5*fb*k2*0.5*k1*0.5
	d1 := c1 + k1*0.5*d0
	d2 := c2 + k2*0.5*d1

	s.OldIn += inStep
	s.Z0 = core.FlushDenormals(s.Z0 + d0)
	s.Z1 = core.FlushDenormals(s.Z1 + d1)
	s.Z2 = core.FlushDenormals(s.Z2 + d2)

	return s.Z2
}

// Reset clears the filter memory.
func (s *State) Reset() {
	*s = State{}
}
