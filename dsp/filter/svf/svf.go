package svf

import (
	"math"

	"github.com/cwbudde/algo-mjack/dsp/core"
)

// maxNormalizedFreq keeps tan(π·f) finite.
const maxNormalizedFreq = 0.499

const shapeEpsilon = 1e-12

// State holds the two integrator registers and the previous input used by
// the nonlinear tick. The zero value is a silent filter.
type State struct {
	Z1, Z2 float64
	LastIn float64
}

// Outputs holds the three simultaneous SVF responses of one tick.
type Outputs struct {
	LP, BP, HP float64
}

// Gain returns the prewarped integrator gain tan(π·freq·dt) with freq·dt
// clamped below Nyquist.
func Gain(dt, freq float64) float64 {
	f := freq * dt
	if f > maxNormalizedFreq {
		f = maxNormalizedFreq
	}

	if f < 0 {
		f = 0
	}

	return math.Tan(math.Pi * f)
}

// Tick runs the linear filter for one sample and returns the low-pass
// output. q is the damping: 0 self-oscillates, 2 is critically damped.
func (s *State) Tick(dt, freq, q, in float64) float64 {
	return s.TickOutputs(dt, freq, q, in).LP
}

// TickOutputs runs the linear filter for one sample and returns all three
// responses.
//
// With hp = in - q·bp - lp, bp = z1 + f·hp and lp = z2 + f·bp, substituting
// gives (1 + q·f + f²)·hp = in - (q+f)·z1 - z2.
func (s *State) TickOutputs(dt, freq, q, in float64) Outputs {
	f := Gain(dt, freq)
	r := f + q
	g := 1 / (f*r + 1)

	hp := (in - r*s.Z1 - s.Z2) * g
	bp := s.Z1 + f*hp
	lp := s.Z2 + f*bp

	s.Z1 = core.FlushDenormals(bp + f*hp)
	s.Z2 = core.FlushDenormals(lp + f*bp)

	return Outputs{LP: lp, BP: bp, HP: hp}
}

// TickNonlinear runs the saturating filter for one sample and returns the
// low-pass output. grit scales the signal level seen by the saturators: 1
// is the plain tanh response, larger values distort earlier. The
// integrators use k1 = f·tanh(x)/x of the feedback node and k2 = f·tanh(z2)/z2
// of the low-pass state, then the linear closed form is solved with those
// gains: (1 + q·k1 + k1·k2)·hp = in - (q+k2)·z1 - z2.
func (s *State) TickNonlinear(dt, freq, q, grit, in float64) float64 {
	f := Gain(dt, freq)

	grit *= grit
	half := (in + s.LastIn) * 0.5
	fb := half - q*s.Z1 - s.Z2
	k1 := f * core.TanhShape(fb*grit, shapeEpsilon)
	k2 := f * core.TanhShape(s.Z2*grit, shapeEpsilon)

	r := q + k2
	g := 1 / (k1*r + 1)

	hp := (in - r*s.Z1 - s.Z2) * g
	bp := s.Z1 + k1*hp
	lp := s.Z2 + k2*bp

	s.LastIn = in
	s.Z1 = core.FlushDenormals(bp + k1*hp)
	s.Z2 = core.FlushDenormals(lp + k2*bp)

	return lp
}

// Reset clears the filter memory.
func (s *State) Reset() {
	*s = State{}
}
