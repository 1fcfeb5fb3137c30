package ladder

import "github.com/cwbudde/algo-mjack/dsp/core"

// MS20 is a two-integrator filter with a saturating feedback path. It has a
// low-pass and a high-pass input that share one resonant network.
type MS20 struct {
	Z1, Z2 float64
}

func ms20Shape(clip, x float64) float64 {
	y := x / clip
	return x / core.Sqrt(1+y*y)
}

// Tick advances the network by one sample with separate low-pass and
// high-pass inputs and returns the filter output.
func (m *MS20) Tick(dt, freq, reso, clip, lpIn, hpIn float64) float64 {
	k := Coefficient(dt, freq)

	z2 := m.Z2 + hpIn
	z1 := m.Z1 + ms20Shape(clip, 2*z2*reso)

	m.Z1 += (lpIn - z1) * k
	z1 += (lpIn - z1) * k
	m.Z2 += (z1 - z2) * k
	z2 += (z1 - z2) * k

	return z2
}

// TickLP runs the network as a low-pass.
func (m *MS20) TickLP(dt, freq, reso, clip, in float64) float64 {
	return m.Tick(dt, freq, reso, clip, in, 0)
}

// TickHP runs the network as a high-pass.
func (m *MS20) TickHP(dt, freq, reso, clip, in float64) float64 {
	return m.Tick(dt, freq, reso, clip, 0, in)
}

// Reset clears the filter memory.
func (m *MS20) Reset() {
	*m = MS20{}
}
