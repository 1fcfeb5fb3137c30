package svf

import "math"

// SEM is a two-integrator filter with a soft-saturating first integrator
// whose damping grows with its own level. The zero value is silent.
type SEM struct {
	Z1, Z2 float64
}

func semShapeGain(x float64) float64 {
	return 1 / math.Sqrt(1+0.66*x+x*x)
}

func semShape(clip, x float64) float64 {
	return x * semShapeGain(x/clip)
}

// Tick advances the filter by one sample and returns the low-pass output.
// reso is the damping term (lower is more resonant) and clip the level at
// which the first integrator starts to compress.
func (s *SEM) Tick(dt, freq, reso, clip, in float64) float64 {
	k := math.Min(1, dt*2*math.Pi*freq)
	g := 1 - semShapeGain(s.Z1/clip)

	s.Z1 += k * semShape(1, in-s.Z2-s.Z1*(reso+g))
	s.Z2 += k * semShape(1, s.Z1)

	return s.Z2
}

// Reset clears the filter memory.
func (s *SEM) Reset() {
	*s = SEM{}
}
