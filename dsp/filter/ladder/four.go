package ladder

import "math"

// Four is a four-pole ladder whose stages can be tuned independently.
// Spreading the stage cutoffs softens the resonance peak.
type Four struct {
	Z [4]float64
}

// Tick runs one sample through the ladder. freqs holds the cutoff of each
// stage in Hz, fb is the resonance gain (self-oscillation near 4) and clip
// the feedback saturation level.
func (f *Four) Tick(dt float64, freqs [4]float64, fb, clip, in float64) float64 {
	var k [4]float64
	for i, fr := range freqs {
		k[i] = Coefficient(dt, fr)
	}

	old := f.Z[0]
	f.Z[0] += math.Tanh(in-math.Tanh(f.Z[3]*fb/clip)*clip-f.Z[0]) * k[0]
	f.Z[1] += math.Tanh(0.5*(old+f.Z[0])-f.Z[1]) * k[1]
	f.Z[2] += math.Tanh(f.Z[1]-f.Z[2]) * k[2]
	f.Z[3] += math.Tanh(f.Z[2]-f.Z[3]) * k[3]

	return f.Z[3]
}

// Reset clears the filter memory.
func (f *Four) Reset() {
	f.Z = [4]float64{}
}
