// Package lfo implements a delayed triangle low-frequency oscillator.
package lfo

// LFO holds the time since the last trigger and the phase in [0,1).
type LFO struct {
	Time  float64
	Phase float64
}

// Trigger restarts the onset delay. The phase is left alone so retriggered
// voices do not jump.
func (l *LFO) Trigger() {
	l.Time = 0
}

// Tick advances one sample and returns a triangle in [-1,1]. During the
// first delay seconds after a trigger the output is 0 and the phase is
// parked at 0.25, the triangle's zero crossing, so the wave fades in from
// the centre.
func (l *LFO) Tick(dt, delay, freq float64) float64 {
	l.Time += dt
	if l.Time < delay {
		l.Phase = 0.25
		return 0
	}

	l.Phase += dt * freq
	for l.Phase >= 1 {
		l.Phase--
	}

	if l.Phase < 0.5 {
		return l.Phase*4 - 1
	}

	return (1-l.Phase)*4 - 1
}
