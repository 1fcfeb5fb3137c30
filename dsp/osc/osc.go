package osc

import "math"

// minIncrement is the phase increment below which the box-integrated
// waveforms fall back to their naive form to avoid dividing by ~0.
const minIncrement = 1e-9

// Osc is a phase accumulator with phase in [0,1). The zero value starts at
// phase 0.
type Osc struct {
	Phase float64
}

// Advance moves the phase forward by inc cycles and wraps it into [0,1).
func (o *Osc) Advance(inc float64) {
	p := o.Phase + inc
	if p >= 1 || p < 0 {
		p -= math.Floor(p)
	}

	o.Phase = p
}

// Saw returns the naive sawtooth 2p-1 and advances.
func (o *Osc) Saw(inc float64) float64 {
	p := o.Phase
	o.Advance(inc)

	return 2*p - 1
}

// SawBox returns the box-integrated sawtooth and advances. The integral of
// 2(p-0.5) is (p-0.5)², so the average over one step is a difference of
// squares divided by the step. A wrap inside the step lands between the two
// parabola branches, which is where the band-limiting comes from.
func (o *Osc) SawBox(inc float64) float64 {
	if inc <= minIncrement {
		return o.Saw(inc)
	}

	p0 := o.Phase - 0.5
	o.Advance(inc)
	p1 := o.Phase - 0.5

	return (p1*p1 - p0*p0) / inc
}

// Pulse returns the naive zero-mean pulse of the given duty cycle and
// advances.
func (o *Osc) Pulse(inc, duty float64) float64 {
	p := o.Phase
	o.Advance(inc)

	if p < duty {
		return 1 - duty
	}

	return -duty
}

// PulseBox returns the box-integrated zero-mean pulse and advances.
func (o *Osc) PulseBox(inc, duty float64) float64 {
	if inc <= minIncrement {
		return o.Pulse(inc, duty)
	}

	p0 := o.Phase
	o.Advance(inc)
	p1 := o.Phase

	return (pulseIntegral(p1, duty) - pulseIntegral(p0, duty)) / inc
}

// TriangleDuty returns a triangle whose rising part lasts duty of the period,
// in [-1,1] for duty 0.5, and advances.
func (o *Osc) TriangleDuty(inc, duty float64) float64 {
	p := o.Phase
	o.Advance(inc)

	return 8*pulseIntegral(p, duty) - 1
}

// Sine returns sin(2πp) and advances.
func (o *Osc) Sine(inc float64) float64 {
	p := o.Phase
	o.Advance(inc)

	return math.Sin(2 * math.Pi * p)
}

// pulseIntegral is the running integral of the zero-mean pulse over one
// period. It is a triangle that returns to zero at p=1.
func pulseIntegral(p, duty float64) float64 {
	return math.Min(p*(1-duty), (1-p)*duty)
}
