package envelope

import "math"

// attackTarget is the asymptote the attack segment heads toward. Aiming
// past 1 keeps the attack from stalling just below full scale.
const attackTarget = 1.5

// Params holds ADSR rates in 1/s and the sustain level.
//
// Shape bends the decay and release curves: the per-sample rate is scaled
// by the current distance to the target raised to Shape. Shape 0 gives
// plain exponential segments.
type Params struct {
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64
	Shape   int
}

// ADSR is a gate-driven envelope. The zero value is silent and idle.
type ADSR struct {
	Value    float64
	InAttack bool
}

// Trigger restarts the attack from the current value.
func (e *ADSR) Trigger() {
	e.InAttack = true
}

// Tick advances one sample. A gate > 0 holds the envelope in its
// attack/decay/sustain phase; otherwise it releases toward zero.
func (e *ADSR) Tick(dt, gate float64, p Params) float64 {
	switch {
	case gate > 0 && e.InAttack:
		e.Value += dt * p.Attack * (attackTarget - e.Value)
		if e.Value >= 1 {
			e.Value = 1
			e.InAttack = false
		}
	case gate > 0:
		v := e.Value - p.Sustain
		e.Value = p.Sustain + v*stepFactor(dt*p.Decay*shape(v, p.Shape), true)
	default:
		e.Value *= stepFactor(dt*p.Release*shape(e.Value, p.Shape), false)
	}

	return e.Value
}

// Reset returns the envelope to silence.
func (e *ADSR) Reset() {
	*e = ADSR{}
}

// stepFactor limits a single step to at most halving the distance to the
// target. Decay is additionally kept from overshooting away from sustain.
func stepFactor(rate float64, capAtOne bool) float64 {
	f := math.Max(0.5, 1-rate)
	if capAtOne {
		f = math.Min(1, f)
	}

	return f
}

func shape(v float64, n int) float64 {
	switch n {
	case 0:
		return 1
	case 1:
		return v
	case 2:
		return v * v
	default:
		return math.Pow(v, float64(n))
	}
}
