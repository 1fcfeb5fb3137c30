package envelope

import "math"

// Gate follows a continuous gate level. Target chases gate·sustain at the
// decay rate while the gate is open and at the release rate once it closes;
// Amp chases Target at the attack speed.
type Gate struct {
	Amp    float64
	Target float64
	Level  float64
}

// SetGate updates the gate level. On a trigger the target jumps up to at
// least the new level so the attack starts immediately.
func (e *Gate) SetGate(level float64, trigger bool) {
	if trigger {
		e.Target = math.Max(e.Target, level)
	}

	e.Level = level
}

// Tick advances one sample.
func (e *Gate) Tick(dt, speed, decay, sustain, release float64) float64 {
	rate := release
	if e.Level > 0 {
		rate = decay
	}

	e.Target += dt * rate * (e.Level*sustain - e.Target)
	e.Amp += dt * speed * (e.Target - e.Amp)

	return e.Amp
}
