package envelope

import "math"

// Simple is a percussive envelope. Raw jumps to 1 on Trigger and decays
// exponentially; Smoothed follows Raw through a one-pole so the onset is
// click free.
type Simple struct {
	Raw      float64
	Smoothed float64
}

// Trigger starts a new hit.
func (e *Simple) Trigger() { e.Raw = 1 }

// Untrigger cuts the raw envelope. The smoothed output still fades out.
func (e *Simple) Untrigger() { e.Raw = 0 }

// Tick advances one sample. speed is the smoothing rate and decay the raw
// decay rate, both in 1/s.
func (e *Simple) Tick(dt, speed, decay float64) float64 {
	e.Raw *= math.Max(0.5, 1-decay*dt)
	e.Smoothed += (e.Raw - e.Smoothed) * math.Min(0.5, dt*speed)

	return e.Smoothed
}
