package fx

import (
	"math"

	"github.com/cwbudde/algo-mjack/dsp/core"
	"github.com/cwbudde/algo-mjack/dsp/event"
	"github.com/cwbudde/algo-mjack/dsp/filter/biquad"
	"github.com/cwbudde/algo-mjack/plugin"
)

const (
	eqFreq = 81
	eqQ    = 82
	eqGain = 83
	eqLow  = 84
	eqHigh = 85
)

// Parametric describes a single-section equaliser: a peak or dip at the
// centre frequency plus independent gains for the bands below and above
// it.
func Parametric() plugin.Descriptor {
	return plugin.Descriptor{
		Name:        "parametric",
		Persistence: "mjack_parametric",
		Inputs:      monoIn,
		Outputs:     monoOut,
		Controls: []plugin.Control{
			{CC: eqFreq, Display: "Freq", Persist: "CC_FREQ", Default: 64},
			{CC: eqQ, Display: "Q", Persist: "CC_Q", Default: 64},
			{CC: eqGain, Display: "Gain", Persist: "CC_GAIN", Default: 64},
			{CC: eqLow, Display: "Low Gain", Persist: "CC_LOW_GAIN", Default: 63},
			{CC: eqHigh, Display: "High Gain", Persist: "CC_HIGH_GAIN", Default: 63},
		},
		Factory: newParametric,
	}
}

type parametric struct {
	dt       float64
	controls *plugin.Controls
	section  biquad.Section

	in, out [][]float64
	render  func(start, end int)
}

func newParametric(ctx plugin.Context) (plugin.Plugin, error) {
	p := &parametric{dt: 1 / ctx.SampleRate, controls: ctx.Controls}
	p.render = p.renderRange

	return p, nil
}

func (p *parametric) Process(in, out [][]float64, events []event.Event, nframes int) {
	p.in, p.out = in, out
	plugin.Run(p.controls, events, nframes, p.render, nil)
}

func (p *parametric) Destroy() { p.in, p.out = nil, nil }

// sqrtGain maps a control to the square root of a band gain; 63 is unity.
func sqrtGain(cc int) float64 {
	return float64(1+cc) * 2 / 128
}

func (p *parametric) coefficients() biquad.Coefficients {
	c := p.controls

	return biquad.DigitalParametric(biquad.Params{
		W:  2 * math.Pi * core.MIDIToHz(float64(c.Get(eqFreq))) * p.dt,
		Q:  float64(1+c.Get(eqQ)) * 8 / 128,
		G0: sqrtGain(c.Get(eqLow)),
		G1: sqrtGain(c.Get(eqGain)),
		G2: sqrtGain(c.Get(eqHigh)),
	})
}

func (p *parametric) renderRange(start, end int) {
	p.section.Coefficients = p.coefficients()

	out := p.out[0][start:end]
	copy(out, p.in[0][start:end])
	p.section.ProcessBlock(out)
}
