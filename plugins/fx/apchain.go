package fx

import (
	"github.com/cwbudde/algo-mjack/dsp/core"
	"github.com/cwbudde/algo-mjack/dsp/event"
	"github.com/cwbudde/algo-mjack/dsp/filter/allpass"
	"github.com/cwbudde/algo-mjack/plugin"
)

const (
	apCutoff = 77
	apStages = 78
)

// APChain describes a cascade of identical first-order all-passes, a
// frequency-dependent delay with flat magnitude.
func APChain() plugin.Descriptor {
	return plugin.Descriptor{
		Name:        "apchain",
		Persistence: "mjack_apchain",
		Inputs:      monoIn,
		Outputs:     monoOut,
		Controls: []plugin.Control{
			{CC: apCutoff, Display: "Cutoff", Persist: "cutoff", Default: 64},
			{CC: apStages, Display: "Stages", Persist: "stages", Default: 31},
		},
		Factory: newAPChain,
	}
}

type apChain struct {
	dt       float64
	controls *plugin.Controls
	chain    allpass.Chain

	in, out [][]float64
	render  func(start, end int)
}

func newAPChain(ctx plugin.Context) (plugin.Plugin, error) {
	a := &apChain{dt: 1 / ctx.SampleRate, controls: ctx.Controls}
	a.render = a.renderRange

	return a, nil
}

func (a *apChain) Process(in, out [][]float64, events []event.Event, nframes int) {
	a.in, a.out = in, out
	plugin.Run(a.controls, events, nframes, a.render, nil)
}

func (a *apChain) Destroy() { a.in, a.out = nil, nil }

func (a *apChain) renderRange(start, end int) {
	c := a.controls
	hz := core.MIDIToHz(float64(c.Get(apCutoff)))
	coeff := allpass.Coefficient(hz * a.dt)

	a.chain.SetStages(1 + c.Get(apStages))

	in, out := a.in[0][start:end], a.out[0][start:end]
	for i, x := range in {
		out[i] = a.chain.ProcessSample(x, coeff)
	}
}
