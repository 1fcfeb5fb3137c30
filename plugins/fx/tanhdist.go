package fx

import (
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-mjack/dsp/event"
	"github.com/cwbudde/algo-mjack/plugin"
)

const (
	distDrive = 81
	distGain  = 82
)

// TanhDist describes the memoryless tanh waveshaper.
func TanhDist() plugin.Descriptor {
	return plugin.Descriptor{
		Name:        "tanhdist",
		Persistence: "mjack_tanh_distortion",
		Inputs:      monoIn,
		Outputs:     monoOut,
		Controls: []plugin.Control{
			{CC: distDrive, Display: "Drive", Persist: "CC_DRIVE", Default: 64},
			{CC: distGain, Display: "Gain", Persist: "CC_GAIN", Default: 64},
		},
		Factory: newTanhDist,
	}
}

type tanhDist struct {
	controls *plugin.Controls

	in, out [][]float64
	render  func(start, end int)
}

func newTanhDist(ctx plugin.Context) (plugin.Plugin, error) {
	d := &tanhDist{controls: ctx.Controls}
	d.render = d.renderRange

	return d, nil
}

func (d *tanhDist) Process(in, out [][]float64, events []event.Event, nframes int) {
	d.in, d.out = in, out
	plugin.Run(d.controls, events, nframes, d.render, nil)
}

func (d *tanhDist) Destroy() { d.in, d.out = nil, nil }

func (d *tanhDist) renderRange(start, end int) {
	c := d.controls
	drive := float64(1+c.Get(distDrive)) / 128
	gain := float64(1+c.Get(distGain)) / 128
	drive *= 16 * drive
	gain *= gain

	in, out := d.in[0][start:end], d.out[0][start:end]
	for i, x := range in {
		out[i] = math.Tanh(x * drive)
	}

	vecmath.ScaleBlock(out, out, gain)
}
