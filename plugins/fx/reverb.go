package fx

import (
	"strconv"

	"github.com/cwbudde/algo-mjack/dsp/core"
	"github.com/cwbudde/algo-mjack/dsp/effects/reverb"
	"github.com/cwbudde/algo-mjack/dsp/event"
	"github.com/cwbudde/algo-mjack/plugin"
)

const (
	reverbWet      = 91
	reverbFeedback = 72
	reverbDecay    = 80
	reverbDamping  = 81
	reverbStage    = 127

	reverb2Gain       = 100
	reverb2Size       = 127
	reverb2MaxSizeSec = 10.0
)

// Reverb describes the fixed one-second tank. The wet signal is read from
// a single stage of each channel, chosen by the stage control.
func Reverb() plugin.Descriptor {
	return plugin.Descriptor{
		Name:        "reverb",
		Persistence: "mjack_reverb",
		Inputs:      plugin.Stereo,
		Outputs:     plugin.StereoOut,
		Controls: []plugin.Control{
			{CC: reverbWet, Display: "Wet", Persist: "wet", Default: 64},
			{CC: reverbFeedback, Display: "Feedback", Persist: "feedback", Default: 64},
			{CC: reverbDecay, Display: "Decay", Persist: "decay", Default: 64},
			{CC: reverbDamping, Display: "Damping", Persist: "damping", Default: 64},
			{CC: reverbStage, Display: "Stages", Persist: "stages", Default: 64},
		},
		Factory: newTankReverb(false),
	}
}

// Reverb2 describes the tank whose length follows the size control, up to
// ten seconds. Each of the four stage gains is its own control.
func Reverb2() plugin.Descriptor {
	d := plugin.Descriptor{
		Name:        "reverb2",
		Persistence: "mjack_reverb2",
		Inputs:      plugin.Stereo,
		Outputs:     plugin.StereoOut,
		Controls: []plugin.Control{
			{CC: reverb2Size, Display: "Size", Persist: "size", Default: 64},
		},
		Factory: newTankReverb(true),
	}

	for s := range reverb.MaxStages / 2 {
		d.Controls = append(d.Controls, plugin.Control{
			CC:      reverb2Gain + s,
			Display: "Gain " + strconv.Itoa(s),
			Persist: "gain " + strconv.Itoa(s),
		})
	}

	return d
}

type tankReverb struct {
	controls *plugin.Controls
	tank     *reverb.Tank
	sized    bool
	size     int

	in, out [][]float64
	v       view

	render func(start, end int)
}

func newTankReverb(sized bool) plugin.Factory {
	return func(ctx plugin.Context) (plugin.Plugin, error) {
		var opts []reverb.Option
		if sized {
			opts = append(opts, reverb.WithMaxSize(reverb2MaxSizeSec))
		}

		tank, err := reverb.NewTank(ctx.SampleRate, opts...)
		if err != nil {
			return nil, err
		}

		r := &tankReverb{controls: ctx.Controls, tank: tank, sized: sized, size: -1}
		r.render = r.renderRange

		ctx.Logger.Debug("tank allocated", "frames", tank.Len(), "sized", sized)

		return r, nil
	}
}

func (r *tankReverb) Process(in, out [][]float64, events []event.Event, nframes int) {
	r.in, r.out = in, out
	plugin.Run(r.controls, events, nframes, r.render, nil)
}

func (r *tankReverb) Destroy() {
	r.tank = nil
	r.in, r.out = nil, nil
}

func (r *tankReverb) params() reverb.Params {
	c := r.controls

	if r.sized {
		var p reverb.Params
		for s := range p.Gains {
			p.Gains[s] = core.ControlPow(c.Get(reverb2Gain+s), 2)
		}

		p.Decay = 1
		p.Damping = 1

		return p
	}

	wet := float64(c.Get(reverbWet)) * 2 / core.MaxControl
	p := reverb.Params{
		Feedback: -core.ControlPow(c.Get(reverbFeedback), 2),
		Decay:    c.Ratio(reverbDecay),
		Damping:  c.Ratio(reverbDamping),
	}
	p.Gains[c.Get(reverbStage)*len(p.Gains)/128] = wet * wet

	return p
}

func (r *tankReverb) renderRange(start, end int) {
	if r.sized {
		if cc := r.controls.Get(reverb2Size); cc != r.size {
			r.size = cc
			sec := float64(1+cc) / 128
			r.tank.SetSize(sec * sec * reverb2MaxSizeSec)
		}
	}

	r.v.set(r.in, r.out, start, end)
	r.tank.Process(r.v.in[:], r.v.out[:], end-start, r.params())
}
