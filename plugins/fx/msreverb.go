package fx

import (
	"strconv"

	"github.com/cwbudde/algo-mjack/dsp/effects/reverb"
	"github.com/cwbudde/algo-mjack/dsp/event"
	"github.com/cwbudde/algo-mjack/plugin"
)

const (
	msShape     = 80
	msStageTime = 81
)

// MSReverb describes the mono-in, mid/side-out all-pass reverb. Each of
// the sixteen stage times has its own control.
func MSReverb() plugin.Descriptor {
	d := plugin.Descriptor{
		Name:        "msreverb",
		Persistence: "mjack_ms_reverb3",
		Inputs:      []string{"in 0"},
		Outputs:     plugin.StereoOut,
		Controls: []plugin.Control{
			{CC: msShape, Display: "K", Persist: "k", Default: 64},
		},
		Factory: newMSReverb,
	}

	for c, side := range []string{"mid", "side"} {
		for s := range reverb.DiffuserStages {
			name := side + " time " + strconv.Itoa(s)
			d.Controls = append(d.Controls, plugin.Control{
				CC:      msStageTime + c*reverb.DiffuserStages + s,
				Display: name,
				Persist: side + "_time_" + strconv.Itoa(s),
				Default: 64,
			})
		}
	}

	return d
}

type msReverb struct {
	controls *plugin.Controls
	reverb   *reverb.AllpassReverb

	in, out [][]float64
	render  func(start, end int)
}

func newMSReverb(ctx plugin.Context) (plugin.Plugin, error) {
	r, err := reverb.NewAllpassReverb(ctx.SampleRate)
	if err != nil {
		return nil, err
	}

	m := &msReverb{controls: ctx.Controls, reverb: r}
	m.render = m.renderRange
	m.update()

	return m, nil
}

func (m *msReverb) Process(in, out [][]float64, events []event.Event, nframes int) {
	m.in, m.out = in, out
	plugin.Run(m.controls, events, nframes, m.render, nil)
}

func (m *msReverb) Destroy() {
	m.reverb = nil
	m.in, m.out = nil, nil
}

// update pushes the controls into the reverb. Unchanged stage times are
// skipped by SetStageTime, so this is cheap when nothing moved.
func (m *msReverb) update() {
	c := m.controls
	m.reverb.SetShape((0.5 + float64(c.Get(msShape))) / 128)

	for ch := range 2 {
		for s := range reverb.DiffuserStages {
			cc := c.Get(msStageTime + ch*reverb.DiffuserStages + s)
			m.reverb.SetStageTime(ch, s, reverb.MaxStageSeconds*float64(cc+1)/128)
		}
	}
}

func (m *msReverb) renderRange(start, end int) {
	m.update()
	m.reverb.Process(m.in[0][start:end], m.out[0][start:end], m.out[1][start:end])
}
