package fx

import (
	"math"

	"github.com/cwbudde/algo-mjack/dsp/event"
	"github.com/cwbudde/algo-mjack/dsp/filter/hpf"
	"github.com/cwbudde/algo-mjack/plugin"
)

const (
	hpfCutoff = 80
	hpfOrder  = 81
)

// HPF describes the cascaded one-pole high-pass, 10 Hz to 40 kHz.
func HPF() plugin.Descriptor {
	return plugin.Descriptor{
		Name:        "hpf",
		Persistence: "mjack_hpf",
		Inputs:      monoIn,
		Outputs:     monoOut,
		Controls: []plugin.Control{
			{CC: hpfCutoff, Display: "Cutoff", Persist: "cutoff", Default: 64},
			{CC: hpfOrder, Display: "Order", Persist: "Order", Default: 64},
		},
		Factory: newHPF,
	}
}

type highPass struct {
	controls *plugin.Controls
	filter   *hpf.Filter

	in, out [][]float64
	render  func(start, end int)
}

func newHPF(ctx plugin.Context) (plugin.Plugin, error) {
	f, err := hpf.New(ctx.SampleRate)
	if err != nil {
		return nil, err
	}

	h := &highPass{controls: ctx.Controls, filter: f}
	h.render = h.renderRange

	return h, nil
}

func (h *highPass) Process(in, out [][]float64, events []event.Event, nframes int) {
	h.in, h.out = in, out
	plugin.Run(h.controls, events, nframes, h.render, nil)
}

func (h *highPass) Destroy() {
	h.filter = nil
	h.in, h.out = nil, nil
}

func cutoffHz(cc int) float64 {
	return 10 * math.Pow(4000, float64(cc)/127)
}

func (h *highPass) renderRange(start, end int) {
	c := h.controls
	h.filter.Set(cutoffHz(c.Get(hpfCutoff)), 1+c.Get(hpfOrder)*hpf.MaxOrder/128)

	out := h.out[0][start:end]
	copy(out, h.in[0][start:end])
	h.filter.ProcessInPlace(out)
}
