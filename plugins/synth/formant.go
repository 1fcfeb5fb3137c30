package synth

import (
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-mjack/dsp/core"
	"github.com/cwbudde/algo-mjack/dsp/event"
	"github.com/cwbudde/algo-mjack/dsp/filter/biquad"
	"github.com/cwbudde/algo-mjack/dsp/osc"
	"github.com/cwbudde/algo-mjack/dsp/tuning"
	"github.com/cwbudde/algo-mjack/plugin"
)

const formantBands = 3

var (
	formantVolume    = [formantBands]int{7, 8, 9}
	formantCutoff    = [formantBands]int{77, 78, 79}
	formantResonance = [formantBands]int{71, 72, 73}
)

const (
	formantPortamento = 81
	formantEnvelope   = 82
	formantVibDepth   = 83
	formantVibRate    = 84
	formantVibEnv     = 85
)

// Formant describes the monophonic saw voiced through three parallel
// band-passes.
func Formant() plugin.Descriptor {
	d := plugin.Descriptor{
		Name:        "formant",
		Persistence: "mjack_sawsynth_4",
		Outputs:     Mono,
		MIDI:        true,
		Factory:     newFormant,
	}

	for b, name := range [formantBands]string{"a", "b", "c"} {
		label := string('A' + rune(b))
		d.Controls = append(d.Controls,
			plugin.Control{CC: formantVolume[b], Display: "Volume " + label, Persist: "volume_" + name, Default: 64},
			plugin.Control{CC: formantCutoff[b], Display: "Cutoff " + label, Persist: "cutoff_" + name, Default: 64},
			plugin.Control{CC: formantResonance[b], Display: "Resonance " + label, Persist: "resonance_" + name, Default: 64},
		)
	}

	d.Controls = append(d.Controls,
		plugin.Control{CC: formantPortamento, Display: "Portamento", Persist: "portamento", Default: 64},
		plugin.Control{CC: formantEnvelope, Display: "Envelope", Persist: "envelope", Default: 64},
		plugin.Control{CC: formantVibDepth, Display: "Vibrato Depth", Persist: "vibrato_depth", Default: 64},
		plugin.Control{CC: formantVibRate, Display: "Vibrato Rate", Persist: "vibrato_rate", Default: 64},
		plugin.Control{CC: formantVibEnv, Display: "Vibrato Envelope", Persist: "vibrato_envelope", Default: 64},
	)

	return d
}

type formant struct {
	dt         float64
	sampleRate float64
	controls   *plugin.Controls
	tuning     *tuning.Table

	keys   heldKeys
	gain   float64
	target float64

	freq     float64
	env      float64
	vibEnv   float64
	vibPhase float64
	osc      osc.Centered
	bands    [formantBands]biquad.Section

	// src holds the enveloped oscillator, band one filtered copy of it.
	src, band []float64

	out    []float64
	render func(start, end int)
	apply  func(event.Event)
}

func newFormant(ctx plugin.Context) (plugin.Plugin, error) {
	f := &formant{
		dt:         1 / ctx.SampleRate,
		sampleRate: ctx.SampleRate,
		controls:   ctx.Controls,
		tuning:     ctx.Tuning,
	}
	f.render = f.renderRange
	f.apply = f.handle

	return f, nil
}

func (f *formant) Process(_, out [][]float64, events []event.Event, nframes int) {
	f.out = out[0]

	if len(f.src) < nframes {
		f.src = make([]float64, nframes)
		f.band = make([]float64, nframes)
	}

	plugin.Run(f.controls, events, nframes, f.render, f.apply)
}

func (f *formant) Destroy() {
	f.src, f.band, f.out = nil, nil, nil
}

func (f *formant) handle(e event.Event) {
	switch e.Kind {
	case event.NoteOn:
		if !f.keys.press(e.Key) {
			return
		}

		f.target = f.tuning.Hz(int(e.Key))
		f.gain = velocity(e.Value)

		if f.freq == 0 {
			f.freq = f.target
		}
	case event.NoteOff:
		if f.keys.release(e.Key) {
			f.gain = 0
		}
	}
}

// design recomputes the band coefficients. Q scales with the centre
// frequency so every band has about the same absolute bandwidth.
func (f *formant) design() {
	c := f.controls

	for b := range f.bands {
		gain := core.ControlPow(c.Get(formantVolume[b]), 2) * 0.5
		hz := core.ReferenceHz * core.Exp2(float64(c.Get(formantCutoff[b])-57)/12)
		q := float64(c.Get(formantResonance[b])+1) / core.MaxControl * hz / core.ReferenceHz

		f.bands[b].Coefficients = biquad.BandPass(f.sampleRate, hz, q, gain)
	}
}

func (f *formant) renderRange(start, end int) {
	c := f.controls
	dt := f.dt

	f.design()

	port := math.Min(1, 1000*core.ControlPow(c.Get(formantPortamento), 3)*dt)
	envRate := math.Min(1, 2*math.Pi*1000*core.ControlPow(c.Get(formantEnvelope), 3)*dt)
	vibDepth := 0.015 * core.ControlPow(c.Get(formantVibDepth), 2)
	vibRate := 15 * core.ControlPow(c.Get(formantVibRate), 2)
	vibEnvRate := math.Min(1, 2*math.Pi*10*core.ControlPow(c.Get(formantVibEnv), 3)*dt)

	gate := 0.0
	if f.gain > 0 {
		gate = 1
	}

	for i := start; i < end; i++ {
		f.vibEnv += (gate - f.vibEnv) * vibEnvRate

		f.vibPhase += vibRate * f.vibEnv * dt
		if f.vibPhase > 0.5 {
			f.vibPhase--
		}

		f.freq += (f.target - f.freq) * port
		x := 0.5 * f.osc.Tick(dt, f.freq*(1+vibDepth*f.vibEnv*math.Sin(2*math.Pi*f.vibPhase)))

		f.env += (f.gain - f.env) * envRate
		f.src[i] = x * f.env
	}

	out := f.out[start:end]
	band := f.band[start:end]
	core.Zero(out)

	for b := range f.bands {
		copy(band, f.src[start:end])
		f.bands[b].ProcessBlock(band)
		vecmath.AddBlockInPlace(out, band)
	}
}
