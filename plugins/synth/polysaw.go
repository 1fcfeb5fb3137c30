package synth

import (
	"math"
	"math/rand/v2"

	"github.com/cwbudde/algo-mjack/dsp/core"
	"github.com/cwbudde/algo-mjack/dsp/envelope"
	"github.com/cwbudde/algo-mjack/dsp/event"
	"github.com/cwbudde/algo-mjack/dsp/filter/ladder"
	"github.com/cwbudde/algo-mjack/dsp/lfo"
	"github.com/cwbudde/algo-mjack/dsp/osc"
	"github.com/cwbudde/algo-mjack/dsp/tuning"
	"github.com/cwbudde/algo-mjack/dsp/voice"
	"github.com/cwbudde/algo-mjack/plugin"
)

const (
	polyVolume      = 7
	polyCutoff      = 81
	polyResonance   = 82
	polyClip        = 83
	polyTracking    = 84
	polyPreGain     = 89
	polyOctave      = 90
	polyFifth       = 91
	polyVCAAttack   = 92
	polyVCADecay    = 93
	polyVCASustain  = 94
	polyVCARelease  = 95
	polyVCFAttack   = 96
	polyVCFDecay    = 97
	polyVCFSustain  = 98
	polyVCFRelease  = 99
	polyDrift       = 104
	polyLFODelay    = 105
	polyLFOFreq     = 106
	polyOscLFO      = 107
	polyPulseWidth  = 108
	polyPulseLFO    = 109
	polyVoices      = 8
	polyPulseLevel  = 0.6
	polyDriftSeed   = 0x5eed
	polyTrackingRef = 110.0
)

// PolySaw describes the eight-voice pulse synth with a saturating ladder.
func PolySaw() plugin.Descriptor {
	return plugin.Descriptor{
		Name:        "polysaw",
		Persistence: "mjack_polysaw",
		Outputs:     Mono,
		MIDI:        true,
		Controls: []plugin.Control{
			{CC: polyVolume, Display: "Volume", Persist: "volume", Default: 64},
			{CC: polyCutoff, Display: "VCF Cutoff", Persist: "vcf1_cutoff", Default: 64},
			{CC: polyResonance, Display: "VCF Resonance", Persist: "vcf1_resonance", Default: 64},
			{CC: polyClip, Display: "VCF Clip Level", Persist: "vcf1_clip_level", Default: 64},
			{CC: polyTracking, Display: "VCF Tracking", Persist: "vcf1_tracking", Default: 0},
			{CC: polyPreGain, Display: "VCF Pre Gain", Persist: "vcf_pre_gain", Default: 64},
			{CC: polyOctave, Display: "Octave", Persist: "octave", Default: 64},
			{CC: polyFifth, Display: "Fifth", Persist: "fifth", Default: 64},
			{CC: polyVCAAttack, Display: "VCA Attack", Persist: "vca_attack", Default: 64},
			{CC: polyVCADecay, Display: "VCA Decay", Persist: "vca_decay", Default: 64},
			{CC: polyVCASustain, Display: "VCA Sustain", Persist: "vca_sustain", Default: 64},
			{CC: polyVCARelease, Display: "VCA Release", Persist: "vca_release", Default: 64},
			{CC: polyVCFAttack, Display: "VCF Attack", Persist: "vcf1_attack", Default: 64},
			{CC: polyVCFDecay, Display: "VCF Decay", Persist: "vcf1_decay", Default: 64},
			{CC: polyVCFSustain, Display: "VCF Sustain", Persist: "vcf1_sustain", Default: 64},
			{CC: polyVCFRelease, Display: "VCF Release", Persist: "vcf1_release", Default: 64},
			{CC: polyDrift, Display: "Drift", Persist: "drift", Default: 64},
			{CC: polyLFODelay, Display: "LFO Delay", Persist: "lfo_delay", Default: 64},
			{CC: polyLFOFreq, Display: "LFO Frequency", Persist: "lfo_freq", Default: 64},
			{CC: polyOscLFO, Display: "Osc LFO", Persist: "osc_lfo", Default: 64},
			{CC: polyPulseWidth, Display: "Pulse Width", Persist: "pw", Default: 64},
			{CC: polyPulseLFO, Display: "PW LFO", Persist: "pw_lfo", Default: 64},
		},
		Factory: newPolySaw,
	}
}

type polyVoice struct {
	key    int
	gain   float64
	freq   float64
	osc    osc.Osc
	lfo    lfo.LFO
	vca    envelope.ADSR
	vcf    envelope.ADSR
	filter ladder.State
}

type polySaw struct {
	dt       float64
	controls *plugin.Controls
	host     *tuning.Table
	just     *tuning.Table
	pool     *voice.Pool
	rng      *rand.Rand
	voices   [polyVoices]polyVoice

	out    []float64
	render func(start, end int)
	apply  func(event.Event)
}

func newPolySaw(ctx plugin.Context) (plugin.Plugin, error) {
	pool, err := voice.New(voice.WithVoices(polyVoices))
	if err != nil {
		return nil, err
	}

	p := &polySaw{
		dt:       1 / ctx.SampleRate,
		controls: ctx.Controls,
		host:     ctx.Tuning,
		just:     tuning.JustIntonation(),
		pool:     pool,
		rng:      rand.New(rand.NewPCG(polyDriftSeed, 0)),
	}
	p.render = p.renderRange
	p.apply = p.handle

	return p, nil
}

func (p *polySaw) Process(_, out [][]float64, events []event.Event, nframes int) {
	p.out = out[0]
	plugin.Run(p.controls, events, nframes, p.render, p.apply)
}

func (p *polySaw) Destroy() { p.out = nil }

// cents picks the tuning from the octave and fifth knobs: both at zero
// selects just intonation, both centred defers to the host table, and
// anything else is a meantone with the octave and fifth stretched by a
// tenth of a cent per step.
func (p *polySaw) cents(key int) float64 {
	oct, fifth := p.controls.Get(polyOctave), p.controls.Get(polyFifth)

	switch {
	case oct == 0 && fifth == 0:
		return keyCents(p.just, key)
	case oct == 64 && fifth == 64:
		return keyCents(p.host, key)
	default:
		return tuning.MeantoneCents(key, 1200+0.1*float64(oct-64), 700+0.1*float64(fifth-64))
	}
}

func (p *polySaw) handle(e event.Event) {
	key := int(e.Key)

	switch e.Kind {
	case event.NoteOn:
		idx, kind := p.pool.NoteOn(key)
		v := &p.voices[idx]

		switch kind {
		case voice.Glide:
			v.freq = core.ReferenceHz * core.CentsToRatio((p.cents(key)+p.cents(v.key))*0.5)
		case voice.Retrigger:
			v.vca.Trigger()
			v.vcf.Trigger()
		default:
			v.freq = core.ReferenceHz * core.CentsToRatio(p.cents(key))
			v.vca.Trigger()
			v.vcf.Trigger()
			v.lfo.Trigger()
		}

		v.key = key
		v.gain = velocity(e.Value)
	case event.NoteOff:
		if idx, ok := p.pool.NoteOff(key); ok {
			p.voices[idx].gain = 0
		}
	}
}

func (p *polySaw) renderRange(start, end int) {
	c := p.controls
	dt := p.dt

	vca := envelope.Params{
		Attack:  over128(c.Get(polyVCAAttack), 4) * 10000,
		Decay:   over128(c.Get(polyVCADecay), 4) * 10000,
		Sustain: over128(c.Get(polyVCASustain), 2),
		Release: over128(c.Get(polyVCARelease), 4) * 10000,
	}
	vcf := envelope.Params{
		Attack:  over128(c.Get(polyVCFAttack), 4) * 10000,
		Decay:   over128(c.Get(polyVCFDecay), 4) * 10000,
		Sustain: over128(c.Get(polyVCFSustain), 2),
		Release: over128(c.Get(polyVCFRelease), 4) * 10000,
		Shape:   2,
	}

	preGain := math.Pow(float64(c.Get(polyPreGain))/64, 2)
	reso := c.Ratio(polyResonance)
	clip := math.Pow(float64(c.Get(polyClip)+1)/64, 2)
	volume := core.ControlPow(c.Get(polyVolume), 2)
	drift := math.Pow(float64(c.Get(polyDrift)), 2) * math.Sqrt(dt)
	lfoDelay := 10 * over128(c.Get(polyLFODelay), 2)
	lfoFreq := 20 * over128(c.Get(polyLFOFreq), 2)
	oscLFO := 0.05 * over128(c.Get(polyOscLFO), 2)
	pw := 0.5 * over128(c.Get(polyPulseWidth), 1)
	pwLFO := 0.5 * over128(c.Get(polyPulseLFO), 1)
	tracking := c.Ratio(polyTracking)
	cutoffGain := core.Exp2(float64(c.Get(polyCutoff)-69+28) / 12)

	core.Zero(p.out[start:end])

	for vi := range p.voices {
		v := &p.voices[vi]
		cutoff := core.ReferenceHz * math.Pow(v.freq/polyTrackingRef, tracking) * cutoffGain

		for i := start; i < end; i++ {
			l := v.lfo.Tick(dt, lfoDelay, lfoFreq)
			inc := (v.freq*(1+oscLFO*l) + (2*p.rng.Float64()-1)*drift) * dt

			// The pulse is high while the saw is above the threshold,
			// which is a duty of (1-th)/2 for a saw in [-1,1].
			duty := core.Clamp((1-(pw+pwLFO*l))/2, 0, 1)
			x := 2 * polyPulseLevel * v.osc.PulseBox(inc, duty)

			f := cutoff * v.vcf.Tick(dt, v.gain, vcf)
			y := v.filter.Tick(dt, f, 6*reso, clip, x*preGain)

			p.out[i] += y * v.vca.Tick(dt, v.gain, vca) * volume
		}
	}
}
