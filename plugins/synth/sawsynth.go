package synth

import (
	"math"

	"github.com/cwbudde/algo-mjack/dsp/core"
	"github.com/cwbudde/algo-mjack/dsp/event"
	"github.com/cwbudde/algo-mjack/dsp/filter/svf"
	"github.com/cwbudde/algo-mjack/dsp/osc"
	"github.com/cwbudde/algo-mjack/dsp/tuning"
	"github.com/cwbudde/algo-mjack/plugin"
)

const (
	sawVolume     = 7
	sawResonance  = 71
	sawGrit       = 75
	sawCutoff     = 77
	sawTracking   = 80
	sawPortamento = 81
	sawEnvelope   = 82
	sawVibDepth   = 83
	sawVibRate    = 84
	sawVibEnv     = 85
)

// SawSynth describes the monophonic saw lead.
func SawSynth() plugin.Descriptor {
	return plugin.Descriptor{
		Name:        "sawsynth",
		Persistence: "mjack_sawsynth",
		Outputs:     Mono,
		MIDI:        true,
		Controls: []plugin.Control{
			{CC: sawVolume, Display: "Volume", Persist: "volume", Default: 64},
			{CC: sawCutoff, Display: "Cutoff", Persist: "cutoff", Default: 64},
			{CC: sawResonance, Display: "Resonance", Persist: "resonance", Default: 64},
			{CC: sawTracking, Display: "Tracking", Persist: "tracking", Default: 64},
			{CC: sawGrit, Display: "Grit", Persist: "grit", Default: 0},
			{CC: sawPortamento, Display: "Portamento", Persist: "portamento", Default: 64},
			{CC: sawEnvelope, Display: "Envelope", Persist: "envelope", Default: 64},
			{CC: sawVibDepth, Display: "Vibrato Depth", Persist: "vibrato_depth", Default: 64},
			{CC: sawVibRate, Display: "Vibrato Rate", Persist: "vibrato_rate", Default: 64},
			{CC: sawVibEnv, Display: "Vibrato Envelope", Persist: "vibrato_envelope", Default: 64},
		},
		Factory: newSawSynth,
	}
}

type sawSynth struct {
	dt       float64
	controls *plugin.Controls
	tuning   *tuning.Table

	keys   heldKeys
	key    int
	gain   float64
	target float64

	freq     float64
	env      float64
	vibEnv   float64
	vibPhase float64
	osc      osc.Centered
	filter   svf.State

	out    []float64
	render func(start, end int)
	apply  func(event.Event)
}

func newSawSynth(ctx plugin.Context) (plugin.Plugin, error) {
	s := &sawSynth{
		dt:       1 / ctx.SampleRate,
		controls: ctx.Controls,
		tuning:   ctx.Tuning,
		key:      69,
	}
	s.render = s.renderRange
	s.apply = s.handle

	return s, nil
}

func (s *sawSynth) Process(_, out [][]float64, events []event.Event, nframes int) {
	s.out = out[0]
	plugin.Run(s.controls, events, nframes, s.render, s.apply)
}

func (s *sawSynth) Destroy() { s.out = nil }

// handle plays the last key pressed. The note only ends when every key is
// up.
func (s *sawSynth) handle(e event.Event) {
	switch e.Kind {
	case event.NoteOn:
		if !s.keys.press(e.Key) {
			return
		}

		s.key = int(e.Key)
		s.target = s.tuning.Hz(s.key)
		s.gain = velocity(e.Value)

		if s.freq == 0 {
			s.freq = s.target
		}
	case event.NoteOff:
		if s.keys.release(e.Key) {
			s.gain = 0
		}
	}
}

func (s *sawSynth) renderRange(start, end int) {
	c := s.controls
	dt := s.dt

	volume := core.ControlPow(c.Get(sawVolume), 2) * 0.25
	q := 1 - c.Ratio(sawResonance)
	grit := float64(1+c.Get(sawGrit)) * 2 / core.MaxControl
	port := math.Min(1, 1000*core.ControlPow(c.Get(sawPortamento), 3)*dt)
	envRate := math.Min(1, 2*math.Pi*1000*core.ControlPow(c.Get(sawEnvelope), 3)*dt)
	vibDepth := 0.015 * core.ControlPow(c.Get(sawVibDepth), 2)
	vibRate := 15 * core.ControlPow(c.Get(sawVibRate), 2)
	vibEnvRate := math.Min(1, 2*math.Pi*10*core.ControlPow(c.Get(sawVibEnv), 3)*dt)

	cutoff := core.ReferenceHz * core.Exp2(keyCents(s.tuning, s.key)/1200*c.Ratio(sawTracking)+
		float64(c.Get(sawCutoff)-69+12)/12)

	for i := start; i < end; i++ {
		s.vibPhase += vibRate * dt
		if s.vibPhase > 0.5 {
			s.vibPhase--
		}

		s.freq += (s.target - s.freq) * port
		s.vibEnv += (s.gain*vibDepth - s.vibEnv) * vibEnvRate
		x := 0.5 * s.osc.Tick(dt, s.freq*(1+s.vibEnv*math.Sin(2*math.Pi*s.vibPhase)))

		s.env += (s.gain - s.env) * envRate
		y := s.filter.TickNonlinear(dt, cutoff*(1+10*s.env), q, grit, x)

		s.out[i] = y * s.env * volume
	}
}
