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
	s2OscMix      = 81
	s2PulseWidth  = 82
	s2PWMDepth    = 83
	s2PWMRate     = 84
	s2VibDepth    = 85
	s2VibRate     = 86
	s2VibDelay    = 87
	s2Cutoff      = 88
	s2Resonance   = 89
	s2Tracking    = 90
	s2Env1Amount  = 91
	s2Env2Amount  = 92
	s2Env1Speed   = 94
	s2Env1Decay   = 95
	s2Env2Speed   = 96
	s2Env2Decay   = 97
	s2VolumeMix   = 98
	s2Drive       = 99
	s2Volume      = 100
	s2Octave      = 101
	s2Fifth       = 102
	s2LinDrift    = 103
	s2LogDrift    = 104
	s2DriftCutoff = 105
	s2Voices      = 8
	s2DriftSeed   = 0xd21f7
)

// Synth2 describes the eight-voice saw/pulse synth with the implicit
// ladder and a tanh output stage.
func Synth2() plugin.Descriptor {
	ctl := func(cc int, display, persist string) plugin.Control {
		return plugin.Control{CC: cc, Display: display, Persist: persist, Default: 64}
	}

	return plugin.Descriptor{
		Name:        "synth2",
		Persistence: "mjack_synth2",
		Outputs:     Mono,
		MIDI:        true,
		Controls: []plugin.Control{
			ctl(s2OscMix, "Osc Mix", "osc_mix"),
			ctl(s2PulseWidth, "Pulse Width", "osc_pulse_width"),
			ctl(s2PWMDepth, "PWM Depth", "osc_pwm_depth"),
			ctl(s2PWMRate, "PWM Frequency", "osc_pwm_frequency"),
			ctl(s2VibDepth, "Vibrato Depth", "osc_vibrato_depth"),
			ctl(s2VibRate, "Vibrato Frequency", "osc_vibrato_frequency"),
			ctl(s2VibDelay, "Vibrato Delay", "osc_vibrato_delay"),
			ctl(s2Cutoff, "LPF Cutoff", "lpf_cutoff"),
			ctl(s2Resonance, "LPF Resonance", "lpf_resonance"),
			ctl(s2Tracking, "LPF Tracking", "lpf_tracking"),
			ctl(s2Env1Amount, "LPF Env1", "lpf_env1"),
			ctl(s2Env2Amount, "LPF Env2", "lpf_env2"),
			ctl(s2Env1Speed, "Env1 Speed", "env1_speed"),
			ctl(s2Env1Decay, "Env1 Decay", "env1_decay"),
			ctl(s2Env2Speed, "Env2 Speed", "env2_speed"),
			ctl(s2Env2Decay, "Env2 Decay", "env2_decay"),
			ctl(s2VolumeMix, "Volume Env Mix", "volume_env_mix"),
			ctl(s2Drive, "Drive", "drive"),
			ctl(s2Volume, "Volume", "volume"),
			ctl(s2Octave, "Octave", "octave"),
			ctl(s2Fifth, "Fifth", "fifth"),
			ctl(s2LinDrift, "Lin Drift", "lin_drift"),
			ctl(s2LogDrift, "Log Drift", "log_drift"),
			ctl(s2DriftCutoff, "Drift Cutoff", "drift_cutoff"),
		},
		Factory: newSynth2,
	}
}

type synth2Voice struct {
	key      int
	env1     envelope.Simple
	env2     envelope.Simple
	pwm      lfo.LFO
	vibrato  lfo.LFO
	linDrift float64
	logDrift float64
	osc      osc.Centered
	filter   ladder.State
}

type synth2 struct {
	dt        float64
	invSqrtDt float64
	controls  *plugin.Controls
	pool      *voice.Pool
	rng       *rand.Rand
	voices    [s2Voices]synth2Voice

	out    []float64
	render func(start, end int)
	apply  func(event.Event)
}

func newSynth2(ctx plugin.Context) (plugin.Plugin, error) {
	pool, err := voice.New(voice.WithVoices(s2Voices), voice.WithGlide(false))
	if err != nil {
		return nil, err
	}

	s := &synth2{
		dt:        1 / ctx.SampleRate,
		invSqrtDt: math.Sqrt(ctx.SampleRate),
		controls:  ctx.Controls,
		pool:      pool,
		rng:       rand.New(rand.NewPCG(s2DriftSeed, 0)),
	}
	for i := range s.voices {
		s.voices[i].key = 69
	}

	s.render = s.renderRange
	s.apply = s.handle

	return s, nil
}

func (s *synth2) Process(_, out [][]float64, events []event.Event, nframes int) {
	s.out = out[0]
	plugin.Run(s.controls, events, nframes, s.render, s.apply)
}

func (s *synth2) Destroy() { s.out = nil }

func (s *synth2) handle(e event.Event) {
	key := int(e.Key)

	switch e.Kind {
	case event.NoteOn:
		idx, kind := s.pool.NoteOn(key)
		if kind == voice.Retrigger {
			return
		}

		v := &s.voices[idx]
		v.key = key
		v.env1.Trigger()
		v.env2.Trigger()
		v.vibrato.Trigger()
	case event.NoteOff:
		if idx, ok := s.pool.NoteOff(key); ok {
			s.voices[idx].env1.Untrigger()
			s.voices[idx].env2.Untrigger()
		}
	}
}

func (s *synth2) noise() float64 {
	return 2*s.rng.Float64() - 1
}

func (s *synth2) renderRange(start, end int) {
	c := s.controls
	dt := s.dt

	mix := c.Ratio(s2OscMix)
	pw := over128(c.Get(s2PulseWidth), 2)
	pwmFreq := 20 * core.ControlPow(c.Get(s2PWMRate), 2)
	pwmDepth := over128(c.Get(s2PWMDepth), 1)
	vibDelay := 3 * core.ControlPow(c.Get(s2VibDelay), 2)
	vibFreq := 20 * core.ControlPow(c.Get(s2VibRate), 2)
	vibDepth := over128(c.Get(s2VibDepth), 2)
	env1Speed := over128(c.Get(s2Env1Speed), 2) * 10000
	env2Speed := over128(c.Get(s2Env2Speed), 2) * 10000
	env1Decay := over128(c.Get(s2Env1Decay), 4) * 100
	env2Decay := over128(c.Get(s2Env2Decay), 4) * 100

	lpfPitch := float64(c.Get(s2Cutoff) - (69 - 24))
	reso := c.Ratio(s2Resonance)
	tracking := c.Ratio(s2Tracking)
	env1Amount := core.ControlPow(c.Get(s2Env1Amount), 2) * core.MaxControl
	env2Amount := core.ControlPow(c.Get(s2Env2Amount), 2) * core.MaxControl

	volMix := c.Ratio(s2VolumeMix)
	drive := core.ControlPow(c.Get(s2Drive), 2) * 4
	gain := core.ControlPow(c.Get(s2Volume), 2)

	octave := 1200 + 0.1*float64(c.Get(s2Octave)-64)
	fifth := 700 + 0.1*float64(c.Get(s2Fifth)-64)

	driftCoeff := dt * 2 * math.Pi * core.ReferenceHz * math.Pow(float64(c.Get(s2DriftCutoff)+1)/128, 2)
	linAmount := c.Ratio(s2LinDrift) * s.invSqrtDt
	logAmount := c.Ratio(s2LogDrift) * 0.01 * s.invSqrtDt

	core.Zero(s.out[start:end])

	for vi := range s.voices {
		v := &s.voices[vi]
		pitch := tuning.MeantoneCents(v.key, octave, fifth) * 0.01

		for i := start; i < end; i++ {
			e1 := v.env1.Tick(dt, env1Speed, env1Decay)
			e2 := v.env2.Tick(dt, env2Speed, env2Decay)

			width := pw + pwmDepth*v.pwm.Tick(dt, 0, pwmFreq)
			vib := v.vibrato.Tick(dt, vibDelay, vibFreq)

			v.linDrift += (linAmount*s.noise() - v.linDrift) * driftCoeff
			v.logDrift += (logAmount*s.noise() - v.logDrift) * driftCoeff

			freq := core.ReferenceHz*core.Exp2((pitch+vibDepth*vib)/12)*(1+v.logDrift) + v.linDrift

			saw := v.osc.Tick(dt, freq)

			pulse := -polyPulseLevel
			if saw > width {
				pulse = polyPulseLevel
			}

			x := (1-mix)*saw + mix*pulse

			cutoff := core.ReferenceHz * core.Exp2((lpfPitch+tracking*(pitch+24)+env1Amount*e1+env2Amount*e2)/12)
			y := v.filter.TickNonlinear(dt, cutoff, 9*reso, 1, x*0.5)

			vol := (1-volMix)*e1 + volMix*e2
			s.out[i] += math.Tanh(y*vol*drive*4) * 0.25 * gain
		}
	}
}
