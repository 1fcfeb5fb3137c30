package synth

import (
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-mjack/dsp/core"
	"github.com/cwbudde/algo-mjack/dsp/event"
	"github.com/cwbudde/algo-mjack/dsp/tuning"
	"github.com/cwbudde/algo-mjack/dsp/voice"
	"github.com/cwbudde/algo-mjack/plugin"
)

const (
	kickOscs     = 4
	kickVoices   = 8
	kickFreq     = 80
	kickAmp      = 90
	kickDecay    = 100
	kickRelease  = 110
	kickFineTune = 120
	kickLevel    = 0.5
)

// Kick describes the drum voice built from decaying complex phasors. Each
// key strikes four partials whose pitch, level and decay are set per
// partial; the decay rate scales with the partial's frequency.
func Kick() plugin.Descriptor {
	d := plugin.Descriptor{
		Name:        "kick",
		Persistence: "mjack_kick3",
		Outputs:     Mono,
		MIDI:        true,
		Factory:     newKick,
	}

	for _, group := range []struct {
		cc      int
		display string
		persist string
	}{
		{kickFreq, "Freq", "freq"},
		{kickAmp, "Amp", "amp"},
		{kickDecay, "Decay", "decay"},
		{kickRelease, "Release", "release"},
	} {
		for o := range kickOscs {
			d.Controls = append(d.Controls, plugin.Control{
				CC:      group.cc + o,
				Display: group.display + " " + string('A'+rune(o)),
				Persist: group.persist + "_" + string('a'+rune(o)),
				Default: 64,
			})
		}
	}

	d.Controls = append(d.Controls, plugin.Control{CC: kickFineTune, Display: "Fine Tune", Persist: "fine_tune", Default: 64})

	return d
}

type kick struct {
	dt       float64
	controls *plugin.Controls
	tuning   *tuning.Table
	pool     *voice.Pool

	keys [kickVoices]int
	gate [kickVoices]bool
	osc  [kickVoices][kickOscs]complex128
	step [kickVoices][kickOscs]complex128

	out    []float64
	render func(start, end int)
	apply  func(event.Event)
}

func newKick(ctx plugin.Context) (plugin.Plugin, error) {
	k := &kick{
		dt:       1 / ctx.SampleRate,
		controls: ctx.Controls,
		tuning:   ctx.Tuning,
	}

	pool, err := voice.New(
		voice.WithVoices(kickVoices),
		voice.WithStealPolicy(voice.StealQuietest),
		voice.WithEnergy(k.energy),
		voice.WithGlide(false),
	)
	if err != nil {
		return nil, err
	}

	k.pool = pool
	k.render = k.renderRange
	k.apply = k.handle

	return k, nil
}

func (k *kick) Process(_, out [][]float64, events []event.Event, nframes int) {
	k.out = out[0]
	plugin.Run(k.controls, events, nframes, k.render, k.apply)
}

func (k *kick) Destroy() { k.out = nil }

// energy is the summed squared magnitude of a voice's partials.
func (k *kick) energy(v int) float64 {
	var e float64
	for _, z := range k.osc[v] {
		e += real(z)*real(z) + imag(z)*imag(z)
	}

	return e
}

// handle adds to the running phasors rather than resetting them, so a
// re-struck voice does not click.
func (k *kick) handle(e event.Event) {
	key := int(e.Key)

	switch e.Kind {
	case event.NoteOn:
		v, _ := k.pool.NoteOn(key)
		k.keys[v] = key
		k.gate[v] = true

		vel := velocity(e.Value)
		for o := range kickOscs {
			k.osc[v][o] += complex(vel*core.ControlPow(k.controls.Get(kickAmp+o), 3), 0)
		}
	case event.NoteOff:
		for v := range kickVoices {
			if k.keys[v] == key {
				k.gate[v] = false
			}
		}

		k.pool.NoteOff(key)
	}
}

func (k *kick) renderRange(start, end int) {
	c := k.controls
	fine := float64(c.Get(kickFineTune)-64) / 64

	for v := range kickVoices {
		base := k.tuning.Hz(k.keys[v])

		for o := range kickOscs {
			rate := over128(c.Get(kickRelease+o), 5) * 100
			if k.gate[v] {
				rate = over128(c.Get(kickDecay+o), 5) * 100
			}

			f := base * core.Exp2((float64(c.Get(kickFreq+o)-64)+fine)/12)
			k.step[v][o] = cmplx.Exp(complex(-k.dt*f*rate, -k.dt*f*2*math.Pi))
		}
	}

	for i := start; i < end; i++ {
		var sum float64

		for v := range kickVoices {
			for o := range kickOscs {
				k.osc[v][o] *= k.step[v][o]
				sum += imag(k.osc[v][o])
			}
		}

		k.out[i] = sum * kickLevel
	}
}
