package synth

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-mjack/dsp/event"
	"github.com/cwbudde/algo-mjack/dsp/tuning"
	"github.com/cwbudde/algo-mjack/dsp/voice"
	"github.com/cwbudde/algo-mjack/internal/testutil"
	"github.com/cwbudde/algo-mjack/measure/spectral"
	"github.com/cwbudde/algo-mjack/plugin"
)

const testRate = 48000.0

func newTestPlugin(t *testing.T, d plugin.Descriptor) (plugin.Plugin, *plugin.Controls) {
	t.Helper()

	controls := plugin.NewControls()
	for _, c := range d.Controls {
		if err := controls.Declare(c); err != nil {
			t.Fatalf("%s: Declare: %v", d.Name, err)
		}
	}

	p, err := d.Factory(plugin.Context{
		SampleRate: testRate,
		Tuning:     tuning.EqualTemperament(),
		Controls:   controls,
	})
	if err != nil {
		t.Fatalf("%s: factory: %v", d.Name, err)
	}

	return p, controls
}

func render(p plugin.Plugin, events []event.Event, n int) []float64 {
	out := [][]float64{make([]float64, n)}
	p.Process(nil, out, events, n)

	return out[0]
}

func noteOn(time, key int) event.Event {
	return event.Event{Time: time, Kind: event.NoteOn, Key: uint8(key), Value: 100}
}

func noteOff(time, key int) event.Event {
	return event.Event{Time: time, Kind: event.NoteOff, Key: uint8(key), Value: 64}
}

func TestDescriptors(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}

	for _, d := range All() {
		if seen[d.Name] {
			t.Fatalf("duplicate name %q", d.Name)
		}

		seen[d.Name] = true

		if !d.MIDI || len(d.Outputs) != 1 || len(d.Inputs) != 0 {
			t.Errorf("%s: unexpected ports: midi=%v in=%v out=%v", d.Name, d.MIDI, d.Inputs, d.Outputs)
		}

		if _, err := plugin.NewInstance(d, plugin.Context{SampleRate: testRate}); err != nil {
			t.Errorf("%s: NewInstance: %v", d.Name, err)
		}
	}

	if len(seen) != 5 {
		t.Fatalf("got %d instruments, want 5", len(seen))
	}
}

func TestSilentWithoutNotes(t *testing.T) {
	t.Parallel()

	for _, d := range All() {
		t.Run(d.Name, func(t *testing.T) {
			t.Parallel()

			p, _ := newTestPlugin(t, d)
			testutil.RequireSilent(t, render(p, nil, 1024))
		})
	}
}

func TestNoteStartsOnItsFrame(t *testing.T) {
	t.Parallel()

	for _, d := range All() {
		t.Run(d.Name, func(t *testing.T) {
			t.Parallel()

			p, _ := newTestPlugin(t, d)
			out := render(p, []event.Event{noteOn(100, 60)}, 512)

			testutil.RequireSilent(t, out[:100])
			testutil.RequireFinite(t, out)

			if testutil.Peak(out[100:]) < 1e-6 {
				t.Fatalf("no output after the note: peak=%g", testutil.Peak(out[100:]))
			}
		})
	}
}

func TestNotesDecayAfterRelease(t *testing.T) {
	t.Parallel()

	for _, d := range All() {
		t.Run(d.Name, func(t *testing.T) {
			t.Parallel()

			p, _ := newTestPlugin(t, d)
			on := render(p, []event.Event{noteOn(0, 57), noteOn(0, 64)}, 4800)
			render(p, []event.Event{noteOff(0, 57), noteOff(0, 64)}, int(testRate)*4)
			tail := render(p, nil, 4800)

			testutil.RequireFinite(t, on)

			if testutil.Peak(on) > 4 {
				t.Fatalf("output peak %g is implausible", testutil.Peak(on))
			}

			if got, ref := testutil.RMS(tail), testutil.RMS(on); got > ref*1e-3 {
				t.Fatalf("tail rms=%g not well below note rms=%g", got, ref)
			}
		})
	}
}

func TestSawSynthKeyCounting(t *testing.T) {
	t.Parallel()

	p, _ := newTestPlugin(t, SawSynth())
	s := p.(*sawSynth)

	render(p, []event.Event{noteOn(0, 60), noteOn(10, 64), noteOn(20, 64)}, 64)

	if s.key != 64 || s.target != tuning.EqualTemperament().Hz(64) {
		t.Fatalf("last key should set the pitch: key=%d target=%f", s.key, s.target)
	}

	render(p, []event.Event{noteOff(0, 60)}, 64)

	if s.gain == 0 {
		t.Fatal("releasing one of two held keys ended the note")
	}

	render(p, []event.Event{noteOff(0, 60)}, 64)

	if s.gain == 0 {
		t.Fatal("a repeated note-off counted twice")
	}

	render(p, []event.Event{noteOff(0, 64)}, 64)

	if s.gain != 0 {
		t.Fatalf("gain=%f after every key was released", s.gain)
	}
}

func TestSawSynthPitch(t *testing.T) {
	t.Parallel()

	p, c := newTestPlugin(t, SawSynth())
	c.Set(sawVibDepth, 0)
	c.Set(sawCutoff, 127)
	c.Set(sawResonance, 0)

	render(p, []event.Event{noteOn(0, 69)}, 4800)
	out := render(p, nil, 8192)

	res, err := spectral.Analyze(out, testRate)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if math.Abs(res.Fundamental-440) > 440*0.01 {
		t.Fatalf("fundamental=%f, want 440", res.Fundamental)
	}
}

func TestPolySawAllocation(t *testing.T) {
	t.Parallel()

	p, _ := newTestPlugin(t, PolySaw())
	ps := p.(*polySaw)

	render(p, []event.Event{noteOn(0, 60), noteOn(0, 64), noteOff(0, 60), noteOn(0, 67)}, 64)

	if got := ps.pool.Active(); got != 2 {
		t.Fatalf("active voices=%d, want 2", got)
	}

	held := 0
	for _, v := range ps.voices {
		if v.gain > 0 {
			held++
		}
	}

	if held != 2 {
		t.Fatalf("voices with gain=%d, want 2", held)
	}
}

func TestPolySawGlide(t *testing.T) {
	t.Parallel()

	p, _ := newTestPlugin(t, PolySaw())
	ps := p.(*polySaw)
	et := tuning.EqualTemperament()

	render(p, []event.Event{noteOn(0, 60)}, 16)
	render(p, []event.Event{noteOn(0, 61)}, 16)

	if got := ps.pool.Active(); got != 1 {
		t.Fatalf("neighbouring key took a second voice: active=%d", got)
	}

	idx := -1
	for i := range ps.voices {
		if ps.voices[i].key == 61 {
			idx = i
		}
	}

	if idx < 0 {
		t.Fatal("no voice plays key 61")
	}

	want := math.Sqrt(et.Hz(60) * et.Hz(61))
	if got := ps.voices[idx].freq; math.Abs(got-want) > 1e-9*want {
		t.Fatalf("glide freq=%f, want %f", got, want)
	}
}

func TestPolySawTuningSelection(t *testing.T) {
	t.Parallel()

	p, c := newTestPlugin(t, PolySaw())
	ps := p.(*polySaw)
	ji := tuning.JustIntonation()

	if got, want := ps.cents(64), -500.0; math.Abs(got-want) > 1e-9 {
		t.Fatalf("centred knobs: cents(64)=%f, want %f", got, want)
	}

	c.Set(polyOctave, 0)
	c.Set(polyFifth, 0)

	if got := ps.cents(64); got != ji.Cents[64] {
		t.Fatalf("just intonation: cents(64)=%f, want %f", got, ji.Cents[64])
	}

	c.Set(polyOctave, 64)
	c.Set(polyFifth, 54)

	if got, want := ps.cents(64), tuning.MeantoneCents(64, 1200, 699); math.Abs(got-want) > 1e-9 {
		t.Fatalf("meantone: cents(64)=%f, want %f", got, want)
	}
}

func TestSynth2IgnoresRepeatedNoteOn(t *testing.T) {
	t.Parallel()

	p, _ := newTestPlugin(t, Synth2())
	s := p.(*synth2)

	render(p, []event.Event{noteOn(0, 60)}, 4800)

	var v *synth2Voice
	for i := range s.voices {
		if s.voices[i].key == 60 && s.pool.Held(i) {
			v = &s.voices[i]
		}
	}

	if v == nil {
		t.Fatal("no voice holds key 60")
	}

	before := v.env1.Raw
	render(p, []event.Event{noteOn(0, 60)}, 1)

	if v.env1.Raw >= 1 || v.env1.Raw > before {
		t.Fatalf("repeated note-on retriggered the envelope: %f -> %f", before, v.env1.Raw)
	}

	if s.pool.Active() != 1 {
		t.Fatalf("active=%d, want 1", s.pool.Active())
	}
}

func TestKickPitchAndStealing(t *testing.T) {
	t.Parallel()

	p, c := newTestPlugin(t, Kick())
	k := p.(*kick)

	for o := range kickOscs {
		c.Set(kickDecay+o, 10)
	}

	out := render(p, []event.Event{noteOn(0, 69)}, int(testRate))

	if got := spectral.ZeroCrossingFrequency(out, testRate); math.Abs(got-440) > 1 {
		t.Fatalf("kick pitch=%f, want 440", got)
	}

	if k.keys[0] != 69 {
		t.Fatalf("first note landed on voice with key %d", k.keys[0])
	}

	// Seven fresh notes fill the silent voices; the eighth must replace the
	// partly decayed voice 0.
	for key := 40; key < 48; key++ {
		render(p, []event.Event{noteOn(0, key)}, 1)
	}

	if k.keys[0] != 47 {
		t.Fatalf("voice 0 plays %d, want 47 to have replaced the quietest voice", k.keys[0])
	}

	v, kind := k.pool.NoteOn(41)
	if kind != voice.Retrigger || k.keys[v] != 41 {
		t.Fatalf("same key should reuse its voice: kind=%v key=%d", kind, k.keys[v])
	}
}

func TestProcessDoesNotAllocate(t *testing.T) {
	for _, d := range All() {
		p, _ := newTestPlugin(t, d)
		out := [][]float64{make([]float64, 256)}
		events := []event.Event{
			noteOn(0, 60),
			{Time: 50, Kind: event.ControlChange, Key: 7, Value: 90},
			noteOff(200, 60),
		}

		allocs := testing.AllocsPerRun(20, func() {
			p.Process(nil, out, events, 256)
		})
		if allocs != 0 {
			t.Errorf("%s: Process allocated %.0f times per block", d.Name, allocs)
		}
	}
}
