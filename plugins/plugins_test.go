package plugins

import (
	"bytes"
	"testing"

	"github.com/cwbudde/algo-mjack/dsp/core"
	"github.com/cwbudde/algo-mjack/dsp/event"
	"github.com/cwbudde/algo-mjack/plugin"
)

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()
	want := []string{
		"apchain", "formant", "hpf", "kick", "msreverb", "parametric",
		"polysaw", "reverb", "reverb2", "sawsynth", "synth2", "tanhdist",
	}

	names := r.Names()
	if len(names) != len(want) {
		t.Fatalf("Names=%v, want %v", names, want)
	}

	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names[%d]=%q, want %q", i, names[i], want[i])
		}
	}
}

func TestEveryPluginPersists(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()

	for _, name := range r.Names() {
		src, err := r.New(name, plugin.Context{SampleRate: 44100})
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}

		dst, err := r.New(name, plugin.Context{SampleRate: 44100})
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}

		for _, c := range src.Descriptor().Controls {
			src.Controls().Set(c.CC, 127-c.Default)
		}

		var buf bytes.Buffer
		if err := plugin.SaveState(&buf, src.Descriptor().Persistence, src.Controls()); err != nil {
			t.Fatalf("%s: SaveState: %v", name, err)
		}

		if _, err := plugin.LoadState(&buf, dst.Controls()); err != nil {
			t.Fatalf("%s: LoadState: %v", name, err)
		}

		for _, c := range src.Descriptor().Controls {
			if c.Persist == "" {
				continue
			}

			if got := dst.Controls().Get(c.CC); got != 127-c.Default {
				t.Errorf("%s: control %d restored as %d, want %d", name, c.CC, got, 127-c.Default)
			}
		}

		src.Destroy()
		dst.Destroy()
	}
}

func TestEveryPluginSilentAfterDestroy(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()

	for _, name := range r.Names() {
		inst, err := r.New(name, plugin.Context{SampleRate: 44100})
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}

		d := inst.Descriptor()
		in := core.NewBuffers(len(d.Inputs), 64)
		out := core.NewBuffers(len(d.Outputs), 64)

		for _, buf := range in {
			buf[0] = 1
		}

		inst.Process(in, out, []event.Event{{Kind: event.NoteOn, Key: 60, Value: 100}}, 64)

		inst.Destroy()
		inst.Destroy()

		for _, buf := range out {
			buf[10] = 1
		}

		inst.Process(in, out, []event.Event{{Kind: event.NoteOn, Key: 64, Value: 100}}, 64)

		for ch, buf := range out {
			for i, v := range buf {
				if v != 0 {
					t.Fatalf("%s: out %d[%d] = %g after Destroy", name, ch, i, v)
				}
			}
		}
	}
}
