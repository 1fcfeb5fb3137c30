package plugin

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/cwbudde/algo-mjack/dsp/event"
)

type stubPlugin struct {
	ctx       Context
	destroyed bool
}

func (s *stubPlugin) Process(in, out [][]float64, _ []event.Event, nframes int) {
	for c := range out {
		for i := range nframes {
			out[c][i] = float64(s.ctx.Controls.Get(1))
		}
	}
}

func (s *stubPlugin) Destroy() {
	if s.destroyed {
		panic("plugin destroyed twice")
	}

	s.destroyed = true
}

func stubDescriptor(name string) Descriptor {
	return Descriptor{
		Name:        name,
		Persistence: "mjack_" + name,
		Outputs:     []string{"out"},
		Controls: []Control{
			{CC: 1, Display: "Level", Persist: "level", Default: 64},
			{CC: 7, Display: "Volume", Persist: "volume", Default: 100},
			{CC: 9, Display: "Scratch"},
		},
		Factory: func(ctx Context) (Plugin, error) {
			return &stubPlugin{ctx: ctx}, nil
		},
	}
}

func TestControlsDeclare(t *testing.T) {
	t.Parallel()

	t.Run("sets default", func(t *testing.T) {
		t.Parallel()

		c := NewControls()
		if err := c.Declare(Control{CC: 5, Persist: "a", Default: 33}); err != nil {
			t.Fatalf("Declare: %v", err)
		}

		if got := c.Get(5); got != 33 {
			t.Fatalf("Get(5)=%d, want 33", got)
		}
	})

	t.Run("rejects out of range", func(t *testing.T) {
		t.Parallel()

		c := NewControls()
		for _, cc := range []int{-1, 128} {
			if err := c.Declare(Control{CC: cc}); err == nil {
				t.Fatalf("expected error for cc=%d", cc)
			}
		}
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		t.Parallel()

		c := NewControls()
		_ = c.Declare(Control{CC: 5, Persist: "a"})

		if err := c.Declare(Control{CC: 5, Persist: "b"}); err == nil {
			t.Fatal("expected error for slot declared twice")
		}

		if err := c.Declare(Control{CC: 6, Persist: "a"}); err == nil {
			t.Fatal("expected error for reused persistence key")
		}
	})
}

func TestControlsSetClamps(t *testing.T) {
	t.Parallel()

	c := NewControls()

	c.Set(3, 200)
	if got := c.Get(3); got != 127 {
		t.Fatalf("Set 200: got %d, want 127", got)
	}

	c.Set(3, -4)
	if got := c.Get(3); got != 0 {
		t.Fatalf("Set -4: got %d, want 0", got)
	}

	c.Set(128, 10)
	c.Set(-1, 10)

	if got := c.Get(128); got != 0 {
		t.Fatalf("Get(128)=%d, want 0", got)
	}

	c.Set(4, 127)
	if got := c.Ratio(4); got != 1 {
		t.Fatalf("Ratio=%f, want 1", got)
	}
}

func TestControlsSnapshotRestore(t *testing.T) {
	t.Parallel()

	c := NewControls()
	for _, ctl := range stubDescriptor("x").Controls {
		_ = c.Declare(ctl)
	}

	c.Set(9, 77)

	snap := c.Snapshot()
	if len(snap) != 2 || snap["level"] != 64 || snap["volume"] != 100 {
		t.Fatalf("unexpected snapshot: %v", snap)
	}

	unknown := c.Restore(map[string]int{"level": 10, "bogus": 3})
	if len(unknown) != 1 || unknown[0] != "bogus" {
		t.Fatalf("unknown=%v, want [bogus]", unknown)
	}

	if c.Get(1) != 10 || c.Get(7) != 100 || c.Get(9) != 77 {
		t.Fatalf("restore touched the wrong slots: %d %d %d", c.Get(1), c.Get(7), c.Get(9))
	}
}

func TestStateRoundTrip(t *testing.T) {
	t.Parallel()

	src := NewControls()
	dst := NewControls()

	for _, ctl := range stubDescriptor("x").Controls {
		_ = src.Declare(ctl)
		_ = dst.Declare(ctl)
	}

	src.Set(1, 5)
	src.Set(7, 126)

	var buf bytes.Buffer
	if err := SaveState(&buf, "mjack_x", src); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	if !strings.Contains(buf.String(), `"info": "mjack_x"`) {
		t.Fatalf("state lacks info field:\n%s", buf.String())
	}

	unknown, err := LoadState(&buf, dst)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}

	if len(unknown) != 0 {
		t.Fatalf("unexpected unknown keys %v", unknown)
	}

	if dst.Get(1) != 5 || dst.Get(7) != 126 {
		t.Fatalf("restored %d %d, want 5 126", dst.Get(1), dst.Get(7))
	}
}

func TestLoadStateErrors(t *testing.T) {
	t.Parallel()

	for _, doc := range []string{"", "{", `{"info":"x"}`, `{"cc":{"level":"high"}}`} {
		c := NewControls()
		if _, err := LoadState(strings.NewReader(doc), c); err == nil {
			t.Errorf("expected error for %q", doc)
		}
	}
}

func TestLoadStateSkipsUnknownAndMissing(t *testing.T) {
	t.Parallel()

	c := NewControls()
	for _, ctl := range stubDescriptor("x").Controls {
		_ = c.Declare(ctl)
	}

	unknown, err := LoadState(strings.NewReader(`{"info":"x","cc":{"zeta":1,"alpha":2,"volume":300}}`), c)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}

	if len(unknown) != 2 || unknown[0] != "alpha" || unknown[1] != "zeta" {
		t.Fatalf("unknown=%v, want [alpha zeta]", unknown)
	}

	if c.Get(7) != 127 || c.Get(1) != 64 {
		t.Fatalf("got volume=%d level=%d, want 127 64", c.Get(7), c.Get(1))
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("registers and looks up", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		if err := r.Register(stubDescriptor("b")); err != nil {
			t.Fatalf("Register: %v", err)
		}

		r.MustRegister(stubDescriptor("a"))

		d, err := r.Lookup("b")
		if err != nil || d.Name != "b" {
			t.Fatalf("Lookup: %v %q", err, d.Name)
		}

		names := r.Names()
		if len(names) != 2 || names[0] != "a" || names[1] != "b" {
			t.Fatalf("Names=%v", names)
		}
	})

	t.Run("rejects bad descriptors", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		if err := r.Register(Descriptor{Factory: stubDescriptor("a").Factory}); err == nil {
			t.Fatal("expected error for empty name")
		}

		if err := r.Register(Descriptor{Name: "a"}); err == nil {
			t.Fatal("expected error for nil factory")
		}

		_ = r.Register(stubDescriptor("a"))

		err := r.Register(stubDescriptor("a"))
		if !errors.Is(err, ErrDuplicatePlugin) {
			t.Fatalf("expected ErrDuplicatePlugin, got %v", err)
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		if _, err := r.Lookup("nope"); !errors.Is(err, ErrUnknownPlugin) {
			t.Fatalf("expected ErrUnknownPlugin, got %v", err)
		}

		if _, err := r.New("nope", Context{SampleRate: 48000}); !errors.Is(err, ErrUnknownPlugin) {
			t.Fatalf("expected ErrUnknownPlugin, got %v", err)
		}
	})

	t.Run("MustRegister panics on duplicate", func(t *testing.T) {
		t.Parallel()

		defer func() {
			if recover() == nil {
				t.Fatal("expected panic")
			}
		}()

		r := NewRegistry()
		r.MustRegister(stubDescriptor("a"))
		r.MustRegister(stubDescriptor("a"))
	})
}

func TestInstance(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.MustRegister(stubDescriptor("stub"))

	if _, err := r.New("stub", Context{}); err == nil {
		t.Fatal("expected error for zero sample rate")
	}

	inst, err := r.New("stub", Context{SampleRate: 48000})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	inst.Controls().Set(1, 42)

	out := [][]float64{make([]float64, 16)}
	inst.Process(nil, out, nil, 16)

	if out[0][15] != 42 {
		t.Fatalf("plugin did not see the bound controls: %f", out[0][15])
	}

	stub := inst.plugin.(*stubPlugin)
	if stub.ctx.Tuning == nil || stub.ctx.Logger == nil {
		t.Fatal("context defaults were not filled in")
	}

	inst.Destroy()

	if !stub.destroyed {
		t.Fatal("Destroy was not forwarded")
	}

	inst.Destroy()

	out[0][3] = 1
	inst.Process(nil, out, nil, 8)

	if out[0][3] != 0 || out[0][15] != 42 {
		t.Fatalf("destroyed instance wrote %v", out[0])
	}
}

func TestInstanceRejectsBadControls(t *testing.T) {
	t.Parallel()

	d := stubDescriptor("bad")
	d.Controls = append(d.Controls, Control{CC: 1})

	if _, err := NewInstance(d, Context{SampleRate: 48000}); err == nil {
		t.Fatal("expected error for duplicate control slot")
	}
}

func TestRunAppliesControlsAtTimestamp(t *testing.T) {
	t.Parallel()

	c := NewControls()
	_ = c.Declare(Control{CC: 7, Default: 0})

	out := make([]float64, 64)
	events := []event.Event{
		{Time: 10, Kind: event.ControlChange, Key: 7, Value: 100},
		{Time: 20, Kind: event.NoteOn, Key: 60, Value: 90},
	}

	var notes int

	Run(c, events, len(out), func(start, end int) {
		v := float64(c.Get(7))
		for i := start; i < end; i++ {
			out[i] = v
		}
	}, func(e event.Event) {
		if e.Kind == event.ControlChange {
			t.Error("control change leaked to apply")
		}

		notes++
	})

	if out[9] != 0 || out[10] != 100 || out[63] != 100 {
		t.Fatalf("control not applied at its timestamp: %v %v %v", out[9], out[10], out[63])
	}

	if notes != 1 {
		t.Fatalf("apply saw %d events, want 1", notes)
	}

	Run(c, events, len(out), func(int, int) {}, nil)
}
