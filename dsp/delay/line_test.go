package delay

import (
	"math"
	"testing"
)

func TestNewValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for size=0")
	}

	if _, err := NewRing(-1); err == nil {
		t.Fatal("expected error for ring size=-1")
	}
}

func TestReadWrite(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}

	for i := range 8 {
		d.Write(float64(i))
	}
	// delay=1 => most recently written (7)
	if got := d.Read(1); got != 7 {
		t.Fatalf("got %v want 7", got)
	}

	if got := d.Read(3); got != 5 {
		t.Fatalf("got %v want 5", got)
	}

	if got := d.Read(8); got != 0 {
		t.Fatalf("oldest: got %v want 0", got)
	}
}

func TestSetLenClampsAndWraps(t *testing.T) {
	d, err := New(10)
	if err != nil {
		t.Fatal(err)
	}

	for range 7 {
		d.Write(1)
	}

	d.SetLen(4)
	if d.Len() != 4 || d.writePos != 0 {
		t.Fatalf("Len=%d writePos=%d", d.Len(), d.writePos)
	}

	d.SetLen(100)
	if d.Len() != d.Cap() {
		t.Fatalf("Len got=%d want=%d", d.Len(), d.Cap())
	}

	d.SetLen(0)
	if d.Len() != 1 {
		t.Fatalf("Len got=%d want=1", d.Len())
	}
}

func TestAllpassIsLossless(t *testing.T) {
	d, err := New(37)
	if err != nil {
		t.Fatal(err)
	}

	energy := 0.0
	for i := range 20000 {
		x := 0.0
		if i == 0 {
			x = 1
		}

		y := d.Allpass(x, 0.7)
		energy += y * y
	}

	if math.Abs(energy-1) > 1e-9 {
		t.Fatalf("impulse response energy got=%g want=1", energy)
	}
}

func TestAllpassDelay(t *testing.T) {
	d, err := New(5)
	if err != nil {
		t.Fatal(err)
	}

	// Direct path is -k, the first echo arrives after Len samples.
	if got := d.Allpass(1, 0.5); got != -0.5 {
		t.Fatalf("direct got=%g want=-0.5", got)
	}

	for i := 1; i < 5; i++ {
		if got := d.Allpass(0, 0.5); got != 0 {
			t.Fatalf("sample %d got=%g want=0", i, got)
		}
	}

	if got := d.Allpass(0, 0.5); got != 0.75 {
		t.Fatalf("echo got=%g want=0.75", got)
	}
}

func TestRingWraps(t *testing.T) {
	r, err := NewRing(8)
	if err != nil {
		t.Fatal(err)
	}

	r.WriteAt(6, []float32{1, 2, 3, 4})

	got := make([]float32, 4)
	r.ReadAt(got, -2)

	for i, want := range []float32{1, 2, 3, 4} {
		if got[i] != want {
			t.Fatalf("got=%v", got)
		}
	}

	if r.buf[0] != 3 || r.buf[1] != 4 {
		t.Fatalf("wrapped write landed wrong: %v", r.buf)
	}

	r.SetLen(4)
	if r.Wrap(9) != 1 {
		t.Fatalf("Wrap(9) got=%d want=1", r.Wrap(9))
	}
}
