package ladder

import (
	"fmt"
	"math"
	"testing"

	"github.com/cwbudde/algo-mjack/internal/testutil"
)

const (
	sampleRate = 48000.0
	dt         = 1 / sampleRate
)

func TestUnityDCWithoutFeedback(t *testing.T) {
	tests := []struct {
		name string
		tick func(s *State, in float64) float64
	}{
		{name: "saturating", tick: func(s *State, in float64) float64 { return s.Tick(dt, 2000, 0, 1, in) }},
		{name: "implicit", tick: func(s *State, in float64) float64 { return s.TickNonlinear(dt, 2000, 0, 1, in) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s State

			var y float64
			for range 48000 {
				y = tt.tick(&s, 0.1)
			}

			if math.Abs(y-0.1) > 1e-9 {
				t.Fatalf("DC output got=%g want=0.1", y)
			}
		})
	}
}

func TestFeedbackLowersDCGain(t *testing.T) {
	var s State

	var y float64
	for range 48000 {
		y = s.TickNonlinear(dt, 2000, 4, 1, 0.01)
	}

	// Small-signal equilibrium is in/(1+fb).
	if want := 0.01 / 5; math.Abs(y-want) > 1e-6 {
		t.Fatalf("DC output got=%g want=%g", y, want)
	}
}

func TestImplicitMatchesClosedFormStep(t *testing.T) {
	s := State{Z0: 0.2, Z1: -0.1, Z2: 0.05, OldIn: 0.3}
	ref := s

	const (
		freq = 3000.0
		fb   = 6.0
		clip = 0.8
		in   = 0.45
	)

	got := s.TickNonlinear(dt, freq, fb, clip, in)

	// Solve the three coupled increments by fixed-point iteration of the
	// uncollapsed equations; it must land on the closed form.
	k := math.Min(1, dt*2*math.Pi*freq)
	sg := func(x float64) float64 {
		if math.Abs(x) < 1e-20 {
			return 1
		}
		return math.Tanh(x) / x
	}

	fbe := fb * sg(ref.Z2*fb/clip) * clip
	u0 := ref.OldIn - ref.Z0 - fbe*ref.Z2
	u1 := ref.Z0 - ref.Z1
	u2 := ref.Z1 - ref.Z2
	k0, k1, k2 := k*sg(u0), k*sg(u1), k*sg(u2)
	step := in - ref.OldIn

	var d0, d1, d2 float64
	for range 200 {
		d0 = k0*u0 + k0*0.5*(step-fbe*d2)
		d1 = k1*u1 + k1*0.5*d0
		d2 = k2*u2 + k2*0.5*d1
	}

	if want := ref.Z2 + d2; math.Abs(got-want) > 1e-12 {
		t.Fatalf("TickNonlinear() got=%.15g want=%.15g", got, want)
	}

	if want := ref.Z0 + d0; math.Abs(s.Z0-want) > 1e-12 {
		t.Fatalf("z0 got=%.15g want=%.15g", s.Z0, want)
	}

	if want := ref.Z1 + d1; math.Abs(s.Z1-want) > 1e-12 {
		t.Fatalf("z1 got=%.15g want=%.15g", s.Z1, want)
	}

	if s.OldIn != in {
		t.Fatalf("OldIn got=%g want=%g", s.OldIn, in)
	}
}

func TestStabilityBoundedInput(t *testing.T) {
	const n = 1_000_000

	in := testutil.Square(113, 0.5, n)

	for _, cutoff := range []float64{30, 800, 9000, 0.49 * sampleRate} {
		for _, fb := range []float64{0, 4.5, 9} {
			t.Run(fmt.Sprintf("f=%g/fb=%g", cutoff, fb), func(t *testing.T) {
				var sat, impl State

				var four Four

				var ms MS20

				peak := 0.0
				freqs := [4]float64{cutoff, cutoff, cutoff, cutoff}
				for _, x := range in {
					peak = math.Max(peak, math.Abs(sat.Tick(dt, cutoff, fb, 1, x)))
					peak = math.Max(peak, math.Abs(impl.TickNonlinear(dt, cutoff, fb, 1, x)))
					peak = math.Max(peak, math.Abs(four.Tick(dt, freqs, fb/2, 1, x)))
					peak = math.Max(peak, math.Abs(ms.TickLP(dt, cutoff, fb/9, 1, x)))
				}

				if peak > 10 || math.IsNaN(peak) {
					t.Fatalf("peak got=%g", peak)
				}
			})
		}
	}
}

func TestResonanceSelfOscillates(t *testing.T) {
	var quiet, loud State

	// Kick both filters with an impulse and compare the ringing energy.
	tail := func(s *State, fb float64) float64 {
		sum := 0.0
		for i := range 20000 {
			x := 0.0
			if i == 0 {
				x = 0.5
			}

			y := s.TickNonlinear(dt, 1000, fb, 1, x)
			if i > 10000 {
				sum += y * y
			}
		}

		return sum
	}

	if q, l := tail(&quiet, 1), tail(&loud, 9); l <= q {
		t.Fatalf("fb=9 tail energy %g not above fb=1 tail %g", l, q)
	}
}

func TestMS20HighPassBlocksDC(t *testing.T) {
	var m MS20

	var y float64
	for range 48000 {
		y = m.TickHP(dt, 500, 0.2, 1, 0.3)
	}

	if math.Abs(y) > 1e-6 {
		t.Fatalf("high-pass DC output got=%g want=0", y)
	}
}

func BenchmarkTickNonlinear(b *testing.B) {
	var s State

	b.ReportAllocs()

	for i := range b.N {
		_ = s.TickNonlinear(dt, 1500, 5, 1, float64(i&1)-0.5)
	}
}

func TestFourDCGain(t *testing.T) {
	freqs := [4]float64{1500, 2000, 2500, 3000}

	for _, fb := range []float64{0, 1, 3} {
		t.Run(fmt.Sprintf("fb=%g", fb), func(t *testing.T) {
			var f Four

			var y float64
			for range 48000 {
				y = f.Tick(dt, freqs, fb, 1, 0.01)
			}

			if want := 0.01 / (1 + fb); math.Abs(y-want) > 1e-5 {
				t.Fatalf("DC output got=%g want=%g", y, want)
			}

			f.Reset()
			if f.Z != [4]float64{} {
				t.Fatalf("Reset left %v", f.Z)
			}
		})
	}
}
