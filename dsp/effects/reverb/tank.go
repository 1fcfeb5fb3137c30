package reverb

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/cwbudde/algo-mjack/dsp/delay"
)

const (
	// SubBlock is the number of frames moved between tank and taps at once.
	// It is also the shortest distance between two taps of a group.
	SubBlock = 32
	// MaxStages is the largest number of tap groups.
	MaxStages = 8
	// MaxMix is the largest group size.
	MaxMix = 16

	// Seed fixes the tap layout so renders are reproducible.
	Seed = 1053

	defaultStages     = 8
	defaultMix        = 4
	defaultSizeSec    = 1.0
	defaultMaxSizeSec = 1.0
)

// Params are the per-call tank controls.
type Params struct {
	// Gains weights the pre-mix head taps of each channel's stages. Entry s
	// reads stage s of the channel's half of the tank.
	Gains [MaxStages / 2]float64
	// Feedback scales the head tap before the input is added to it. Zero
	// replaces the head with the input.
	Feedback float64
	// Decay is the reflection strength, 1 for a lossless mix.
	Decay float64
	// Damping is the one-pole coefficient on the reflected mean, 1 for none.
	Damping float64
}

// Option mutates tank configuration.
type Option func(*tankConfig) error

type tankConfig struct {
	stages     int
	mix        int
	sizeSec    float64
	maxSizeSec float64
}

func defaultTankConfig() tankConfig {
	return tankConfig{
		stages:     defaultStages,
		mix:        defaultMix,
		sizeSec:    defaultSizeSec,
		maxSizeSec: defaultMaxSizeSec,
	}
}

// WithStages sets the number of tap groups: even, in [2, MaxStages]. The
// first half feeds the left output and the second half the right.
func WithStages(n int) Option {
	return func(cfg *tankConfig) error {
		if n < 2 || n > MaxStages || n%2 != 0 {
			return fmt.Errorf("reverb: stages must be even and in [2,%d]: %d", MaxStages, n)
		}

		cfg.stages = n

		return nil
	}
}

// WithMix sets the group size: 4, 8 or 16.
func WithMix(n int) Option {
	return func(cfg *tankConfig) error {
		if n != 4 && n != 8 && n != 16 {
			return fmt.Errorf("reverb: mix size must be 4, 8 or 16: %d", n)
		}

		cfg.mix = n

		return nil
	}
}

// WithSize sets the initial tank length in seconds.
func WithSize(seconds float64) Option {
	return func(cfg *tankConfig) error {
		if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
			return fmt.Errorf("reverb: size must be > 0 and finite: %f", seconds)
		}

		cfg.sizeSec = seconds

		return nil
	}
}

// WithMaxSize sets the largest length SetSize may reach, in seconds.
func WithMaxSize(seconds float64) Option {
	return func(cfg *tankConfig) error {
		if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
			return fmt.Errorf("reverb: max size must be > 0 and finite: %f", seconds)
		}

		cfg.maxSizeSec = seconds

		return nil
	}
}

// Tank is a stereo block-synchronous reverberator. The tank buffer is
// divided into stages·mix segments; each tap sits at a seeded random offset
// inside its own segment. Per sub-block every tap reads SubBlock frames at
// base-offset, each group is mixed sample by sample, and the frames are
// written back in place, so a tap's signal returns after one tank length.
type Tank struct {
	sampleRate float64
	stages     int
	mix        int

	ring *delay.Ring
	base int
	offs [MaxStages][MaxMix]int
	rnd  [MaxStages][MaxMix]float64
	z    [MaxStages]float64

	taps [MaxStages][MaxMix][SubBlock]float32
	vec  [MaxMix]float64
}

// NewTank allocates a tank for sampleRate. All memory is reserved here.
func NewTank(sampleRate float64, opts ...Option) (*Tank, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("reverb: sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultTankConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	cfg.maxSizeSec = math.Max(cfg.maxSizeSec, cfg.sizeSec)

	t := &Tank{sampleRate: sampleRate, stages: cfg.stages, mix: cfg.mix}

	ring, err := delay.NewRing(t.lengthFor(cfg.maxSizeSec))
	if err != nil {
		return nil, err
	}

	t.ring = ring

	rng := rand.New(rand.NewPCG(Seed, 0))
	for s := range t.stages {
		for m := range t.mix {
			t.rnd[s][m] = rng.Float64()
		}
	}

	t.SetSize(cfg.sizeSec)

	return t, nil
}

// lengthFor rounds a duration to a whole number of segments, each at least
// SubBlock long.
func (t *Tank) lengthFor(seconds float64) int {
	segs := t.stages * t.mix
	unit := max(int(t.sampleRate*seconds/float64(segs)), SubBlock)

	return unit * segs
}

// Len returns the current tank length in frames.
func (t *Tank) Len() int { return t.ring.Len() }

// Base returns the current write position.
func (t *Tank) Base() int { return t.base }

// SetSize changes the tank length, clamped to the capacity reserved by
// NewTank, and re-lays the taps. It does not allocate.
func (t *Tank) SetSize(seconds float64) {
	n := t.ring.SetLen(min(t.lengthFor(seconds), t.ring.Cap()))
	t.base %= n

	seg := n / t.stages
	sub := seg / t.mix

	for s := range t.stages {
		for m := range t.mix {
			t.offs[s][m] = seg*s + sub*m + int(t.rnd[s][m]*float64(sub-SubBlock))
		}
	}

	// The first and last tap of mirrored groups sit exactly half a tank
	// apart so early reflections reach both channels together.
	h := t.stages / 2
	for s := range h {
		t.offs[h+s][0] = n/2 + t.offs[s][0]
		t.offs[h+s][t.mix-1] = n/2 + t.offs[s][t.mix-1]
	}
}

// Process runs n frames. in and out hold two channels each and may alias.
// Channel o feeds the head of stage h·o and is heard on output 1-o.
func (t *Tank) Process(in, out [][]float64, n int, p Params) {
	h := t.stages / 2

	for start := 0; start < n; start += SubBlock {
		m := min(SubBlock, n-start)
		t.load(m)

		for i := range m {
			var wet [2]float64

			for o := range 2 {
				for s := range h {
					wet[o] += p.Gains[s] * float64(t.taps[h*o+s][0][i])
				}

				head := &t.taps[h*o][0][i]
				*head = float32(float64(*head)*p.Feedback + in[o][start+i])
			}

			out[1][start+i] = wet[0]
			out[0][start+i] = wet[1]
		}

		for s := range t.stages {
			v := t.vec[:t.mix]
			for i := range m {
				for k := range v {
					v[k] = float64(t.taps[s][k][i])
				}

				mixVector(v, p.Decay, p.Damping, &t.z[s])

				for k := range v {
					t.taps[s][k][i] = float32(v[k])
				}
			}
		}

		t.store(m)

		t.base += m
		if t.base >= t.ring.Len() {
			t.base -= t.ring.Len()
		}
	}
}

func (t *Tank) load(m int) {
	for s := range t.stages {
		for k := range t.mix {
			t.ring.ReadAt(t.taps[s][k][:m], t.base-t.offs[s][k])
		}
	}
}

func (t *Tank) store(m int) {
	for s := range t.stages {
		for k := range t.mix {
			t.ring.WriteAt(t.base-t.offs[s][k], t.taps[s][k][:m])
		}
	}
}

// Reset clears the tank and damping states.
func (t *Tank) Reset() {
	t.ring.Reset()
	t.base = 0
	t.z = [MaxStages]float64{}
}
