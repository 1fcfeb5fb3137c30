// Package hpf implements a cascade of up to four one-pole high-pass
// sections with a shared cutoff.
package hpf

import (
	"fmt"
	"math"
)

// MaxOrder is the largest supported cascade length.
const MaxOrder = 4

const (
	defaultCutoffHz = 40.0
	defaultOrder    = 2
)

// Option mutates constructor configuration.
type Option func(*config) error

type config struct {
	cutoffHz float64
	order    int
}

func defaultConfig() config {
	return config{cutoffHz: defaultCutoffHz, order: defaultOrder}
}

// WithCutoffHz sets the cutoff. Must be finite and > 0.
func WithCutoffHz(hz float64) Option {
	return func(cfg *config) error {
		if hz <= 0 || math.IsNaN(hz) || math.IsInf(hz, 0) {
			return fmt.Errorf("hpf: cutoff must be > 0 and finite: %f", hz)
		}

		cfg.cutoffHz = hz

		return nil
	}
}

// WithOrder sets the number of sections in [1, MaxOrder].
func WithOrder(order int) Option {
	return func(cfg *config) error {
		if order < 1 || order > MaxOrder {
			return fmt.Errorf("hpf: order must be in [1,%d]: %d", MaxOrder, order)
		}

		cfg.order = order

		return nil
	}
}

// Filter is the cascaded high-pass.
type Filter struct {
	dt    float64
	order int
	k     float64
	state [MaxOrder]float64
}

// New creates a Filter for sampleRate.
func New(sampleRate float64, opts ...Option) (*Filter, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("hpf: sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	f := &Filter{dt: 1 / sampleRate}
	f.Set(cfg.cutoffHz, cfg.order)

	return f, nil
}

// Set updates cutoff and order without validation, clamping the order. The
// per-section cutoff is raised by sqrt(order) so the cascade keeps roughly
// the same -3 dB point at every order. Sections that drop out are cleared.
func (f *Filter) Set(cutoffHz float64, order int) {
	order = max(1, min(MaxOrder, order))
	for i := order; i < MaxOrder; i++ {
		f.state[i] = 0
	}

	w := 2 * math.Pi * cutoffHz
	f.order = order
	f.k = -math.Expm1(-w * f.dt / math.Sqrt(float64(order)))
}

// Order returns the active number of sections.
func (f *Filter) Order() int { return f.order }

// ProcessSample filters one sample. Each section's low-pass state takes
// half its step before the output is formed and half after, which centres
// the subtracted low-pass on the sample.
func (f *Filter) ProcessSample(x float64) float64 {
	for j := range f.order {
		d := x - f.state[j]
		f.state[j] += 0.5 * f.k * d
		x -= f.state[j]
		f.state[j] += 0.5 * f.k * d
	}

	return x
}

// ProcessInPlace filters buf in place.
func (f *Filter) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = f.ProcessSample(x)
	}
}

// Reset clears all section states.
func (f *Filter) Reset() {
	f.state = [MaxOrder]float64{}
}
