package spectral

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-mjack/dsp/core"
	"github.com/cwbudde/algo-mjack/dsp/window"
	"github.com/cwbudde/algo-vecmath"
)

const (
	defaultGuardBins = 3
	minFFTSize       = 64
)

// Config holds analysis parameters.
type Config struct {
	SampleRate float64
	// FFTSize is rounded up to a power of two. Zero uses the signal length.
	FFTSize int
	// GuardBins is the half width around each harmonic that counts as
	// harmonic energy. Zero selects 3, enough for the Hann main lobe.
	GuardBins int
	// Fundamental skips peak search when > 0.
	Fundamental float64
}

// Result holds one analysis.
type Result struct {
	FFTSize     int
	Fundamental float64
	// PeakDB is the level of the strongest bin relative to a full-scale sine.
	PeakDB float64
	// AliasFloorDB is the inharmonic energy relative to the total energy.
	AliasFloorDB float64
	Harmonics    int
}

var errShortSignal = errors.New("spectral: signal shorter than minimum FFT size")

// Analyzer runs repeated analyses with one FFT plan.
type Analyzer struct {
	cfg  Config
	plan *algofft.Plan[complex128]

	in, out []complex128
	re, im  []float64
	power   []float64
	window  []float64
	tapered []float64
}

// NewAnalyzer creates an analyzer for signals of up to cfg.FFTSize samples.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if cfg.SampleRate <= 0 || math.IsNaN(cfg.SampleRate) || math.IsInf(cfg.SampleRate, 0) {
		return nil, fmt.Errorf("spectral: sample rate must be > 0: %f", cfg.SampleRate)
	}

	if cfg.FFTSize < minFFTSize {
		return nil, fmt.Errorf("spectral: fft size must be >= %d: %d", minFFTSize, cfg.FFTSize)
	}

	if cfg.GuardBins <= 0 {
		cfg.GuardBins = defaultGuardBins
	}

	n := nextPowerOf2(cfg.FFTSize)
	cfg.FFTSize = n

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("spectral: fft plan: %w", err)
	}

	a := &Analyzer{
		cfg:     cfg,
		plan:    plan,
		in:      make([]complex128, n),
		out:     make([]complex128, n),
		re:      make([]float64, n/2+1),
		im:      make([]float64, n/2+1),
		power:   make([]float64, n/2+1),
		window:  make([]float64, n),
		tapered: make([]float64, n),
	}

	return a, nil
}

// Analyze is a one-shot analysis of signal.
func Analyze(signal []float64, sampleRate float64) (Result, error) {
	if len(signal) < minFFTSize {
		return Result{}, errShortSignal
	}

	a, err := NewAnalyzer(Config{SampleRate: sampleRate, FFTSize: len(signal)})
	if err != nil {
		return Result{}, err
	}

	return a.Analyze(signal)
}

// Analyze windows signal (Hann over its own length), transforms it and
// evaluates the spectrum. Longer signals are truncated to the FFT size.
func (a *Analyzer) Analyze(signal []float64) (Result, error) {
	n := a.cfg.FFTSize
	if len(signal) < minFFTSize {
		return Result{}, errShortSignal
	}

	m := min(len(signal), n)
	window.Fill(window.TypeHann, a.window[:m], window.WithPeriodic())
	vecmath.MulBlock(a.tapered[:m], signal[:m], a.window[:m])

	windowSum := window.Sum(a.window[:m])

	for i := range a.in {
		if i < m {
			a.in[i] = complex(a.tapered[i], 0)
		} else {
			a.in[i] = 0
		}
	}

	if err := a.plan.Forward(a.out, a.in); err != nil {
		return Result{}, fmt.Errorf("spectral: fft: %w", err)
	}

	for i := range a.re {
		a.re[i] = real(a.out[i])
		a.im[i] = imag(a.out[i])
	}

	vecmath.Power(a.power, a.re, a.im)

	return a.evaluate(windowSum), nil
}

func (a *Analyzer) evaluate(windowSum float64) Result {
	n := a.cfg.FFTSize
	binHz := a.cfg.SampleRate / float64(n)
	bins := len(a.power)

	peakBin := 1
	for i := 2; i < bins-1; i++ {
		if a.power[i] > a.power[peakBin] {
			peakBin = i
		}
	}

	res := Result{FFTSize: n}

	// A full-scale sine shows up with magnitude windowSum/2 in its bin.
	ref := windowSum * windowSum / 4
	if ref > 0 {
		res.PeakDB = core.LinearPowerToDB(a.power[peakBin] / ref)
	} else {
		res.PeakDB = math.Inf(-1)
	}

	if a.cfg.Fundamental > 0 {
		res.Fundamental = a.cfg.Fundamental
	} else {
		res.Fundamental = (float64(peakBin) + parabolicOffset(a.power, peakBin)) * binHz
	}

	if res.Fundamental <= 0 {
		return res
	}

	total, harmonic := 0.0, 0.0
	for i := 1; i < bins; i++ {
		total += a.power[i]
	}

	guard := a.cfg.GuardBins
	nyquist := a.cfg.SampleRate / 2
	for k := 1; float64(k)*res.Fundamental < nyquist; k++ {
		center := int(math.Round(float64(k) * res.Fundamental / binHz))
		lo := max(1, center-guard)
		hi := min(bins-1, center+guard)
		for i := lo; i <= hi; i++ {
			harmonic += a.power[i]
		}

		res.Harmonics++
	}

	if inharmonic := total - harmonic; total > 0 && inharmonic > 0 {
		res.AliasFloorDB = core.LinearPowerToDB(inharmonic / total)
	} else {
		res.AliasFloorDB = math.Inf(-1)
	}

	return res
}

// parabolicOffset interpolates the peak position from the log power of the
// bin and its neighbours.
func parabolicOffset(power []float64, i int) float64 {
	if i <= 0 || i >= len(power)-1 {
		return 0
	}

	l, c, r := power[i-1], power[i], power[i+1]
	if l <= 0 || c <= 0 || r <= 0 {
		return 0
	}

	l, c, r = math.Log(l), math.Log(c), math.Log(r)

	den := l - 2*c + r
	if den == 0 {
		return 0
	}

	return 0.5 * (l - r) / den
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
