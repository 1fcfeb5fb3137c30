package biquad

import (
	"fmt"
	"math"
)

// maxPrewarpOmega keeps tan(w/2) finite at Nyquist.
const maxPrewarpOmega = 3.14

// Params describes a parametric section. W is the centre frequency (digital
// radians per sample before [Prewarp], analog after), Q the quality factor,
// and G0, G1, G2 the square roots of the low, mid and high band gains.
type Params struct {
	W, Q       float64
	G2, G1, G0 float64
}

// Polynomials holds an unnormalized transfer function. In the analog domain
// the index is the power of s; after [Bilinear] it is the power of z^-1.
type Polynomials struct {
	B2, B1, B0 float64
	A2, A1, A0 float64
}

// Prewarp maps p.W from digital radians/sample to the analog frequency that
// the bilinear transform sends back to it, and narrows Q to compensate for
// the frequency-axis compression near Nyquist.
func Prewarp(p Params) Params {
	t := math.Tan(0.5 * math.Min(maxPrewarpOmega, p.W))
	p.W = t
	p.Q /= 1 + t*t

	return p
}

// AnalogParametric returns the symmetric parametric prototype
//
//	(g2 s² + (w/Q)·g1 s + w²·g0) / (s²/g2 + (w/Q)/g1 s + w²/g0)
//
// whose magnitude is g0² at DC, g1² at w and g2² at infinity. The numerator
// and denominator swap roles under gain inversion, so boost and cut curves
// are mirror images.
func AnalogParametric(p Params) Polynomials {
	wq := p.W / p.Q

	return Polynomials{
		B2: p.G2, B1: wq * p.G1, B0: p.W * p.W * p.G0,
		A2: 1 / p.G2, A1: wq / p.G1, A0: p.W * p.W / p.G0,
	}
}

// AnalogParametricAsymmetric returns the prototype with a plain resonant
// denominator s² + (w/Q)s + w². Its magnitude is g0 at DC, g1 at w and g2 at
// infinity, so g0 = g2 = 0 gives a band-pass of peak g1.
func AnalogParametricAsymmetric(p Params) Polynomials {
	wq := p.W / p.Q

	return Polynomials{
		B2: p.G2, B1: wq * p.G1, B0: p.W * p.W * p.G0,
		A2: 1, A1: wq, A0: p.W * p.W,
	}
}

// Bilinear maps an analog prototype with s = (1 - z^-1)/(1 + z^-1) onto
// the z-plane. The factor 2/T is already folded into the prewarped w.
func Bilinear(a Polynomials) Polynomials {
	return Polynomials{
		B2: a.B2 - a.B1 + a.B0, B1: 2 * (a.B0 - a.B2), B0: a.B2 + a.B1 + a.B0,
		A2: a.A2 - a.A1 + a.A0, A1: 2 * (a.A0 - a.A2), A0: a.A2 + a.A1 + a.A0,
	}
}

// Invert swaps numerator and denominator.
func (p Polynomials) Invert() Polynomials {
	return Polynomials{
		B2: p.A2, B1: p.A1, B0: p.A0,
		A2: p.B2, A1: p.B1, A0: p.B0,
	}
}

// Normalize divides by A0 and returns runtime coefficients. A zero A0
// yields a muted section rather than Inf/NaN coefficients.
func (p Polynomials) Normalize() Coefficients {
	if p.A0 == 0 {
		return Coefficients{}
	}

	inv := 1 / p.A0

	return Coefficients{
		B0: p.B0 * inv, B1: p.B1 * inv, B2: p.B2 * inv,
		A1: p.A1 * inv, A2: p.A2 * inv,
	}
}

// DigitalParametric designs the symmetric parametric section for p with
// p.W in radians/sample.
func DigitalParametric(p Params) Coefficients {
	return Bilinear(AnalogParametric(Prewarp(p))).Normalize()
}

// DigitalParametricAsymmetric designs the asymmetric section for p with
// p.W in radians/sample.
func DigitalParametricAsymmetric(p Params) Coefficients {
	return Bilinear(AnalogParametricAsymmetric(Prewarp(p))).Normalize()
}

// ParametricEQ designs a three-band parametric section at freqHz. low, mid
// and high are linear amplitude gains and must be > 0.
func ParametricEQ(sampleRate, freqHz, q, low, mid, high float64) (Coefficients, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return Coefficients{}, fmt.Errorf("biquad: sample rate must be > 0: %f", sampleRate)
	}

	if freqHz <= 0 || freqHz >= sampleRate/2 {
		return Coefficients{}, fmt.Errorf("biquad: frequency must be in (0, Nyquist): %f", freqHz)
	}

	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return Coefficients{}, fmt.Errorf("biquad: Q must be > 0: %f", q)
	}

	if low <= 0 || mid <= 0 || high <= 0 {
		return Coefficients{}, fmt.Errorf("biquad: band gains must be > 0: %f %f %f", low, mid, high)
	}

	return DigitalParametric(Params{
		W:  2 * math.Pi * freqHz / sampleRate,
		Q:  q,
		G0: math.Sqrt(low),
		G1: math.Sqrt(mid),
		G2: math.Sqrt(high),
	}), nil
}

// BandPass designs the asymmetric section with only the mid band, a
// constant-peak band-pass of the given gain at freqHz. No validation is done
// so it can run per block on the processing thread; freqHz is clamped by
// [Prewarp].
func BandPass(sampleRate, freqHz, q, gain float64) Coefficients {
	return DigitalParametricAsymmetric(Params{
		W:  2 * math.Pi * freqHz / sampleRate,
		Q:  q,
		G1: gain,
	})
}
