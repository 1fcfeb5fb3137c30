// Package biquad provides second-order IIR sections and parametric
// coefficient design.
//
// A [Section] runs Direct Form II Transposed with [Coefficients] normalized
// so that a0 = 1.
//
// Design starts from an analog prototype described by [Params]: a centre
// frequency, a quality factor and the square roots of the low, mid and high
// band gains. [Prewarp] maps the digital frequency onto the analog axis,
// [AnalogParametric] or [AnalogParametricAsymmetric] build the s-domain
// polynomial pair and [Bilinear] maps it back to the z-plane.
package biquad
