// Package ladder implements transistor-ladder style low-pass filters built
// from cascaded one-pole smoothers with saturating feedback.
//
// [State] is the three-integrator ladder used by the synthesizers. Its
// nonlinear tick is an implicit bilinear-transform step: each stage's
// instantaneous gain is taken from the local tanh slope and the resulting
// coupled system for the three state increments is solved in closed form.
// [Four] is a four-pole ladder with individually tunable stages and [MS20]
// the two-integrator Sallen-Key style network of the Korg MS-20.
package ladder
