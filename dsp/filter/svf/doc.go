// Package svf implements state-variable filters.
//
// [State] is a trapezoidal (topology-preserving) SVF whose high-pass node is
// solved in closed form each sample, so the feedback loop has no unit delay
// and stays stable at any resonance. The nonlinear tick replaces both
// integrator gains with tanh(x)/x style instantaneous gains evaluated from
// the previous state, which keeps the solve closed form.
//
// [SEM] is a cheaper Euler-integrated filter with a soft-saturating
// integrator, after the Oberheim SEM topology.
package svf
