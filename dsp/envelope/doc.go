// Package envelope provides per-sample control envelopes for synthesizer
// voices.
//
// ADSR is a shaped attack/decay/sustain/release generator driven by a gate
// value. Simple is a one-shot percussive decay followed by a smoothing
// stage. Gate is a two-stage follower for CV-style inputs.
//
// All envelopes are plain value types with exported state, so a voice can
// embed them directly and a host can snapshot them.
package envelope
