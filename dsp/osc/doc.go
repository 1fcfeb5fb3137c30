// Package osc provides phase-accumulator oscillators.
//
// The saw and pulse generators are box-integrated: each output sample is the
// exact average of the naive waveform over the phase interval the sample
// covers. A discontinuity that falls inside a sample period therefore shows
// up as an intermediate value instead of a hard step, which removes most of
// the aliasing of the naive waveforms without oversampling.
//
// Frequencies are given as phase increments in cycles per sample
// (freq/sampleRate).
package osc
