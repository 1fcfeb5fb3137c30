// Package spectral measures rendered audio: fundamental frequency, peak
// level, and the share of energy that does not sit on a harmonic of the
// fundamental (the aliasing floor of an oscillator).
package spectral
