// Package synth holds the note-driven instruments.
//
// Every instrument is a plugin.Descriptor with one "out" port and MIDI
// input. Parameters are read from the control bank once per sub-block, a
// sub-block being the stretch of samples between two events, so a control
// change or a note lands on its exact frame.
package synth

import (
	"github.com/cwbudde/algo-mjack/dsp/tuning"
	"github.com/cwbudde/algo-mjack/plugin"
)

// Mono is the output port list of every instrument.
var Mono = []string{"out"}

// All returns the descriptors of every instrument.
func All() []plugin.Descriptor {
	return []plugin.Descriptor{
		SawSynth(),
		PolySaw(),
		Synth2(),
		Formant(),
		Kick(),
	}
}

// over128 is (cc/128)^n, the curve several instruments use where the top of
// the range must stay just short of 1.
func over128(cc, n int) float64 {
	r := float64(cc) / 128
	v := 1.0
	for range n {
		v *= r
	}

	return v
}

func keyCents(t *tuning.Table, key int) float64 {
	return t.Cents[max(0, min(tuning.Keys-1, key))]
}

func velocity(v uint8) float64 {
	return float64(v) / 127
}
