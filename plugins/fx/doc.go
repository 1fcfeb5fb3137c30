// Package fx holds the audio effects.
//
// Effects have no note input but still read their control bank once per
// sub-block: a ControlChange event in the block splits it so the new value
// applies from its own frame onwards.
package fx

import "github.com/cwbudde/algo-mjack/plugin"

var (
	monoIn  = []string{"in"}
	monoOut = []string{"out"}
)

// All returns the descriptors of every effect.
func All() []plugin.Descriptor {
	return []plugin.Descriptor{
		Reverb(),
		Reverb2(),
		MSReverb(),
		APChain(),
		Parametric(),
		HPF(),
		TanhDist(),
	}
}

// view holds sub-slices of the host buffers for one sub-block without
// allocating a new outer slice each time.
type view struct {
	in  [2][]float64
	out [2][]float64
}

func (v *view) set(in, out [][]float64, start, end int) {
	for c := range in {
		v.in[c] = in[c][start:end]
	}

	for c := range out {
		v.out[c] = out[c][start:end]
	}
}
