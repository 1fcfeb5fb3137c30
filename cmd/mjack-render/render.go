package main

import (
	"log/slog"

	"github.com/cwbudde/algo-mjack/dsp/core"
	"github.com/cwbudde/algo-mjack/dsp/event"
	"github.com/cwbudde/algo-mjack/plugin"
)

// render drives inst block by block for frames frames. Input channels are
// read from src, repeating its channels when the plugin has more inputs;
// frames past the end of src are silent.
func render(inst *plugin.Instance, src [][]float64, cues []cue, frames, block int, log *slog.Logger) [][]float64 {
	desc := inst.Descriptor()

	out := core.NewBuffers(len(desc.Outputs), frames)
	in := core.NewBuffers(len(desc.Inputs), block)
	blockOut := core.NewBuffers(len(desc.Outputs), block)
	events := make([]event.Event, 0, 16)

	for pos := 0; pos < frames; pos += block {
		n := min(block, frames-pos)

		for ch, buf := range in {
			core.Zero(buf)

			if len(src) == 0 {
				continue
			}

			s := src[ch%len(src)]
			if pos < len(s) {
				copy(buf[:n], s[pos:])
			}
		}

		events = blockEvents(events[:0], cues, pos, n)
		if len(events) > 0 {
			log.Debug("block events", "frame", pos, "count", len(events))
		}

		inst.Process(in, blockOut, events, n)

		for ch, buf := range blockOut {
			copy(out[ch][pos:pos+n], buf[:n])
		}
	}

	return out
}
