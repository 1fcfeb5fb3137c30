package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-mjack/dsp/core"
)

func ExampleApplyProcessorOptions() {
	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(44100),
		core.WithBlockSize(128),
	)

	fmt.Printf("sampleRate=%.0f blockSize=%d\n", cfg.SampleRate, cfg.BlockSize)

	// Output:
	// sampleRate=44100 blockSize=128
}

func ExampleMIDIToHz() {
	fmt.Printf("%.2f %.2f\n", core.MIDIToHz(57), core.MIDIToHz(60))

	// Output:
	// 220.00 261.63
}
