package plugin

import (
	"log/slog"

	"github.com/cwbudde/algo-mjack/dsp/event"
	"github.com/cwbudde/algo-mjack/dsp/tuning"
)

// Plugin is one running processor instance.
type Plugin interface {
	// Process renders nframes. in and out hold one buffer per declared
	// port, each at least nframes long; they may alias. events are
	// ordered by Time within [0, nframes).
	Process(in, out [][]float64, events []event.Event, nframes int)
	// Destroy releases the instance.
	Destroy()
}

// Context is what a Factory gets to build an instance.
type Context struct {
	SampleRate float64
	Logger     *slog.Logger
	// Tuning maps keys to frequencies. Nil means equal temperament.
	Tuning *tuning.Table
	// Controls is the instance's control bank, already declared.
	Controls *Controls
}

// Factory builds a plugin instance.
type Factory func(ctx Context) (Plugin, error)

// Descriptor is the static description of a processor.
type Descriptor struct {
	// Name is the registry key.
	Name string
	// Persistence is written as the "info" field of saved state.
	Persistence string
	Inputs      []string
	Outputs     []string
	MIDI        bool
	Controls    []Control
	Factory     Factory
}

// Stereo is the port list of a two-channel effect.
var Stereo = []string{"in 0", "in 1"}

// StereoOut is the output port list of a two-channel effect.
var StereoOut = []string{"out 0", "out 1"}

func (c Context) withDefaults() Context {
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}

	if c.Tuning == nil {
		c.Tuning = tuning.EqualTemperament()
	}

	return c
}
