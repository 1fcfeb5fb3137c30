package plugin

import (
	"fmt"

	"github.com/cwbudde/algo-mjack/dsp/event"
)

// Instance binds a descriptor, its control bank and a running plugin.
type Instance struct {
	desc     Descriptor
	controls *Controls
	plugin   Plugin
	ctx      Context

	destroyed bool
}

// NewInstance declares the descriptor's controls on a fresh bank and runs
// its factory. ctx.Controls is replaced by that bank.
func NewInstance(d Descriptor, ctx Context) (*Instance, error) {
	if ctx.SampleRate <= 0 {
		return nil, fmt.Errorf("plugin: %s: sample rate must be > 0: %f", d.Name, ctx.SampleRate)
	}

	controls := NewControls()
	for _, c := range d.Controls {
		if err := controls.Declare(c); err != nil {
			return nil, fmt.Errorf("plugin: %s: %w", d.Name, err)
		}
	}

	ctx = ctx.withDefaults()
	ctx.Controls = controls

	p, err := d.Factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("plugin: %s: %w", d.Name, err)
	}

	ctx.Logger.Debug("plugin created", "plugin", d.Name, "sample_rate", ctx.SampleRate, "controls", len(d.Controls))

	return &Instance{desc: d, controls: controls, plugin: p, ctx: ctx}, nil
}

// Descriptor returns the static description.
func (i *Instance) Descriptor() Descriptor { return i.desc }

// Controls returns the control bank.
func (i *Instance) Controls() *Controls { return i.controls }

// Unwrap returns the plugin built by the factory.
func (i *Instance) Unwrap() Plugin { return i.plugin }

// Process forwards one block to the plugin. A destroyed instance outputs
// silence.
func (i *Instance) Process(in, out [][]float64, events []event.Event, nframes int) {
	if i.destroyed {
		for _, buf := range out {
			clear(buf[:nframes])
		}

		return
	}

	i.plugin.Process(in, out, events, nframes)
}

// Destroy releases the plugin's buffers. Calling it again does nothing.
func (i *Instance) Destroy() {
	if i.destroyed {
		return
	}

	i.destroyed = true
	i.plugin.Destroy()
	i.ctx.Logger.Debug("plugin destroyed", "plugin", i.desc.Name)
}

// Run splits a block at event times like event.Schedule. ControlChange
// events are written to c at their timestamp, so controls read inside
// render take effect with sample accuracy; every other event goes to
// apply, which may be nil.
func Run(c *Controls, events []event.Event, nframes int, render func(start, end int), apply func(event.Event)) {
	event.Schedule(events, nframes, render, func(e event.Event) {
		if e.Kind == event.ControlChange {
			c.Set(int(e.Key), int(e.Value))
			return
		}

		if apply != nil {
			apply(e)
		}
	})
}
