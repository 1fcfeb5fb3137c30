package main

import (
	"encoding/binary"
	"math"

	"github.com/cwbudde/algo-mjack/dsp/core"
	"github.com/cwbudde/algo-mjack/dsp/event"
	"github.com/cwbudde/algo-mjack/plugin"
)

// engine adapts a plugin instance to the io.Reader the audio player pulls
// float32 little-endian frames from. Events sent from one other goroutine
// are queued and delivered at the start of the next block.
type engine struct {
	inst  *plugin.Instance
	block int

	queue eventQueue

	events []event.Event
	in     [][]float64
	out    [][]float64
	frame  []float32

	// src loops into the plugin inputs when set.
	src    [][]float64
	srcPos int
}

func newEngine(inst *plugin.Instance, block int, src [][]float64) *engine {
	d := inst.Descriptor()

	return &engine{
		inst:   inst,
		block:  block,
		events: make([]event.Event, 0, queueSize),
		in:     core.NewBuffers(len(d.Inputs), block),
		out:    core.NewBuffers(len(d.Outputs), block),
		frame:  make([]float32, block*len(d.Outputs)),
		src:    src,
	}
}

// channels is the interleaved output width.
func (e *engine) channels() int { return len(e.out) }

// send queues ev for the next block. It must only be called from one
// goroutine and reports false when the queue is full.
func (e *engine) send(ev event.Event) bool {
	return e.queue.push(ev)
}

func (e *engine) Read(p []byte) (int, error) {
	chans := e.channels()
	if chans == 0 {
		clear(p)
		return len(p), nil
	}

	frames := len(p) / (4 * chans)
	off := 0

	for frames > 0 {
		n := min(frames, e.block)

		e.events = e.queue.drain(e.events[:0])

		e.fillInputs(n)
		e.inst.Process(e.in, e.out, e.events, n)

		w := core.Interleave(e.frame, e.out, n) * chans
		for _, s := range e.frame[:w] {
			binary.LittleEndian.PutUint32(p[off:], math.Float32bits(s))
			off += 4
		}

		frames -= n
	}

	return off, nil
}

func (e *engine) fillInputs(n int) {
	if len(e.src) == 0 || len(e.src[0]) == 0 {
		for _, buf := range e.in {
			core.Zero(buf)
		}

		return
	}

	size := len(e.src[0])
	for ch, buf := range e.in {
		s := e.src[ch%len(e.src)]
		for i := range n {
			buf[i] = s[(e.srcPos+i)%size]
		}
	}

	e.srcPos = (e.srcPos + n) % size
}
