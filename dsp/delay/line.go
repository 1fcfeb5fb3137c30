// Package delay provides fixed-capacity circular buffers: a per-sample Line
// and a block-oriented float32 Ring.
package delay

import "fmt"

// Line is a circular delay line whose active length can shrink below its
// capacity without reallocating.
type Line struct {
	buffer   []float64
	size     int
	writePos int
}

// New returns a delay line with the given capacity, all of it active.
func New(capacity int) (*Line, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("delay: size must be > 0: %d", capacity)
	}

	return &Line{buffer: make([]float64, capacity), size: capacity}, nil
}

// Len returns the active length.
func (d *Line) Len() int {
	return d.size
}

// Cap returns the capacity.
func (d *Line) Cap() int {
	return len(d.buffer)
}

// SetLen changes the active length, clamped to [1, Cap]. Samples already
// stored are kept; the write head wraps if it falls outside the new length.
func (d *Line) SetLen(n int) {
	d.size = max(1, min(len(d.buffer), n))
	if d.writePos >= d.size {
		d.writePos = 0
	}
}

// Write writes one sample.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample

	d.writePos++
	if d.writePos >= d.size {
		d.writePos = 0
	}
}

// Read reads an integer delay in samples. Read(1) is the most recent
// sample and Read(Len()) the oldest.
func (d *Line) Read(delay int) float64 {
	readPos := (d.writePos - delay%d.size + d.size) % d.size
	return d.buffer[readPos]
}

// Allpass runs x through a Schroeder all-pass whose delay is the full
// active length and whose gain is k.
func (d *Line) Allpass(x, k float64) float64 {
	b := d.buffer[d.writePos]
	a := x + b*k
	b -= a * k
	d.Write(a)

	return b
}

// Reset clears line state.
func (d *Line) Reset() {
	clear(d.buffer)
	d.writePos = 0
}
