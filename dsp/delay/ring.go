package delay

import "fmt"

// Ring is a float32 circular buffer accessed in blocks at absolute
// positions. Blocks that cross the end wrap to the start.
type Ring struct {
	buf []float32
	n   int
}

// NewRing allocates a ring with the given capacity, all of it active.
func NewRing(capacity int) (*Ring, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("delay: ring size must be > 0: %d", capacity)
	}

	return &Ring{buf: make([]float32, capacity), n: capacity}, nil
}

// Len returns the active length.
func (r *Ring) Len() int { return r.n }

// Cap returns the capacity.
func (r *Ring) Cap() int { return len(r.buf) }

// SetLen sets the active length, clamped to [1, Cap], and returns it.
func (r *Ring) SetLen(n int) int {
	r.n = max(1, min(len(r.buf), n))
	return r.n
}

// Wrap maps any position onto [0, Len).
func (r *Ring) Wrap(pos int) int {
	pos %= r.n
	if pos < 0 {
		pos += r.n
	}

	return pos
}

// ReadAt fills dst starting at pos.
func (r *Ring) ReadAt(dst []float32, pos int) {
	pos = r.Wrap(pos)

	k := copy(dst, r.buf[pos:r.n])
	for k < len(dst) {
		k += copy(dst[k:], r.buf[:r.n])
	}
}

// WriteAt stores src starting at pos.
func (r *Ring) WriteAt(pos int, src []float32) {
	pos = r.Wrap(pos)

	k := copy(r.buf[pos:r.n], src)
	for k < len(src) {
		k += copy(r.buf[:r.n], src[k:])
	}
}

// Reset zeroes the whole capacity.
func (r *Ring) Reset() {
	clear(r.buf)
}
