package main

import (
	"sync/atomic"

	"github.com/cwbudde/algo-mjack/dsp/event"
)

// queueSize is a power of two so positions can wrap freely.
const (
	queueSize = 256
	queueMask = queueSize - 1
)

// eventQueue is a lock-free single-producer single-consumer ring. The key
// reader pushes, the audio callback drains; neither side blocks or allocates.
type eventQueue struct {
	buf      [queueSize]event.Event
	readPos  atomic.Uint32
	writePos atomic.Uint32
}

// push queues ev and reports false when the ring is full.
func (q *eventQueue) push(ev event.Event) bool {
	w := q.writePos.Load()
	if w-q.readPos.Load() == queueSize {
		return false
	}

	q.buf[w&queueMask] = ev
	q.writePos.Store(w + 1)

	return true
}

// drain appends every queued event to dst in arrival order.
func (q *eventQueue) drain(dst []event.Event) []event.Event {
	r, w := q.readPos.Load(), q.writePos.Load()
	for ; r != w; r++ {
		dst = append(dst, q.buf[r&queueMask])
	}

	q.readPos.Store(r)

	return dst
}
