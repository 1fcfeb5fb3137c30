package main

import (
	"sync"
	"testing"

	"github.com/cwbudde/algo-mjack/dsp/event"
)

func TestEventQueueOrderAndOverflow(t *testing.T) {
	var q eventQueue

	for i := range queueSize {
		if !q.push(event.Event{Kind: event.NoteOn, Key: uint8(i % 128), Time: i}) {
			t.Fatalf("push %d rejected before the queue was full", i)
		}
	}

	if q.push(event.Event{Kind: event.NoteOn}) {
		t.Fatal("push accepted into a full queue")
	}

	got := q.drain(nil)
	if len(got) != queueSize {
		t.Fatalf("drained %d events, want %d", len(got), queueSize)
	}

	for i, ev := range got {
		if ev.Time != i {
			t.Fatalf("event %d has frame %d", i, ev.Time)
		}
	}

	if rest := q.drain(nil); len(rest) != 0 {
		t.Fatalf("second drain got %d events", len(rest))
	}

	if !q.push(event.Event{Kind: event.NoteOff}) {
		t.Fatal("push rejected after drain")
	}
}

func TestEventQueueDrainDoesNotAllocate(t *testing.T) {
	var q eventQueue

	dst := make([]event.Event, 0, queueSize)
	allocs := testing.AllocsPerRun(100, func() {
		for range 8 {
			q.push(event.Event{Kind: event.NoteOn, Key: 60})
		}

		dst = q.drain(dst[:0])
	})

	if allocs != 0 {
		t.Fatalf("push and drain allocated %.1f times per run", allocs)
	}
}

func TestEventQueueConcurrent(t *testing.T) {
	var q eventQueue

	const total = 10000

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for i := 0; i < total; {
			if q.push(event.Event{Kind: event.NoteOn, Time: i}) {
				i++
			}
		}
	}()

	next := 0
	buf := make([]event.Event, 0, queueSize)

	for next < total {
		buf = q.drain(buf[:0])
		for _, ev := range buf {
			if ev.Time != next {
				t.Fatalf("got frame %d, want %d", ev.Time, next)
			}

			next++
		}
	}

	wg.Wait()
}
