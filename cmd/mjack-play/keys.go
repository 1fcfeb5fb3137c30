package main

import "github.com/cwbudde/algo-mjack/dsp/event"

// Two keyboard rows laid out like a piano: the home row holds the white
// keys, the row above the black keys.
const keyRow = "awsedftgyhujkolp;"

const (
	octaveDown = 'z'
	octaveUp   = 'x'
	quitKey    = 'q'
	ctrlC      = 3
)

// keyboard turns raw key presses into note toggles.
type keyboard struct {
	octave   int
	velocity uint8
	held     [128]bool
}

func newKeyboard() *keyboard {
	return &keyboard{octave: 4, velocity: 100}
}

// press handles one byte. It reports the event to send, if any, and
// whether the user asked to quit.
func (k *keyboard) press(b byte) (ev event.Event, ok, quit bool) {
	switch b {
	case quitKey, ctrlC:
		return event.Event{}, false, true
	case octaveDown:
		k.octave = max(k.octave-1, 0)
		return event.Event{}, false, false
	case octaveUp:
		k.octave = min(k.octave+1, 9)
		return event.Event{}, false, false
	}

	idx := -1
	for i := range len(keyRow) {
		if keyRow[i] == b {
			idx = i
			break
		}
	}

	key := 12*(k.octave+1) + idx
	if idx < 0 || key > 127 {
		return event.Event{}, false, false
	}

	k.held[key] = !k.held[key]
	if k.held[key] {
		return event.Event{Kind: event.NoteOn, Key: uint8(key), Value: k.velocity}, true, false
	}

	return event.Event{Kind: event.NoteOff, Key: uint8(key), Value: 64}, true, false
}

// releaseAll returns note-offs for every held key.
func (k *keyboard) releaseAll() []event.Event {
	var evs []event.Event

	for key, on := range k.held {
		if on {
			evs = append(evs, event.Event{Kind: event.NoteOff, Key: uint8(key), Value: 64})
			k.held[key] = false
		}
	}

	return evs
}
