// Package event decodes timestamped MIDI messages and splits an audio block
// at event boundaries.
package event

import "fmt"

// Kind is the event type.
type Kind uint8

const (
	NoteOn Kind = iota + 1
	NoteOff
	ControlChange
	// PitchBend is decoded but no processor acts on it yet.
	PitchBend
)

func (k Kind) String() string {
	switch k {
	case NoteOn:
		return "note-on"
	case NoteOff:
		return "note-off"
	case ControlChange:
		return "cc"
	case PitchBend:
		return "pitch-bend"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Event is one timestamped message. Time is a frame offset into the current
// block. For notes Key is the key and Value the velocity; for ControlChange
// Key is the controller number. PitchBend carries the MSB in Value.
type Event struct {
	Time  int
	Kind  Kind
	Key   uint8
	Value uint8
}

// FromMIDI decodes a channel voice message. A NoteOn with velocity 0 is
// reported as NoteOff. Unsupported or short messages return false.
func FromMIDI(time int, msg []byte) (Event, bool) {
	if len(msg) < 3 {
		return Event{}, false
	}

	e := Event{Time: time, Key: msg[1] & 0x7f, Value: msg[2] & 0x7f}

	switch msg[0] & 0xf0 {
	case 0x80:
		e.Kind = NoteOff
	case 0x90:
		e.Kind = NoteOn
		if e.Value == 0 {
			e.Kind = NoteOff
			e.Value = 64
		}
	case 0xb0:
		e.Kind = ControlChange
	case 0xe0:
		e.Kind = PitchBend
		e.Key = 0
	default:
		return Event{}, false
	}

	return e, true
}

// MIDI encodes e as a three-byte channel message on channel 1.
func (e Event) MIDI() [3]byte {
	switch e.Kind {
	case NoteOn:
		return [3]byte{0x90, e.Key, e.Value}
	case NoteOff:
		return [3]byte{0x80, e.Key, e.Value}
	case ControlChange:
		return [3]byte{0xb0, e.Key, e.Value}
	case PitchBend:
		return [3]byte{0xe0, 0, e.Value}
	default:
		return [3]byte{}
	}
}
