package synth

// heldKeys tracks which keys are down for the monophonic instruments. A
// repeated NoteOn for a key already down is ignored, as is a NoteOff for a
// key that is up.
type heldKeys struct {
	down  [128]bool
	count int
}

// press reports whether key was newly pressed.
func (h *heldKeys) press(key uint8) bool {
	if h.down[key&0x7f] {
		return false
	}

	h.down[key&0x7f] = true
	h.count++

	return true
}

// release reports whether key was the last one down.
func (h *heldKeys) release(key uint8) bool {
	if !h.down[key&0x7f] {
		return false
	}

	h.down[key&0x7f] = false
	h.count--

	return h.count == 0
}
