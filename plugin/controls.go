package plugin

import (
	"fmt"
	"sync/atomic"

	"github.com/cwbudde/algo-mjack/dsp/core"
)

// NumControls is the size of the control address space.
const NumControls = 128

// Control declares one slot.
type Control struct {
	CC      int
	Display string
	// Persist is the key used in saved state. Empty means not saved.
	Persist string
	Default int
}

// Controls is a bank of 128 values in [0,127].
type Controls struct {
	values   [NumControls]atomic.Int32
	declared [NumControls]bool
	meta     [NumControls]Control
}

// NewControls returns a bank with every slot at 0 and nothing declared.
func NewControls() *Controls {
	return &Controls{}
}

// Declare registers a control and sets it to its default. A slot may be
// declared once.
func (c *Controls) Declare(ctl Control) error {
	if ctl.CC < 0 || ctl.CC >= NumControls {
		return fmt.Errorf("plugin: control number out of range: %d", ctl.CC)
	}

	if c.declared[ctl.CC] {
		return fmt.Errorf("plugin: control %d declared twice", ctl.CC)
	}

	if ctl.Persist != "" {
		for i := range c.meta {
			if c.declared[i] && c.meta[i].Persist == ctl.Persist {
				return fmt.Errorf("plugin: persistence key %q used by controls %d and %d", ctl.Persist, i, ctl.CC)
			}
		}
	}

	c.declared[ctl.CC] = true
	c.meta[ctl.CC] = ctl
	c.Set(ctl.CC, ctl.Default)

	return nil
}

// Declared returns the declared controls in slot order.
func (c *Controls) Declared() []Control {
	var out []Control

	for i := range c.meta {
		if c.declared[i] {
			out = append(out, c.meta[i])
		}
	}

	return out
}

// Get returns the value of slot cc. Out of range slots read as 0.
func (c *Controls) Get(cc int) int {
	if cc < 0 || cc >= NumControls {
		return 0
	}

	return int(c.values[cc].Load())
}

// Ratio returns Get(cc)/127.
func (c *Controls) Ratio(cc int) float64 {
	return core.ControlRatio(c.Get(cc))
}

// Set stores v, clamped to [0,127], in slot cc. Undeclared slots are
// writable too, as a hardware controller may send anything.
func (c *Controls) Set(cc, v int) {
	if cc < 0 || cc >= NumControls {
		return
	}

	c.values[cc].Store(int32(max(0, min(core.MaxControl, v))))
}

// Snapshot returns the value of every declared slot that has a
// persistence key.
func (c *Controls) Snapshot() map[string]int {
	out := make(map[string]int)

	for i := range c.meta {
		if c.declared[i] && c.meta[i].Persist != "" {
			out[c.meta[i].Persist] = c.Get(i)
		}
	}

	return out
}

// Restore sets every declared slot whose persistence key appears in m.
// Unknown keys are ignored and missing keys leave their slot unchanged. It
// returns the keys of m that matched no control.
func (c *Controls) Restore(m map[string]int) []string {
	matched := make(map[string]bool, len(m))

	for i := range c.meta {
		if !c.declared[i] || c.meta[i].Persist == "" {
			continue
		}

		if v, ok := m[c.meta[i].Persist]; ok {
			c.Set(i, v)
			matched[c.meta[i].Persist] = true
		}
	}

	var unknown []string

	for k := range m {
		if !matched[k] {
			unknown = append(unknown, k)
		}
	}

	return unknown
}
