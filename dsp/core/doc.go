// Package core holds small numeric helpers shared by the DSP packages and
// the hosts: clamping, denormal flushing, control-value curves, pitch
// conversions and planar/interleaved buffer conversion.
package core
