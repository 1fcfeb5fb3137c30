package core

// MaxControl is the largest value a 7-bit control slot can hold.
const MaxControl = 127

// ReferenceHz is the frequency of MIDI key 69 (A4).
const ReferenceHz = 440.0

// ControlRatio maps a control value in [0,127] to [0,1].
func ControlRatio(cc int) float64 {
	return float64(clampControl(cc)) / MaxControl
}

// ControlPow maps a control value to (cc/127)^n. Most gain, time and depth
// controls use n=2 or n=3 so that the low end of the range gets more travel.
func ControlPow(cc, n int) float64 {
	r := ControlRatio(cc)
	v := 1.0
	for range n {
		v *= r
	}

	return v
}

// CentsToRatio converts an interval in cents to a frequency ratio.
func CentsToRatio(cents float64) float64 {
	return exp2(cents / 1200)
}

// RatioToCents converts a frequency ratio to cents.
func RatioToCents(ratio float64) float64 {
	return log2(ratio) * 1200
}

// MIDIToHz returns the equal-tempered frequency of a (possibly fractional)
// MIDI key.
func MIDIToHz(key float64) float64 {
	return ReferenceHz * exp2((key-69)/12)
}

// Exp2 returns 2^x. Built with the fastmath tag it trades accuracy for speed.
func Exp2(x float64) float64 {
	return exp2(x)
}

func clampControl(cc int) int {
	if cc < 0 {
		return 0
	}

	if cc > MaxControl {
		return MaxControl
	}

	return cc
}

// Sqrt returns the square root of x. Built with the fastmath tag it uses an
// approximation.
func Sqrt(x float64) float64 {
	return sqrt(x)
}
