package reverb

// mixVector applies a damped Householder reflection in place:
//
//	T = mean(v); z += (T - z)·damping; v[i] -= T + z·decay
//
// With damping = 1 this is v - (1+decay)·mean(v), which is orthogonal
// (lossless) at decay = 1 and loses energy below it. Smaller damping makes
// the reflected mean a low-passed copy, so high frequencies see less of the
// reflection and decay faster.
func mixVector(v []float64, decay, damping float64, z *float64) {
	var sum float64
	for _, x := range v {
		sum += x
	}

	mean := sum / float64(len(v))
	*z += (mean - *z) * damping

	d := mean + *z*decay
	for i := range v {
		v[i] -= d
	}
}

// Mix4 mixes a group of four with damping. z is the group's damping state.
func Mix4(v *[4]float64, decay, damping float64, z *float64) {
	mixVector(v[:], decay, damping, z)
}

// Mix8 mixes a group of eight without damping.
func Mix8(v *[8]float64, decay float64) {
	var z float64
	mixVector(v[:], decay, 1, &z)
}

// Mix16 mixes a group of sixteen without damping.
func Mix16(v *[16]float64, decay float64) {
	var z float64
	mixVector(v[:], decay, 1, &z)
}
