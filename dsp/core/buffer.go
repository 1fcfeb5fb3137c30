package core

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

// NewBuffers allocates channels planar buffers of n frames each.
func NewBuffers(channels, n int) [][]float64 {
	out := make([][]float64, channels)
	for i := range out {
		out[i] = make([]float64, n)
	}

	return out
}

// Interleave writes planar buffers into dst as interleaved float32 frames and
// returns the number of frames written.
func Interleave(dst []float32, planar [][]float64, frames int) int {
	chans := len(planar)
	if chans == 0 {
		return 0
	}

	frames = min(frames, len(dst)/chans)

	for ch, buf := range planar {
		for i := range frames {
			dst[i*chans+ch] = float32(buf[i])
		}
	}

	return frames
}

// Deinterleave splits interleaved float32 samples into planar buffers and
// returns the number of frames written.
func Deinterleave(planar [][]float64, src []float32) int {
	chans := len(planar)
	if chans == 0 {
		return 0
	}

	frames := len(src) / chans
	for _, buf := range planar {
		frames = min(frames, len(buf))
	}

	for i := range frames {
		for ch := range chans {
			planar[ch][i] = float64(src[i*chans+ch])
		}
	}

	return frames
}
