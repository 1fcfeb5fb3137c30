package spectral

// ZeroCrossingFrequency estimates the frequency of a periodic signal from
// the interpolated times of its upward zero crossings. It returns 0 when
// fewer than two crossings exist.
func ZeroCrossingFrequency(signal []float64, sampleRate float64) float64 {
	first, last := -1.0, -1.0
	count := 0

	for i := 1; i < len(signal); i++ {
		a, b := signal[i-1], signal[i]
		if a >= 0 || b < 0 {
			continue
		}

		t := float64(i-1) + a/(a-b)
		if first < 0 {
			first = t
		}

		last = t
		count++
	}

	if count < 2 || last <= first {
		return 0
	}

	return float64(count-1) / (last - first) * sampleRate
}
