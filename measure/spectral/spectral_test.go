package spectral

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-mjack/internal/testutil"
)

func TestAnalyzePureSine(t *testing.T) {
	const sr = 48000.0

	// Bin 171 of an 8192-point transform.
	freq := 171 * sr / 8192
	sig := testutil.Sine(freq, sr, 1, 8192)

	res, err := Analyze(sig, sr)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if math.Abs(res.Fundamental-freq) > 0.5 {
		t.Fatalf("fundamental got=%g want=%g", res.Fundamental, freq)
	}

	if math.Abs(res.PeakDB) > 1.5 {
		t.Fatalf("peak level got=%g dB want about 0", res.PeakDB)
	}

	if res.AliasFloorDB > -60 {
		t.Fatalf("alias floor for a pure sine got=%g dB", res.AliasFloorDB)
	}
}

func TestAnalyzeDetectsInharmonicEnergy(t *testing.T) {
	const sr = 48000.0

	sig := testutil.Sine(171*sr/8192, sr, 1, 8192)
	extra := testutil.Sine(295*sr/8192, sr, 0.1, 8192)
	for i := range sig {
		sig[i] += extra[i]
	}

	res, err := Analyze(sig, sr)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	// 0.1 amplitude is -20 dB in level, about -20 dB of total energy.
	if res.AliasFloorDB < -23 || res.AliasFloorDB > -17 {
		t.Fatalf("alias floor got=%g dB want about -20", res.AliasFloorDB)
	}
}

func TestAnalyzeSilence(t *testing.T) {
	res, err := Analyze(make([]float64, 1024), 48000)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if !math.IsInf(res.PeakDB, -1) {
		t.Fatalf("peak level of silence got=%g want -Inf", res.PeakDB)
	}

	if !math.IsInf(res.AliasFloorDB, -1) {
		t.Fatalf("alias floor of silence got=%g want -Inf", res.AliasFloorDB)
	}
}

func TestAnalyzeRejectsShortSignal(t *testing.T) {
	if _, err := Analyze(make([]float64, 10), 48000); err == nil {
		t.Fatal("expected error for short signal")
	}

	if _, err := NewAnalyzer(Config{SampleRate: 0, FFTSize: 1024}); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestZeroCrossingFrequency(t *testing.T) {
	const sr = 44100.0

	sig := testutil.Sine(441.7, sr, 0.8, 44100)
	got := ZeroCrossingFrequency(sig, sr)

	if math.Abs(got-441.7)/441.7 > 1e-4 {
		t.Fatalf("ZeroCrossingFrequency() got=%g want=441.7", got)
	}

	if ZeroCrossingFrequency([]float64{1, 1, 1}, sr) != 0 {
		t.Fatal("expected 0 for a signal without crossings")
	}
}
