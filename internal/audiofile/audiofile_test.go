package audiofile

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestWAVRoundTrip(t *testing.T) {
	const sr = 44100

	left := make([]float64, 512)
	right := make([]float64, 512)

	for i := range left {
		left[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/sr)
		right[i] = -left[i]
	}

	right[10] = 3 // clipped on write

	path := filepath.Join(t.TempDir(), "out.wav")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := EncodeWAV(f, sr, [][]float64{left, right}); err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}

	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	a, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if a.SampleRate != sr {
		t.Fatalf("sample rate = %d, want %d", a.SampleRate, sr)
	}

	if len(a.Channels) != 2 || a.Frames() != len(left) {
		t.Fatalf("got %d channels of %d frames", len(a.Channels), a.Frames())
	}

	const tol = 2.0 / 32768
	for i := range left {
		if d := math.Abs(a.Channels[0][i] - left[i]); d > tol {
			t.Fatalf("left[%d] = %f, want %f", i, a.Channels[0][i], left[i])
		}
	}

	if got := a.Channels[1][10]; math.Abs(got-1) > tol {
		t.Fatalf("clipped sample = %f, want ~1", got)
	}
}

func TestEncodeWAVRejectsBadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := EncodeWAV(f, 0, [][]float64{{0}}); err == nil {
		t.Fatal("expected error for zero sample rate")
	}

	if err := EncodeWAV(f, 48000, nil); err == nil {
		t.Fatal("expected error for no channels")
	}
}

func TestDecodeUnsupported(t *testing.T) {
	_, err := Decode("song.flac")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}

func TestDecodeInvalidData(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"junk.wav", "junk.mp3", "junk.ogg"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte("definitely not audio"), 0o644); err != nil {
				t.Fatal(err)
			}

			if _, err := Decode(path); err == nil {
				t.Fatal("expected decode error")
			}
		})
	}
}

func TestDecodeMissingFile(t *testing.T) {
	if _, err := Decode(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatal("expected error")
	}
}
