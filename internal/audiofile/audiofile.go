// Package audiofile reads and writes the sample files used by the offline
// host: WAV, MP3 and Ogg Vorbis input, 16-bit WAV output.
package audiofile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupported is returned for file extensions without a decoder.
var ErrUnsupported = errors.New("audiofile: unsupported format")

// Audio is a decoded file held as planar float64 samples in [-1, 1].
type Audio struct {
	SampleRate int
	Channels   [][]float64
}

// Frames returns the length of the shortest channel.
func (a *Audio) Frames() int {
	if len(a.Channels) == 0 {
		return 0
	}

	n := len(a.Channels[0])
	for _, ch := range a.Channels[1:] {
		n = min(n, len(ch))
	}

	return n
}

type decodeFunc func(r io.ReadSeeker) (*Audio, error)

var decoders = map[string]decodeFunc{
	".wav":  decodeWAV,
	".wave": decodeWAV,
	".mp3":  decodeMP3,
	".ogg":  decodeOgg,
	".oga":  decodeOgg,
}

// Decode opens path and decodes it according to its extension.
func Decode(path string) (*Audio, error) {
	ext := strings.ToLower(filepath.Ext(path))

	dec, ok := decoders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audiofile: %w", err)
	}
	defer f.Close()

	a, err := dec(f)
	if err != nil {
		return nil, fmt.Errorf("audiofile: %s: %w", filepath.Base(path), err)
	}

	return a, nil
}

// planar splits interleaved samples into chans planar channels, scaling each
// value by scale.
func planar[T int | int16](src []T, chans int, scale float64) [][]float64 {
	if chans < 1 {
		chans = 1
	}

	frames := len(src) / chans
	out := make([][]float64, chans)

	for ch := range out {
		buf := make([]float64, frames)
		for i := range buf {
			buf[i] = float64(src[i*chans+ch]) * scale
		}

		out[ch] = buf
	}

	return out
}
