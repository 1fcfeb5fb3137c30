package audiofile

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var errNotWAV = errors.New("not a valid WAV file")

func decodeWAV(r io.ReadSeeker) (*Audio, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, errNotWAV
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, err
	}

	depth := int(d.BitDepth)
	if depth == 0 {
		depth = buf.SourceBitDepth
	}

	if depth < 8 || depth > 32 {
		return nil, fmt.Errorf("unsupported bit depth %d", depth)
	}

	chans := int(d.NumChans)
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		chans = buf.Format.NumChannels
	}

	scale := 1 / math.Exp2(float64(depth-1))

	return &Audio{
		SampleRate: int(d.SampleRate),
		Channels:   planar(buf.Data, chans, scale),
	}, nil
}

// EncodeWAV writes channels as a 16-bit PCM WAV file. Samples outside
// [-1, 1] are clipped.
func EncodeWAV(w io.WriteSeeker, sampleRate int, channels [][]float64) error {
	if sampleRate <= 0 {
		return fmt.Errorf("audiofile: invalid sample rate %d", sampleRate)
	}

	if len(channels) == 0 {
		return errors.New("audiofile: no channels to encode")
	}

	frames := len(channels[0])
	for _, ch := range channels[1:] {
		frames = min(frames, len(ch))
	}

	nch := len(channels)
	data := make([]int, frames*nch)

	for ch, src := range channels {
		for i := range frames {
			data[i*nch+ch] = pcm16(src[i])
		}
	}

	enc := wav.NewEncoder(w, sampleRate, 16, nch, 1)

	err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: nch, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	})
	if err != nil {
		return fmt.Errorf("audiofile: write wav: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("audiofile: close wav: %w", err)
	}

	return nil
}

func pcm16(x float64) int {
	switch {
	case math.IsNaN(x):
		return 0
	case x > 1:
		x = 1
	case x < -1:
		x = -1
	}

	return int(math.Round(x * 32767))
}
