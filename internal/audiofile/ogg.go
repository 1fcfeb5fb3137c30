package audiofile

import (
	"fmt"
	"io"

	"github.com/cwbudde/algo-mjack/dsp/core"
	"github.com/jfreymuth/oggvorbis"
)

func decodeOgg(r io.ReadSeeker) (*Audio, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if format.Channels <= 0 {
		return nil, fmt.Errorf("ogg: invalid channel count %d", format.Channels)
	}

	chans := core.NewBuffers(format.Channels, len(data)/format.Channels)
	core.Deinterleave(chans, data)

	return &Audio{SampleRate: format.SampleRate, Channels: chans}, nil
}
