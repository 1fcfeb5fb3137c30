package reverb

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-mjack/dsp/delay"
)

const (
	// DiffuserStages is the number of series all-passes per channel.
	DiffuserStages = 8
	// MaxStageSeconds is the longest all-pass delay.
	MaxStageSeconds = 0.1

	// Coprime adjustment can push a stage a few frames past its nominal
	// length.
	stageHeadroom = 1.1
)

// AllpassReverb feeds one input through two independent chains of series
// all-passes and returns their sum and difference as mid and side. Within
// a chain all delay lengths are pairwise coprime so the echo patterns of
// the stages never line up.
type AllpassReverb struct {
	sampleRate float64
	lines      [2][DiffuserStages]*delay.Line
	times      [2][DiffuserStages]float64
	gains      [2][DiffuserStages]float64
	shape      float64
}

// NewAllpassReverb allocates both chains at the longest stage time.
func NewAllpassReverb(sampleRate float64) (*AllpassReverb, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("reverb: sample rate must be > 0 and finite: %f", sampleRate)
	}

	r := &AllpassReverb{sampleRate: sampleRate, shape: 0.5}
	capacity := int(sampleRate*MaxStageSeconds*stageHeadroom) + 1

	for c := range r.lines {
		for s := range r.lines[c] {
			line, err := delay.New(capacity)
			if err != nil {
				return nil, err
			}

			r.lines[c][s] = line
			r.times[c][s] = MaxStageSeconds / 2
		}

		r.relayout(c)
	}

	r.updateGains()

	return r, nil
}

// SetShape sets the tail bandwidth control in (0, 1).
func (r *AllpassReverb) SetShape(shape float64) {
	r.shape = shape
	r.updateGains()
}

// SetStageTime sets the nominal delay of one stage in seconds, clamped to
// (0, MaxStageSeconds]. Channel 0 is mid and 1 is side.
func (r *AllpassReverb) SetStageTime(channel, stage int, seconds float64) {
	seconds = math.Max(1/r.sampleRate, math.Min(MaxStageSeconds, seconds))
	if r.times[channel][stage] == seconds {
		return
	}

	r.times[channel][stage] = seconds
	r.relayout(channel)
	r.updateGains()
}

// StageLen returns the delay length in frames of one stage.
func (r *AllpassReverb) StageLen(channel, stage int) int {
	return r.lines[channel][stage].Len()
}

// relayout rounds each stage time to frames, then bumps it until it is
// coprime with every earlier stage of the channel.
func (r *AllpassReverb) relayout(c int) {
	for s := range DiffuserStages {
		n := max(1, int(r.times[c][s]*r.sampleRate+0.5))

		for !coprimeWithPrevious(r.lines[c][:s], n) {
			n++
		}

		r.lines[c][s].SetLen(n)
	}
}

func coprimeWithPrevious(lines []*delay.Line, n int) bool {
	for _, l := range lines {
		if gcd(n, l.Len()) != 1 {
			return false
		}
	}

	return true
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}

	return a
}

// updateGains picks each stage's feedback so every stage's tail has about
// the same bandwidth: longer stages get larger gains.
func (r *AllpassReverb) updateGains() {
	for c := range r.gains {
		for s := range r.gains[c] {
			r.gains[c][s] = math.Max(0, 1-r.shape*r.shape/r.times[c][s])
		}
	}
}

// Process diffuses in into mid and side. mid or side may alias in.
func (r *AllpassReverb) Process(in, mid, side []float64) {
	for i, x := range in {
		a, b := x, x

		for s := range DiffuserStages {
			a = r.lines[0][s].Allpass(a, r.gains[0][s])
			b = r.lines[1][s].Allpass(b, r.gains[1][s])
		}

		mid[i] = 0.5 * (a + b)
		side[i] = 0.5 * (a - b)
	}
}

// Reset clears every stage.
func (r *AllpassReverb) Reset() {
	for c := range r.lines {
		for _, l := range r.lines[c] {
			l.Reset()
		}
	}
}
