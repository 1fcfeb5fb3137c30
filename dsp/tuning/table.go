// Package tuning maps MIDI keys to frequencies.
//
// A Table holds one frequency and one cents value (relative to A4 = 440 Hz)
// for each of the 128 keys. Tables are built from twelve-tone equal
// temperament, a just-intonation ratio set, a meantone generated by
// arbitrary octave and fifth sizes, or a Scala scale file.
package tuning

import "github.com/cwbudde/algo-mjack/dsp/core"

// Keys is the number of MIDI keys.
const Keys = 128

const referenceKey = 69

// Table is a per-key tuning.
type Table struct {
	Freq  [Keys]float64
	Cents [Keys]float64
}

// Hz returns the frequency of key, clamping key to [0, Keys).
func (t *Table) Hz(key int) float64 {
	return t.Freq[max(0, min(Keys-1, key))]
}

func (t *Table) setCents(key int, cents float64) {
	t.Cents[key] = cents
	t.Freq[key] = core.ReferenceHz * core.CentsToRatio(cents)
}

// EqualTemperament returns the standard tuning with A4 at 440 Hz.
func EqualTemperament() *Table {
	t := &Table{}
	for k := range Keys {
		t.setCents(k, 100*float64(k-referenceKey))
	}

	return t
}

// justRatios are the degrees of a 12-note scale over C built from the
// harmonic series.
var justRatios = [12]float64{
	1,
	17.0 / 16,
	9.0 / 8,
	19.0 / 16,
	5.0 / 4,
	21.0 / 16,
	11.0 / 8,
	3.0 / 2,
	13.0 / 8,
	27.0 / 16,
	7.0 / 4,
	15.0 / 8,
}

// JustIntonation returns a harmonic-series tuning over C whose A4 stays at
// 440 Hz.
func JustIntonation() *Table {
	t := &Table{}
	a := core.RatioToCents(justRatios[9])

	for k := range Keys {
		oct, note := divmod(k-60, 12)
		t.setCents(k, 1200*float64(oct)+core.RatioToCents(justRatios[note])-a)
	}

	return t
}

// meantoneVector expresses each pitch class as octaves plus fifths above C.
var meantoneVector = [12]struct{ octaves, fifths int }{
	{0, 0},  // C
	{-4, 7}, // C#
	{-1, 2}, // D
	{2, -3}, // Eb
	{-2, 4}, // E
	{1, -1}, // F
	{-3, 6}, // F#
	{0, 1},  // G
	{-4, 8}, // G#
	{-1, 3}, // A
	{2, -2}, // Bb
	{-2, 5}, // B
}

// MeantoneCents returns the cents of key relative to A4 in a regular
// temperament with the given octave and fifth sizes. 1200 and 700 give
// equal temperament; a fifth of about 696.6 gives quarter-comma meantone.
func MeantoneCents(key int, octaveCents, fifthCents float64) float64 {
	oct, note := divmod(key-60, 12)
	v, a := meantoneVector[note], meantoneVector[9]

	return octaveCents*float64(oct+v.octaves-a.octaves) + fifthCents*float64(v.fifths-a.fifths)
}

// Meantone returns a regular-temperament table.
func Meantone(octaveCents, fifthCents float64) *Table {
	t := &Table{}
	for k := range Keys {
		t.setCents(k, MeantoneCents(k, octaveCents, fifthCents))
	}

	return t
}

// divmod is floored division: the remainder is always in [0, d).
func divmod(n, d int) (int, int) {
	q, r := n/d, n%d
	if r < 0 {
		q--
		r += d
	}

	return q, r
}

// Equal reports whether two tables agree on every key, within eps cents
// near A4 and relatively far from it. eps <= 0 selects a tight default.
func (t *Table) Equal(o *Table, eps float64) bool {
	for k := range Keys {
		if !core.NearlyEqual(t.Cents[k], o.Cents[k], eps) {
			return false
		}
	}

	return true
}
