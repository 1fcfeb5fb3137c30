package tuning

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-mjack/dsp/core"
)

// ErrMalformed is returned for Scala input that cannot be parsed.
var ErrMalformed = errors.New("tuning: malformed scale")

// MaxDegrees bounds the number of notes in a Scala scale.
const MaxDegrees = Keys - 1

// scalaTonicKey is the key that sounds the scale's 1/1. Its pitch is
// 300 cents above A4, the equal-tempered C5.
const (
	scalaTonicKey   = 72
	scalaTonicCents = 300
)

// Scale is a parsed Scala scale. Degrees are cents above the tonic; the
// last degree is the period, usually 1200.
type Scale struct {
	Description string
	Degrees     []float64
}

// ParseScala reads the Scala .scl format: lines starting with '!' are
// comments, then a description line, the degree count and one pitch per
// line. A pitch containing '.' is in cents; otherwise it is a ratio a/b or
// a whole number. Text after the pitch is ignored.
func ParseScala(r io.Reader) (Scale, error) {
	sc := bufio.NewScanner(r)

	next := func() (string, bool) {
		for sc.Scan() {
			line := sc.Text()
			if !strings.HasPrefix(line, "!") {
				return line, true
			}
		}

		return "", false
	}

	desc, ok := next()
	if !ok {
		return Scale{}, fmt.Errorf("%w: missing description line", ErrMalformed)
	}

	countLine, ok := next()
	if !ok {
		return Scale{}, fmt.Errorf("%w: missing degree count", ErrMalformed)
	}

	n, err := strconv.Atoi(firstField(countLine))
	if err != nil {
		return Scale{}, fmt.Errorf("%w: degree count %q", ErrMalformed, countLine)
	}

	if n <= 0 || n > MaxDegrees {
		return Scale{}, fmt.Errorf("%w: degree count %d out of range [1,%d]", ErrMalformed, n, MaxDegrees)
	}

	s := Scale{Description: strings.TrimSpace(desc), Degrees: make([]float64, n)}

	for i := range n {
		line, ok := next()
		if !ok {
			return Scale{}, fmt.Errorf("%w: missing degree %d", ErrMalformed, i+1)
		}

		cents, err := parsePitch(firstField(line))
		if err != nil {
			return Scale{}, fmt.Errorf("%w: degree %d: %w", ErrMalformed, i+1, err)
		}

		s.Degrees[i] = cents
	}

	if err := sc.Err(); err != nil {
		return Scale{}, fmt.Errorf("tuning: read scale: %w", err)
	}

	return s, nil
}

func firstField(line string) string {
	if f := strings.Fields(line); len(f) > 0 {
		return f[0]
	}

	return ""
}

func parsePitch(f string) (float64, error) {
	if strings.Contains(f, ".") {
		return strconv.ParseFloat(f, 64)
	}

	num, den, isRatio := strings.Cut(f, "/")
	if !isRatio {
		den = "1"
	}

	a, err := strconv.Atoi(num)
	if err != nil {
		return 0, err
	}

	b, err := strconv.Atoi(den)
	if err != nil {
		return 0, err
	}

	if a <= 0 || b <= 0 {
		return 0, fmt.Errorf("ratio %s must be positive", f)
	}

	return core.RatioToCents(float64(a) / float64(b)), nil
}

// Apply fills t from s. Key 72 plays the tonic; each further key steps one
// degree, and every len(Degrees) keys add one period.
func (s Scale) Apply(t *Table) {
	n := len(s.Degrees)
	period := s.Degrees[n-1]

	for k := range Keys {
		oct, note := divmod(k-scalaTonicKey, n)

		cents := scalaTonicCents + period*float64(oct)
		if note > 0 {
			cents += s.Degrees[note-1]
		}

		t.setCents(k, cents)
	}
}

// LoadScala replaces t with the scale read from r. On error t is left
// unchanged.
func (t *Table) LoadScala(r io.Reader) error {
	s, err := ParseScala(r)
	if err != nil {
		return err
	}

	var next Table
	s.Apply(&next)
	*t = next

	return nil
}
