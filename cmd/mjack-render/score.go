package main

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-mjack/dsp/event"
)

// maxScoreSeconds bounds score times and -seconds so frame positions stay
// well inside int range at any sample rate the host accepts.
const maxScoreSeconds = 24 * 60 * 60

// cue is an event placed at an absolute frame of the render.
type cue struct {
	frame int
	event event.Event
}

// parseScore reads a text score. Each non-empty line is one of
//
//	<seconds> <key> <velocity> on|off
//	<seconds> cc <controller> <value>
//	cc <controller> <value>
//
// An untimed cc line takes the time of the previous timed line. Text after
// '#' is ignored. The result is sorted by frame; lines at the same frame
// keep their order.
func parseScore(r io.Reader, sampleRate float64) ([]cue, error) {
	var (
		cues []cue
		last int
	)

	sc := bufio.NewScanner(r)
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}

		f := strings.Fields(line)
		if len(f) == 0 {
			continue
		}

		if f[0] != "cc" {
			sec, err := strconv.ParseFloat(f[0], 64)
			if err != nil || math.IsNaN(sec) || sec < 0 || sec > maxScoreSeconds {
				return nil, fmt.Errorf("score line %d: bad time %q", lineNo, f[0])
			}

			last = int(math.Round(sec * sampleRate))
			f = f[1:]
		}

		e, err := parseScoreEvent(f)
		if err != nil {
			return nil, fmt.Errorf("score line %d: %w", lineNo, err)
		}

		cues = append(cues, cue{frame: last, event: e})
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}

	sort.SliceStable(cues, func(i, j int) bool { return cues[i].frame < cues[j].frame })

	return cues, nil
}

func parseScoreEvent(f []string) (event.Event, error) {
	if len(f) == 3 && f[0] == "cc" {
		num, err := midiByte(f[1])
		if err != nil {
			return event.Event{}, fmt.Errorf("controller: %w", err)
		}

		val, err := midiByte(f[2])
		if err != nil {
			return event.Event{}, fmt.Errorf("value: %w", err)
		}

		return event.Event{Kind: event.ControlChange, Key: num, Value: val}, nil
	}

	if len(f) != 3 {
		return event.Event{}, fmt.Errorf("want \"key velocity on|off\" or \"cc num value\", got %d fields", len(f))
	}

	key, err := midiByte(f[0])
	if err != nil {
		return event.Event{}, fmt.Errorf("key: %w", err)
	}

	vel, err := midiByte(f[1])
	if err != nil {
		return event.Event{}, fmt.Errorf("velocity: %w", err)
	}

	switch f[2] {
	case "on":
		if vel == 0 {
			return event.Event{Kind: event.NoteOff, Key: key, Value: 64}, nil
		}

		return event.Event{Kind: event.NoteOn, Key: key, Value: vel}, nil
	case "off":
		return event.Event{Kind: event.NoteOff, Key: key, Value: vel}, nil
	default:
		return event.Event{}, fmt.Errorf("unknown action %q", f[2])
	}
}

func midiByte(s string) (uint8, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}

	if v < 0 || v > 127 {
		return 0, fmt.Errorf("%d out of range [0, 127]", v)
	}

	return uint8(v), nil
}

// blockEvents returns the cues falling in [start, start+n) with times made
// relative to start, appending to dst. cues must be sorted.
func blockEvents(dst []event.Event, cues []cue, start, n int) []event.Event {
	i := sort.Search(len(cues), func(i int) bool { return cues[i].frame >= start })
	for ; i < len(cues) && cues[i].frame < start+n; i++ {
		e := cues[i].event
		e.Time = cues[i].frame - start
		dst = append(dst, e)
	}

	return dst
}
