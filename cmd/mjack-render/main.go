// Command mjack-render runs one plugin offline and writes the result to a
// WAV file.
//
// Usage:
//
//	mjack-render -plugin name [flags]
//
// Instruments are driven by a text score; effects read an audio file.
//
// Examples:
//
//	mjack-render -list
//	mjack-render -plugin polysaw -score tune.txt -out tune.wav
//	mjack-render -plugin reverb -in dry.wav -seconds 6 -out wet.wav
//	mjack-render -plugin kick -score kick.txt -analyze
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-mjack/dsp/core"
	"github.com/cwbudde/algo-mjack/dsp/tuning"
	"github.com/cwbudde/algo-mjack/internal/audiofile"
	"github.com/cwbudde/algo-mjack/measure/spectral"
	"github.com/cwbudde/algo-mjack/plugin"
	"github.com/cwbudde/algo-mjack/plugins"
	"github.com/cwbudde/algo-vecmath"
)

type options struct {
	plugin    string
	rate      float64
	block     int
	score     string
	in        string
	scl       string
	state     string
	saveState string
	out       string
	seconds   float64
	gain      float64
	analyze   bool
	list      bool
	verbose   bool
	rateSet   bool
}

// tailSeconds is rendered after the last score event when -seconds is not
// given.
const tailSeconds = 2

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("render failed", "err", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options

	fs := flag.NewFlagSet("mjack-render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.plugin, "plugin", "", "plugin name (see -list)")
	fs.Float64Var(&o.rate, "rate", 48000, "sample rate in Hz")
	fs.IntVar(&o.block, "block", 256, "block size in frames")
	fs.StringVar(&o.score, "score", "", "score file with note and cc lines")
	fs.StringVar(&o.in, "in", "", "input audio file (wav, mp3, ogg)")
	fs.StringVar(&o.scl, "scl", "", "Scala tuning file")
	fs.StringVar(&o.state, "state", "", "restore controls from a JSON state file")
	fs.StringVar(&o.saveState, "save-state", "", "write controls to a JSON state file after rendering")
	fs.StringVar(&o.out, "out", "", "output WAV file")
	fs.Float64Var(&o.seconds, "seconds", 0, "render length; 0 follows the input or score")
	fs.Float64Var(&o.gain, "gain", 0, "output gain in dB")
	fs.BoolVar(&o.analyze, "analyze", false, "print a spectral summary of each output channel")
	fs.BoolVar(&o.list, "list", false, "list available plugins")
	fs.BoolVar(&o.verbose, "v", false, "debug logging")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: mjack-render -plugin name [flags]\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return o, err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "rate" {
			o.rateSet = true
		}
	})

	switch {
	case o.list:
	case o.plugin == "":
		return o, errors.New("-plugin is required")
	case o.rate <= 0 || math.IsNaN(o.rate) || math.IsInf(o.rate, 0):
		return o, fmt.Errorf("-rate must be > 0: %g", o.rate)
	case o.block <= 0:
		return o, fmt.Errorf("-block must be > 0: %d", o.block)
	case math.IsNaN(o.seconds) || o.seconds < 0 || o.seconds > maxScoreSeconds:
		return o, fmt.Errorf("-seconds must be in [0, %d]: %g", maxScoreSeconds, o.seconds)
	case math.IsNaN(o.gain) || math.IsInf(o.gain, 0):
		return o, fmt.Errorf("-gain must be finite: %g", o.gain)
	}

	return o, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}

		return err
	}

	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}

	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	reg := plugins.DefaultRegistry()

	if o.list {
		return listPlugins(stdout, reg)
	}

	var src *audiofile.Audio
	if o.in != "" {
		src, err = audiofile.Decode(o.in)
		if err != nil {
			return err
		}

		switch {
		case !o.rateSet:
			o.rate = float64(src.SampleRate)
		case float64(src.SampleRate) != o.rate:
			log.Warn("input sample rate differs, rendering without resampling",
				"input", src.SampleRate, "rate", o.rate)
		}
	}

	table := tuning.EqualTemperament()
	if o.scl != "" {
		if err := loadScala(table, o.scl); err != nil {
			return err
		}

		log.Info("tuning loaded", "file", o.scl)
	}

	cfg := core.ApplyProcessorOptions(core.WithSampleRate(o.rate), core.WithBlockSize(o.block))

	inst, err := reg.New(o.plugin, plugin.Context{SampleRate: cfg.SampleRate, Logger: log, Tuning: table})
	if err != nil {
		return err
	}
	defer inst.Destroy()

	if o.state != "" {
		if err := restoreState(inst, o.state, log); err != nil {
			return err
		}
	}

	var cues []cue
	if o.score != "" {
		cues, err = loadScore(o.score, o.rate)
		if err != nil {
			return err
		}
	}

	frames := renderLength(o, src, cues)
	log.Info("rendering", "plugin", o.plugin, "rate", o.rate, "frames", frames, "events", len(cues))

	var channels [][]float64
	if src != nil {
		channels = src.Channels
	}

	out := render(inst, channels, cues, frames, cfg.BlockSize, log)
	if o.gain != 0 {
		applyGain(out, core.DBToLinear(o.gain))
	}

	if peak := peakDB(out); peak > 0 {
		log.Warn("output exceeds full scale and will clip", "peak_db", peak)
	} else {
		log.Debug("output level", "peak_db", peak)
	}

	if o.out != "" {
		if err := writeWAV(o.out, int(o.rate), out); err != nil {
			return err
		}

		log.Info("wrote output", "file", o.out, "channels", len(out))
	}

	if o.saveState != "" {
		if err := saveState(inst, o.saveState); err != nil {
			return err
		}
	}

	if o.analyze {
		analyze(stdout, inst.Descriptor().Outputs, out, o.rate)
	}

	return nil
}

func renderLength(o options, src *audiofile.Audio, cues []cue) int {
	if o.seconds > 0 {
		return int(math.Round(o.seconds * o.rate))
	}

	frames := 0
	if src != nil {
		frames = src.Frames()
	}

	if len(cues) > 0 {
		frames = max(frames, cues[len(cues)-1].frame+int(tailSeconds*o.rate))
	}

	if frames == 0 {
		frames = int(tailSeconds * o.rate)
	}

	return frames
}

func listPlugins(w io.Writer, reg *plugin.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tIN\tOUT\tMIDI\tCONTROLS")

	for _, name := range reg.Names() {
		d, err := reg.Lookup(name)
		if err != nil {
			return err
		}

		fmt.Fprintf(tw, "%s\t%d\t%d\t%t\t%d\n", d.Name, len(d.Inputs), len(d.Outputs), d.MIDI, len(d.Controls))
	}

	return tw.Flush()
}

func loadScala(t *tuning.Table, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := t.LoadScala(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	return nil
}

func loadScore(path string, rate float64) ([]cue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cues, err := parseScore(f, rate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cues, nil
}

func restoreState(inst *plugin.Instance, path string, log *slog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	unknown, err := plugin.LoadState(f, inst.Controls())
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if len(unknown) > 0 {
		log.Warn("state keys ignored", "file", path, "keys", unknown)
	}

	return nil
}

func saveState(inst *plugin.Instance, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := plugin.SaveState(f, inst.Descriptor().Persistence, inst.Controls()); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func writeWAV(path string, rate int, channels [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := audiofile.EncodeWAV(f, rate, channels); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func applyGain(channels [][]float64, g float64) {
	for _, buf := range channels {
		vecmath.ScaleBlock(buf, buf, g)
	}
}

// peakDB is the largest absolute sample across channels in dB full scale.
func peakDB(channels [][]float64) float64 {
	peak := 0.0
	for _, buf := range channels {
		for _, v := range buf {
			peak = max(peak, math.Abs(v))
		}
	}

	return core.LinearToDB(peak)
}

func analyze(w io.Writer, names []string, channels [][]float64, rate float64) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PORT\tFUNDAMENTAL\tSAMPLE PEAK\tSPECTRAL PEAK\tALIAS FLOOR\tHARMONICS")

	for ch, buf := range channels {
		res, err := spectral.Analyze(buf, rate)
		if err != nil {
			fmt.Fprintf(tw, "%s\t%v\n", names[ch], err)
			continue
		}

		fmt.Fprintf(tw, "%s\t%.2f Hz\t%.1f dBFS\t%.1f dB\t%.1f dB\t%d\n",
			names[ch], res.Fundamental, peakDB(channels[ch:ch+1]), res.PeakDB, res.AliasFloorDB, res.Harmonics)
	}

	tw.Flush()
}
