// Command mjack-play runs one plugin in real time on the default audio
// device and plays notes from the computer keyboard.
//
// Usage:
//
//	mjack-play -plugin name [flags]
//
// Keys a w s e d f t g y h u j k o l p ; toggle notes from C upwards,
// z and x shift the octave, q quits. Effects loop the -in file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ebitengine/oto/v3"
	"golang.org/x/term"

	"github.com/cwbudde/algo-mjack/dsp/core"
	"github.com/cwbudde/algo-mjack/dsp/tuning"
	"github.com/cwbudde/algo-mjack/internal/audiofile"
	"github.com/cwbudde/algo-mjack/plugin"
	"github.com/cwbudde/algo-mjack/plugins"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("play failed", "err", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("mjack-play", flag.ContinueOnError)
	name := fs.String("plugin", "polysaw", "plugin name")
	rate := fs.Int("rate", 48000, "sample rate in Hz")
	block := fs.Int("block", 256, "block size in frames")
	in := fs.String("in", "", "audio file looped into effect inputs")
	scl := fs.String("scl", "", "Scala tuning file")
	state := fs.String("state", "", "restore controls from a JSON state file")
	verbose := fs.Bool("v", false, "debug logging")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}

		return err
	}

	if *rate <= 0 || *block <= 0 {
		return errors.New("-rate and -block must be > 0")
	}

	cfg := core.ApplyProcessorOptions(core.WithSampleRate(float64(*rate)), core.WithBlockSize(*block))

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	table := tuning.EqualTemperament()
	if *scl != "" {
		f, err := os.Open(*scl)
		if err != nil {
			return err
		}

		err = table.LoadScala(f)
		f.Close()

		if err != nil {
			return fmt.Errorf("%s: %w", *scl, err)
		}
	}

	inst, err := plugins.DefaultRegistry().New(*name, plugin.Context{
		SampleRate: cfg.SampleRate,
		Logger:     log,
		Tuning:     table,
	})
	if err != nil {
		return err
	}
	defer inst.Destroy()

	if *state != "" {
		if err := restoreState(inst, *state, log); err != nil {
			return err
		}
	}

	var src [][]float64
	if *in != "" {
		a, err := audiofile.Decode(*in)
		if err != nil {
			return err
		}

		if a.SampleRate != *rate {
			log.Warn("input sample rate differs, playing without resampling", "input", a.SampleRate, "rate", *rate)
		}

		src = a.Channels
	}

	eng := newEngine(inst, cfg.BlockSize, src)
	if eng.channels() == 0 {
		return fmt.Errorf("%s has no outputs", *name)
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   *rate,
		ChannelCount: eng.channels(),
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(eng)
	player.Play()
	defer player.Close()

	log.Info("playing", "plugin", *name, "rate", *rate, "channels", eng.channels())

	return readKeys(os.Stdin, eng, log)
}

// readKeys puts the terminal into raw mode and forwards key toggles to eng
// until quit or end of input.
func readKeys(stdin *os.File, eng *engine, log *slog.Logger) error {
	fd := int(stdin.Fd())
	if term.IsTerminal(fd) {
		old, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		defer term.Restore(fd, old)
	}

	kb := newKeyboard()
	buf := make([]byte, 1)

	for {
		n, err := stdin.Read(buf)
		if n == 1 {
			ev, ok, quit := kb.press(buf[0])
			if quit {
				break
			}

			if ok {
				log.Debug("key", "event", ev.Kind, "key", ev.Key, "octave", kb.octave)
				if !eng.send(ev) {
					log.Warn("event queue full, key dropped", "key", ev.Key)
				}
			}
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return err
		}
	}

	for _, ev := range kb.releaseAll() {
		eng.send(ev)
	}

	return nil
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
