package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cwbudde/algo-guitar/guitar"
	"github.com/cwbudde/algo-guitar/internal/audioio"
	"github.com/cwbudde/algo-guitar/preset"
)

func initLogger(debug bool, w io.Writer) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	slog.SetDefault(slog.New(h))
}

func main() {
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	style := flag.String("style", "strum", "Pattern style: strum or pick")
	body := flag.Bool("body", false, "Enable body convolution")
	irPath := flag.String("ir", "", "Body IR WAV path override (implies -body)")
	seed := flag.Int64("seed", 0, "Random seed override (0 = keep preset)")
	bufferMS := flag.Int("buffer-ms", 40, "Audio device buffer in milliseconds")
	duration := flag.String("duration", "loop", "Seconds to play before quitting, or 'loop'")
	midiIn := flag.String("midi", "", "Substring of a MIDI input name to take live notes from (empty = none)")
	noTUI := flag.Bool("no-tui", false, "Print status lines instead of the terminal display")
	paused := flag.Bool("paused", false, "Start paused")
	logPath := flag.String("log", "", "Log file path (default: stderr without the display, discarded with it)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	logOut := io.Writer(os.Stderr)
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			die("open log: %v", err)
		}
		defer f.Close()
		logOut = f
	} else if !*noTUI {
		logOut = io.Discard
	}
	initLogger(*debug, logOut)

	playFor, err := audioio.ParseSeconds(*duration)
	if err != nil {
		die("invalid -duration: %v", err)
	}

	params := guitar.NewDefaultParams()
	if *presetPath != "" {
		p, err := preset.LoadJSON(*presetPath)
		if err != nil {
			die("Error loading preset %q: %v", *presetPath, err)
		}
		params = p
	}
	if *irPath != "" {
		params.BodyIRWavPath = *irPath
		params.BodyEnabled = true
	}
	if *body {
		params.BodyEnabled = true
	}
	if *seed != 0 {
		params.Seed = *seed
	}

	player, err := newPlayer(params, *style)
	if err != nil {
		die("%v", err)
	}
	if !*paused {
		player.Play()
	}

	sink, err := openAudio(player, guitar.SampleRate, time.Duration(*bufferMS)*time.Millisecond)
	if err != nil {
		die("audio: %v", err)
	}
	defer sink.Close()

	if *midiIn != "" {
		closeMIDI, err := openMIDI(*midiIn, func(key int) {
			if !player.Strike(key) {
				slog.Debug("strike dropped", "key", key)
			}
		})
		if err != nil {
			die("midi: %v", err)
		}
		defer closeMIDI()
	}

	var deadline <-chan time.Time
	if playFor > 0 {
		deadline = time.After(time.Duration(playFor * float64(time.Second)))
	}

	if *noTUI {
		runPlain(player, deadline)
		return
	}
	m := newModel(player, *style, deadline)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		slog.Error("display failed", "err", err)
	}
}

func newPlayer(params *guitar.Params, style string) (*guitar.Player, error) {
	g, err := guitar.NewGuitar(params)
	if err != nil {
		return nil, fmt.Errorf("create guitar: %w", err)
	}
	song, err := guitar.SongForStyle(style)
	if err != nil {
		return nil, err
	}
	if err := g.SetSong(song); err != nil {
		return nil, fmt.Errorf("set song: %w", err)
	}

	var opts []guitar.PlayerOption
	if params.BodyEnabled {
		bc, err := guitar.NewBodyForParams(params)
		if err != nil {
			return nil, fmt.Errorf("create body: %w", err)
		}
		slog.Debug("body enabled", "ir", params.BodyIRWavPath, "ir_len", bc.IRLen(), "gain", params.BodyGain)
		opts = append(opts, guitar.WithBody(bc))
	}
	return guitar.NewPlayer(g, opts...)
}

// runPlain prints one status line per second until deadline or interrupt.
func runPlain(player *guitar.Player, deadline <-chan time.Time) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)

	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	for {
		select {
		case <-tick.C:
			fmt.Println(statusLine(player.Snapshot()))
		case <-deadline:
			return
		case <-sig:
			return
		}
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
