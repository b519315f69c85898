package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/cwbudde/algo-guitar/guitar"
	"github.com/cwbudde/algo-guitar/internal/audioio"
	"github.com/cwbudde/algo-guitar/preset"
)

func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	slog.SetDefault(slog.New(h))
}

func main() {
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	duration := flag.Float64("duration", 0, "Duration in seconds (0 = one pass through the song)")
	loops := flag.Int("loops", 1, "Number of song passes when -duration is 0")
	style := flag.String("style", "strum", "Pattern style: strum or pick")
	sampleRate := flag.Int("sample-rate", guitar.SampleRate, "Output sample rate in Hz (resampled from 44100)")
	body := flag.Bool("body", false, "Enable body convolution")
	irPath := flag.String("ir", "", "Body IR WAV path override (implies -body)")
	seed := flag.Int64("seed", 0, "Random seed override (0 = keep preset)")
	blockSize := flag.Int("block", 512, "Render block size in samples")
	output := flag.String("output", "output.wav", "Output WAV file path")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	initLogger(*debug)

	params := guitar.NewDefaultParams()
	if *presetPath != "" {
		p, err := preset.LoadJSON(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
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

	g, err := guitar.NewGuitar(params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating guitar: %v\n", err)
		os.Exit(1)
	}
	song, err := guitar.SongForStyle(*style)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := g.SetSong(song); err != nil {
		fmt.Fprintf(os.Stderr, "Error setting song: %v\n", err)
		os.Exit(1)
	}

	var opts []guitar.PlayerOption
	if params.BodyEnabled {
		bc, err := guitar.NewBodyForParams(params)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating body: %v\n", err)
			os.Exit(1)
		}
		slog.Debug("body enabled", "ir", params.BodyIRWavPath, "ir_len", bc.IRLen(), "gain", params.BodyGain)
		opts = append(opts, guitar.WithBody(bc))
	}
	player, err := guitar.NewPlayer(g, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating player: %v\n", err)
		os.Exit(1)
	}

	totalFrames := int(math.Round(*duration * guitar.SampleRate))
	if *duration <= 0 {
		totalFrames = g.End() * max(*loops, 1)
	}
	if totalFrames < 1 {
		totalFrames = guitar.SampleRate
	}
	if *blockSize < 1 {
		*blockSize = 512
	}

	fmt.Printf("Rendering %s song for %.2f seconds (%d patterns, preset: %q)...\n",
		*style, float64(totalFrames)/guitar.SampleRate, len(g.Song().Patterns), *presetPath)

	samples := make([]float32, totalFrames)
	player.Play()
	var peak float32
	for pos := 0; pos < totalFrames; pos += *blockSize {
		end := min(pos+*blockSize, totalFrames)
		player.Fill(samples[pos:end])
		if p := player.Snapshot().Peak; p > peak {
			peak = p
		}
	}
	slog.Debug("render done", "frames", totalFrames, "peak", peak, "rms", audioio.RMS(samples))
	if peak > 1 {
		slog.Warn("output clips; lower output_gain", "peak", peak)
	}

	out := samples
	if *sampleRate != guitar.SampleRate {
		res, err := audioio.Resample(audioio.ToFloat64(samples), guitar.SampleRate, *sampleRate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error resampling: %v\n", err)
			os.Exit(1)
		}
		out = audioio.ToFloat32(res)
	}

	if err := audioio.WriteMonoWAV(*output, out, *sampleRate); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing WAV file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully wrote %s (%d frames)\n", *output, len(out))
}
