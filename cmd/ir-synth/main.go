package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-guitar/internal/audioio"
	"github.com/cwbudde/algo-guitar/irsynth"
)

func main() {
	cfg := irsynth.DefaultBodyConfig()

	output := flag.String("output", "assets/ir/body_44k.wav", "Output WAV path")
	flag.IntVar(&cfg.SampleRate, "sample-rate", cfg.SampleRate, "Output sample rate")
	flag.Float64Var(&cfg.DurationS, "duration", cfg.DurationS, "IR length in seconds")
	flag.IntVar(&cfg.Modes, "modes", cfg.Modes, "Number of top-plate modes")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed")
	flag.Float64Var(&cfg.Brightness, "brightness", cfg.Brightness, "Spectral brightness control (>0)")
	flag.Float64Var(&cfg.AirHz, "air-hz", cfg.AirHz, "Helmholtz air resonance (Hz)")
	flag.Float64Var(&cfg.AirLevel, "air-level", cfg.AirLevel, "Helmholtz resonance level")
	flag.Float64Var(&cfg.TopHz, "top-hz", cfg.TopHz, "Lowest top-plate mode (Hz)")
	flag.Float64Var(&cfg.PlateRatio, "plate-ratio", cfg.PlateRatio, "Top plate aspect ratio Lx/Ly")
	flag.Float64Var(&cfg.StiffnessRatio, "stiffness-ratio", cfg.StiffnessRatio, "Orthotropic stiffness ratio Dx/Dy")
	flag.IntVar(&cfg.GridSize, "grid", cfg.GridSize, "Finite-difference grid points per axis")
	flag.Float64Var(&cfg.DirectLevel, "direct", cfg.DirectLevel, "Direct impulse level")
	flag.Float64Var(&cfg.LowDecayS, "low-decay", cfg.LowDecayS, "Low-frequency decay time (s)")
	flag.Float64Var(&cfg.HighDecayS, "high-decay", cfg.HighDecayS, "High-frequency decay time (s)")
	flag.Float64Var(&cfg.CrossoverHz, "crossover", cfg.CrossoverHz, "Decay crossover frequency (Hz)")
	flag.Float64Var(&cfg.FadeOutS, "fade", cfg.FadeOutS, "Cosine fade-out length (s)")
	flag.Float64Var(&cfg.NormalizePeak, "normalize", cfg.NormalizePeak, "Peak normalization target")
	flag.Parse()

	ir, err := irsynth.GenerateBody(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ir-synth error: %v\n", err)
		os.Exit(1)
	}

	if err := audioio.WriteMonoWAV(*output, ir, cfg.SampleRate); err != nil {
		fmt.Fprintf(os.Stderr, "wav write error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s\n", *output)
	fmt.Printf("SampleRate: %d Hz, Duration: %.3f s, Samples: %d\n", cfg.SampleRate, cfg.DurationS, len(ir))
	fmt.Printf("Peak: %.6f, RMS: %.6f\n", peak(ir), audioio.RMS(ir))
}

func peak(x []float32) float64 {
	p := 0.0
	for _, v := range x {
		p = math.Max(p, math.Abs(float64(v)))
	}
	return p
}
