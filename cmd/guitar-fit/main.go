package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/cwbudde/algo-guitar/analysis"
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
	referencePath := flag.String("reference", "reference/e2.wav", "Reference pluck WAV path")
	presetPath := flag.String("preset", "", "Base preset JSON path (optional)")
	outputPreset := flag.String("output-preset", "assets/presets/fitted.json", "Path to write best fitted preset JSON")
	optimize := flag.String("optimize", "string", "Comma-separated knob groups to optimize: string, body")
	key := flag.Int("key", 0, "MIDI key of the reference pluck (0 = estimate from the reference)")
	seed := flag.Int64("seed", 1, "Random seed")
	timeBudget := flag.Float64("time-budget", 60.0, "Optimization time budget in seconds")
	maxEvals := flag.Int("max-evals", 2000, "Maximum objective evaluations")
	reportEvery := flag.Int("report-every", 20, "Print progress every N evaluations")
	maxDuration := flag.Float64("max-duration", 4.0, "Maximum compared duration in seconds")
	renderBlockSize := flag.Int("render-block-size", 256, "Audio render block size for candidate evaluation")
	topK := flag.Int("top-k", 5, "How many top candidates to keep in report")
	resume := flag.Bool("resume", true, "Resume from previous best_knobs report when available")
	workers := flag.String("workers", "1", "Parallel optimization workers running independent Mayfly rounds (number or 'auto')")
	debug := flag.Bool("debug", false, "Enable debug logging")

	mayflyVariant := flag.String("mayfly-variant", "desma", "Mayfly variant: ma|desma|olce|eobbma|gsasma|mpma|aoblmoa")
	mayflyPop := flag.Int("mayfly-pop", 10, "Male and female population size per Mayfly run")
	mayflyRoundEvals := flag.Int("mayfly-round-evals", 240, "Target eval budget per Mayfly round")
	flag.Parse()

	initLogger(*debug)

	groups, err := parseOptimizeGroups(*optimize)
	if err != nil {
		die("invalid --optimize: %v", err)
	}
	if *outputPreset == "" {
		die("output-preset must not be empty")
	}
	if *maxEvals < 1 {
		die("max-evals must be >= 1")
	}
	if *timeBudget <= 0 {
		die("time-budget must be > 0")
	}
	if *reportEvery < 1 {
		*reportEvery = 1
	}
	if *mayflyPop < 2 {
		*mayflyPop = 2
	}
	if *mayflyRoundEvals < *mayflyPop*2 {
		*mayflyRoundEvals = *mayflyPop * 2
	}
	if *topK < 1 {
		*topK = 1
	}
	if *renderBlockSize < 16 {
		*renderBlockSize = 16
	}
	parsedWorkers, err := audioio.ParseWorkers(*workers)
	if err != nil {
		die("invalid workers value: %v", err)
	}

	baseParams := guitar.NewDefaultParams()
	if *presetPath != "" {
		baseParams, err = preset.LoadJSON(*presetPath)
		if err != nil {
			die("failed to load preset: %v", err)
		}
	}
	sampleRate := baseParams.SampleRate
	if sampleRate <= 0 {
		sampleRate = guitar.SampleRate
	}

	ref, err := audioio.ReadWAVMonoAt(*referencePath, sampleRate)
	if err != nil {
		die("failed to read reference: %v", err)
	}
	maxFrames := int(math.Round(*maxDuration * float64(sampleRate)))
	if maxFrames > 0 && len(ref) > maxFrames {
		ref = ref[:maxFrames]
	}

	refHz := analysis.EstimatePitch(ref, sampleRate, 60, 1400)
	fitKey := *key
	if fitKey == 0 {
		fitKey = keyForPitch(refHz)
		if fitKey == 0 {
			die("could not estimate the reference pitch; pass -key")
		}
		slog.Info("estimated reference key", "hz", refHz, "key", fitKey, "name", guitar.KeyName(fitKey))
	}

	defs, initCand := initCandidate(baseParams, sampleRate, groups)
	if *resume {
		resumePath := reportPath(*outputPreset)
		if resumed, ok, err := loadCandidateFromReport(resumePath, defs, initCand); err != nil {
			slog.Warn("resume skipped", "path", resumePath, "err", err)
		} else if ok {
			initCand = resumed
			fmt.Printf("Resumed candidate from %s\n", resumePath)
		}
	}

	cfg := &optimizationConfig{
		reference:        ref,
		baseParams:       baseParams,
		defs:             defs,
		initCandidate:    initCand,
		key:              fitKey,
		sampleRate:       sampleRate,
		seed:             *seed,
		timeBudget:       *timeBudget,
		maxEvals:         *maxEvals,
		reportEvery:      *reportEvery,
		renderBlockSize:  *renderBlockSize,
		mayflyVariant:    strings.ToLower(*mayflyVariant),
		mayflyPop:        *mayflyPop,
		mayflyRoundEvals: *mayflyRoundEvals,
		workers:          parsedWorkers,
		topK:             *topK,
	}

	result, err := runOptimization(cfg)
	if err != nil {
		die("optimization failed: %v", err)
	}

	report := runReport{
		ReferencePath: *referencePath,
		PresetPath:    *presetPath,
		SampleRate:    sampleRate,
		Key:           fitKey,
		ReferenceHz:   refHz,
		MayflyVariant: cfg.mayflyVariant,
	}
	if err := writeOutputs(*outputPreset, result, report); err != nil {
		die("failed to write outputs: %v", err)
	}

	fmt.Printf("Done evals=%d elapsed=%.1fs best_score=%.4f best_similarity=%.2f%% variant=%s\n", result.evals, result.elapsed, result.bestEval.metrics.Score, result.bestEval.metrics.Similarity*100.0, cfg.mayflyVariant)
}

// keyForPitch returns the nearest MIDI key to hz that a guitar string can
// play, or 0.
func keyForPitch(hz float64) int {
	if hz <= 0 {
		return 0
	}
	key := int(math.Round(12 * math.Log2(hz/guitar.PitchOf(0))))
	if key < 1 || key > 127 {
		return 0
	}
	return key
}

func loadCandidateFromReport(path string, defs []knobDef, fallback candidate) (candidate, bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fallback, false, nil
		}
		return fallback, false, err
	}

	var rep struct {
		BestKnobs map[string]float64 `json:"best_knobs"`
	}
	if err := json.Unmarshal(b, &rep); err != nil {
		return fallback, false, err
	}
	if len(rep.BestKnobs) == 0 {
		return fallback, false, nil
	}

	vals := make([]float64, len(fallback.Vals))
	copy(vals, fallback.Vals)
	updated := false
	for i, d := range defs {
		if v, ok := rep.BestKnobs[d.Name]; ok {
			vals[i] = audioio.Clamp(v, d.Min, d.Max)
			if d.IsInt {
				vals[i] = math.Round(vals[i])
			}
			updated = true
		}
	}
	if !updated {
		return fallback, false, nil
	}
	return candidate{Vals: vals}, true, nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
