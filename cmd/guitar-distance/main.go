package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-guitar/analysis"
	"github.com/cwbudde/algo-guitar/guitar"
	"github.com/cwbudde/algo-guitar/internal/audioio"
	"github.com/cwbudde/algo-guitar/preset"
)

func main() {
	referencePath := flag.String("reference", "reference/e2.wav", "Reference WAV path")
	candidatePath := flag.String("candidate", "", "Candidate WAV path; if empty, render a single pluck from the string model")
	presetPath := flag.String("preset", "", "Preset JSON path for the rendered candidate (optional)")
	key := flag.Int("key", 0, "MIDI key for the rendered candidate (0 = estimate from the reference)")
	sampleRate := flag.Int("sample-rate", guitar.SampleRate, "Analysis sample rate in Hz")
	duration := flag.Float64("duration", 4.0, "Rendered candidate duration in seconds")
	writeCandidate := flag.String("write-candidate", "", "Optional path to write rendered candidate WAV")
	jsonOut := flag.Bool("json", false, "Print metrics as JSON")
	bands := flag.Bool("bands", false, "Also print a per-band, per-time-window spectral breakdown")
	flag.Parse()

	ref, err := audioio.ReadWAVMonoAt(*referencePath, *sampleRate)
	if err != nil {
		die("failed to read reference: %v", err)
	}
	refHz := analysis.EstimatePitch(ref, *sampleRate, 60, 1400)

	var cand []float64
	if *candidatePath != "" {
		cand, err = audioio.ReadWAVMonoAt(*candidatePath, *sampleRate)
		if err != nil {
			die("failed to read candidate: %v", err)
		}
	} else {
		k := *key
		if k == 0 {
			k = nearestKey(refHz)
			if k == 0 {
				die("could not estimate the reference pitch; pass -key")
			}
		}
		mono, err := renderCandidate(*presetPath, k, *duration)
		if err != nil {
			die("failed to render candidate: %v", err)
		}
		cand, err = audioio.Resample(mono, guitar.SampleRate, *sampleRate)
		if err != nil {
			die("failed to resample candidate: %v", err)
		}
		if *writeCandidate != "" {
			if err := audioio.WriteMonoWAV(*writeCandidate, audioio.ToFloat32(cand), *sampleRate); err != nil {
				die("failed to write candidate wav: %v", err)
			}
		}
	}

	metrics := analysis.Compare(ref, cand, *sampleRate)
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(metrics); err != nil {
			die("json encode failed: %v", err)
		}
		return
	}

	candHz := analysis.EstimatePitch(cand, *sampleRate, 60, 1400)
	fmt.Printf("Reference frames: %d  pitch %.2f Hz\n", metrics.ReferenceFrames, refHz)
	fmt.Printf("Candidate frames: %d  pitch %.2f Hz\n", metrics.CandidateFrames, candHz)
	fmt.Printf("Aligned frames:   %d\n", metrics.AlignedFrames)
	fmt.Printf("Lag:              %d samples (%.3f ms)\n", metrics.LagSamples, 1000.0*float64(metrics.LagSamples)/float64(metrics.SampleRate))
	fmt.Println()
	fmt.Printf("Component        Raw          Norm   Weight  Contribution\n")
	fmt.Printf("─────────────────────────────────────────────────────────\n")
	printComp := func(name string, raw string, norm, weight float64, dominant bool) {
		contrib := norm * weight
		marker := ""
		if dominant {
			marker = " ◄"
		}
		fmt.Printf("%-16s %-12s %5.1f%%  ×%.2f   → %.4f%s\n", name, raw, norm*100, weight, contrib, marker)
	}
	printComp("Time RMSE", fmt.Sprintf("%.6f", metrics.TimeRMSE), metrics.TimeNorm, analysis.WeightTime, metrics.Dominant == "time")
	printComp("Envelope RMSE", fmt.Sprintf("%.1f dB", metrics.EnvelopeRMSEDB), metrics.EnvelopeNorm, analysis.WeightEnvelope, metrics.Dominant == "envelope")
	printComp("Spectral RMSE", fmt.Sprintf("%.1f dB", metrics.SpectralRMSEDB), metrics.SpectralNorm, analysis.WeightSpectral, metrics.Dominant == "spectral")
	printComp("Decay diff", fmt.Sprintf("%.1f dB/s", metrics.DecayDiffDBPerS), metrics.DecayNorm, analysis.WeightDecay, metrics.Dominant == "decay")
	fmt.Printf("─────────────────────────────────────────────────────────\n")
	fmt.Printf("Score:            %.4f  (0 best, 1 worst)\n", metrics.Score)
	fmt.Printf("Similarity:       %.2f%%\n", metrics.Similarity*100.0)
	fmt.Printf("Dominant factor:  %s\n", metrics.Dominant)
	fmt.Printf("\nDecay slopes: ref=%.1f dB/s  cand=%.1f dB/s\n", metrics.RefDecayDBPerS, metrics.CandDecayDBPerS)
	fmt.Printf("T60:          ref=%.2f s  cand=%.2f s\n", metrics.RefT60S, metrics.CandT60S)

	if *bands {
		reports, err := analysis.CompareBands(ref, cand, *sampleRate, analysis.DefaultWindows, analysis.DefaultBands)
		if err != nil {
			die("band analysis failed: %v", err)
		}
		fmt.Println()
		printBands(reports)
	}
}

func printBands(reports []analysis.WindowReport) {
	for _, w := range reports {
		fmt.Printf("--- %s (%d STFT frames) ---\n", w.Window, w.Frames)
		for _, b := range w.Bands {
			marker := ""
			if b.RMSEDB > 15 {
				marker = " <<<"
			}
			if b.RMSEDB > 25 {
				marker = " <<< !!!"
			}
			fmt.Printf("  %-22s RMSE=%5.1fdB  ref=%6.1fdB  cand=%6.1fdB  diff=%+5.1fdB%s\n",
				b.Band, b.RMSEDB, b.RefDB, b.CandDB, b.DiffDB, marker)
		}
		fmt.Println()
	}
}

// renderCandidate plucks key once on a fresh string voice, through the
// preset's body when it enables one.
func renderCandidate(presetPath string, key int, duration float64) ([]float64, error) {
	params := guitar.NewDefaultParams()
	if presetPath != "" {
		p, err := preset.LoadJSON(presetPath)
		if err != nil {
			return nil, err
		}
		params = p
	}

	v, err := guitar.NewStringVoice(params, params.Seed)
	if err != nil {
		return nil, err
	}
	if err := v.AddPluck(0, key); err != nil {
		return nil, fmt.Errorf("key %d: %w", key, err)
	}
	var body *guitar.BodyConvolver
	if params.BodyEnabled {
		body, err = guitar.NewBodyForParams(params)
		if err != nil {
			return nil, err
		}
	}

	frames := max(1, int(math.Round(duration*guitar.SampleRate)))
	out := make([]float32, frames)
	const block = 512
	for pos := 0; pos < frames; pos += block {
		buf := out[pos:min(pos+block, frames)]
		v.Generate(buf)
		if body != nil {
			body.Process(buf)
		}
	}
	return audioio.ToFloat64(out), nil
}

func nearestKey(hz float64) int {
	if hz <= 0 {
		return 0
	}
	return int(math.Round(12 * math.Log2(hz/guitar.PitchOf(0))))
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
