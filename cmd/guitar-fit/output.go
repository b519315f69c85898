package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-guitar/analysis"
	"github.com/cwbudde/algo-guitar/internal/audioio"
	"github.com/cwbudde/algo-guitar/irsynth"
	"github.com/cwbudde/algo-guitar/preset"
)

type runReport struct {
	ReferencePath  string              `json:"reference_path"`
	PresetPath     string              `json:"preset_path,omitempty"`
	OutputPreset   string              `json:"output_preset"`
	OutputIR       string              `json:"output_ir,omitempty"`
	SampleRate     int                 `json:"sample_rate"`
	Key            int                 `json:"key"`
	ReferenceHz    float64             `json:"reference_hz"`
	DurationSec    float64             `json:"elapsed_seconds"`
	Evaluations    int                 `json:"evaluations"`
	MayflyVariant  string              `json:"mayfly_variant"`
	BestScore      float64             `json:"best_score"`
	BestSimilarity float64             `json:"best_similarity"`
	BestMetrics    analysis.Metrics    `json:"best_metrics"`
	BestKnobs      map[string]float64  `json:"best_knobs"`
	BodyConfig     *irsynth.BodyConfig `json:"body_config,omitempty"`
	TopCandidates  []topCandidate      `json:"top_candidates,omitempty"`
}

// writeOutputs stores the fitted preset, its body IR when one was fitted, and
// a JSON report next to the preset.
func writeOutputs(outputPreset string, res *optimizationResult, report runReport) error {
	p := *res.bestEval.params
	if len(res.bestEval.bodyIR) > 0 {
		irPath := bodyIRPath(outputPreset)
		if err := audioio.WriteMonoWAV(irPath, res.bestEval.bodyIR, report.SampleRate); err != nil {
			return err
		}
		p.BodyEnabled = true
		p.BodyIRWavPath = filepath.Base(irPath)
		report.OutputIR = irPath
		report.BodyConfig = res.bestEval.bodyCfg
	}
	if err := preset.SaveJSON(outputPreset, preset.FromParams(&p)); err != nil {
		return err
	}

	report.OutputPreset = outputPreset
	report.DurationSec = res.elapsed
	report.Evaluations = res.evals
	report.BestScore = res.bestEval.metrics.Score
	report.BestSimilarity = res.bestEval.metrics.Similarity
	report.BestMetrics = res.bestEval.metrics
	report.BestKnobs = knobMap(res.defs, res.best)
	report.TopCandidates = res.top

	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(reportPath(outputPreset), append(b, '\n'), 0o644)
}

func bodyIRPath(outputPreset string) string {
	return strings.TrimSuffix(outputPreset, filepath.Ext(outputPreset)) + "-body.wav"
}

func reportPath(outputPreset string) string {
	return strings.TrimSuffix(outputPreset, filepath.Ext(outputPreset)) + ".report.json"
}
