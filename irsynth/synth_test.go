package irsynth

import (
	"math"
	"testing"
)

func TestGenerateBodyBasic(t *testing.T) {
	cfg := DefaultBodyConfig()
	cfg.NormalizePeak = 0.8

	ir, err := GenerateBody(cfg)
	if err != nil {
		t.Fatalf("GenerateBody: %v", err)
	}
	if len(ir) != int(math.Round(cfg.DurationS*float64(cfg.SampleRate))) {
		t.Fatalf("unexpected output length: %d", len(ir))
	}

	peak := 0.0
	energy := 0.0
	for i, v := range ir {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("non-finite sample at %d", i)
		}
		peak = math.Max(peak, math.Abs(float64(v)))
		energy += float64(v * v)
	}
	if energy <= 1e-8 {
		t.Fatalf("expected non-zero energy")
	}
	if math.Abs(peak-0.8) > 1e-3 {
		t.Fatalf("unexpected normalization peak: %.6f", peak)
	}
	if math.Abs(float64(ir[len(ir)-1])) > 0.01 {
		t.Fatalf("fade-out should end near zero, got %g", ir[len(ir)-1])
	}
}

func TestGenerateBodyDeterministicForSeed(t *testing.T) {
	cfg := DefaultBodyConfig()
	cfg.Seed = 99

	a, err := GenerateBody(cfg)
	if err != nil {
		t.Fatalf("first GenerateBody: %v", err)
	}
	b, err := GenerateBody(cfg)
	if err != nil {
		t.Fatalf("second GenerateBody: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("non-deterministic output at index %d", i)
		}
	}

	cfg.Seed = 100
	c, err := GenerateBody(cfg)
	if err != nil {
		t.Fatalf("third GenerateBody: %v", err)
	}
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical output")
	}
}

func TestPlateModeFreqs(t *testing.T) {
	freqs := plateModeFreqs(200, 20000, 40, 32, 1.3, 12)
	if len(freqs) != 40 {
		t.Fatalf("mode count=%d want 40", len(freqs))
	}
	if math.Abs(freqs[0]-200) > 1e-9 {
		t.Fatalf("first mode=%g want f11=200", freqs[0])
	}
	for i := 1; i < len(freqs); i++ {
		if freqs[i] < freqs[i-1] {
			t.Fatalf("modes not ascending at %d: %g < %g", i, freqs[i], freqs[i-1])
		}
		if freqs[i] > 20000 {
			t.Fatalf("mode %d=%g above maxF", i, freqs[i])
		}
	}

	few := plateModeFreqs(200, 450, 100, 32, 1.3, 12)
	for _, f := range few {
		if f > 450 {
			t.Fatalf("mode %g above maxF", f)
		}
	}
}

func TestStiffnessRatioSplitsModes(t *testing.T) {
	iso := plateModeFreqs(200, 20000, 10, 32, 1.0, 1.0)
	ortho := plateModeFreqs(200, 20000, 10, 32, 1.0, 12.0)
	// A square isotropic plate has degenerate (1,2)/(2,1) modes.
	if math.Abs(iso[1]-iso[2]) > 1e-9 {
		t.Fatalf("isotropic square plate modes should pair: %g %g", iso[1], iso[2])
	}
	if math.Abs(ortho[1]-ortho[2]) < 1 {
		t.Fatalf("orthotropic plate should split modes: %g %g", ortho[1], ortho[2])
	}
}

func TestValidateBodyConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BodyConfig)
	}{
		{"SampleRate", func(c *BodyConfig) { c.SampleRate = 1000 }},
		{"Duration", func(c *BodyConfig) { c.DurationS = 0 }},
		{"Modes", func(c *BodyConfig) { c.Modes = 0 }},
		{"TopHz", func(c *BodyConfig) { c.TopHz = 30000 }},
		{"Grid", func(c *BodyConfig) { c.GridSize = 1 }},
		{"Stiffness", func(c *BodyConfig) { c.StiffnessRatio = -1 }},
		{"Decay", func(c *BodyConfig) { c.HighDecayS = 0 }},
		{"Peak", func(c *BodyConfig) { c.NormalizePeak = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultBodyConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
	cfg := DefaultBodyConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}
