package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-guitar/guitar"
)

func TestKeyForPitch(t *testing.T) {
	tests := []struct {
		hz   float64
		want int
	}{
		{hz: guitar.PitchOf(40), want: 40},
		{hz: guitar.PitchOf(64) * 1.01, want: 64},
		{hz: 440, want: 69},
		{hz: 0, want: 0},
		{hz: -5, want: 0},
	}
	for _, tt := range tests {
		if got := keyForPitch(tt.hz); got != tt.want {
			t.Fatalf("keyForPitch(%g) = %d, want %d", tt.hz, got, tt.want)
		}
	}
}

func TestLoadCandidateFromReportBestKnobs(t *testing.T) {
	tmp := t.TempDir()
	reportPath := filepath.Join(tmp, "rep.json")
	if err := os.WriteFile(reportPath, []byte(`{"best_knobs":{"t60":4.5,"loop_filters":2.4,"unknown":1}}`), 0o644); err != nil {
		t.Fatalf("write report: %v", err)
	}

	defs := []knobDef{
		{Name: "t60", Min: 0.3, Max: 20},
		{Name: "loop_filters", Min: 1, Max: 3, IsInt: true},
		{Name: "brightness", Min: 0, Max: 0.95},
	}
	fallback := candidate{Vals: []float64{8, 1, 0.2}}

	got, ok, err := loadCandidateFromReport(reportPath, defs, fallback)
	if err != nil {
		t.Fatalf("load report: %v", err)
	}
	if !ok {
		t.Fatal("expected resume candidate")
	}
	if got.Vals[0] != 4.5 || got.Vals[1] != 2 || got.Vals[2] != 0.2 {
		t.Fatalf("resumed vals = %v", got.Vals)
	}
	if fallback.Vals[0] != 8 {
		t.Fatal("fallback mutated")
	}
}

func TestLoadCandidateFromReportMissingFile(t *testing.T) {
	fallback := candidate{Vals: []float64{1}}
	got, ok, err := loadCandidateFromReport(filepath.Join(t.TempDir(), "none.json"), []knobDef{{Name: "t60"}}, fallback)
	if err != nil || ok {
		t.Fatalf("missing report: ok=%v err=%v", ok, err)
	}
	if got.Vals[0] != 1 {
		t.Fatalf("fallback not returned: %v", got.Vals)
	}
}

func TestReportPaths(t *testing.T) {
	if got := reportPath("out/fitted.json"); got != "out/fitted.report.json" {
		t.Fatalf("reportPath = %q", got)
	}
	if got := bodyIRPath("out/fitted.json"); got != "out/fitted-body.wav" {
		t.Fatalf("bodyIRPath = %q", got)
	}
}
