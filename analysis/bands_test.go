package analysis

import (
	"math"
	"testing"
)

func TestCompareBandsIdenticalSignals(t *testing.T) {
	sr := 44100
	x := makeDecaySine(sr, 110, 2.5, 0.8)
	reports, err := CompareBands(x, x, sr, DefaultWindows, DefaultBands)
	if err != nil {
		t.Fatalf("CompareBands: %v", err)
	}
	// 2.5 s reaches into every window.
	if len(reports) != len(DefaultWindows) {
		t.Fatalf("windows = %d, want %d", len(reports), len(DefaultWindows))
	}
	for _, w := range reports {
		if w.Frames < 1 {
			t.Fatalf("%s: no frames", w.Window)
		}
		for _, b := range w.Bands {
			if b.RMSEDB != 0 || b.DiffDB != 0 {
				t.Fatalf("%s %s: rmse=%g diff=%g, want 0", w.Window, b.Band, b.RMSEDB, b.DiffDB)
			}
		}
	}
}

func TestCompareBandsSkipsWindowsPastEnd(t *testing.T) {
	sr := 44100
	x := makeDecaySine(sr, 220, 0.3, 0.2)
	reports, err := CompareBands(x, x, sr, DefaultWindows, DefaultBands)
	if err != nil {
		t.Fatalf("CompareBands: %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("windows = %d, want 3", len(reports))
	}
}

func TestCompareBandsFindsLevelDifference(t *testing.T) {
	sr := 44100
	ref := makeDecaySine(sr, 440, 1.0, 0.5)
	cand := make([]float64, len(ref))
	for i, v := range ref {
		cand[i] = 0.1 * v
	}
	reports, err := CompareBands(ref, cand, sr, DefaultWindows[2:3], DefaultBands[2:3])
	if err != nil {
		t.Fatalf("CompareBands: %v", err)
	}
	b := reports[0].Bands[0]
	if math.Abs(b.DiffDB+20) > 0.1 {
		t.Fatalf("diff = %.2f dB, want -20", b.DiffDB)
	}
}

func TestAlignByPeak(t *testing.T) {
	ref := []float64{0, 0, 1, 0.5, 0}
	cand := []float64{0, 0, 0, 0, 1, 0.5}
	r, c := alignByPeak(ref, cand)
	if peakIndex(r) != peakIndex(c) {
		t.Fatalf("peaks not aligned: %d vs %d", peakIndex(r), peakIndex(c))
	}
	if len(r) != len(ref) || len(c) != len(cand)-2 {
		t.Fatalf("unexpected lengths %d %d", len(r), len(c))
	}
}
