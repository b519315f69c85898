package analysis

import (
	"fmt"
	"math"
	"testing"
)

func TestEstimatePitchDecayingTones(t *testing.T) {
	const sr = 44100
	for _, f := range []float64{82.41, 110, 220, 329.63, 440} {
		t.Run(fmt.Sprintf("%.0fHz", f), func(t *testing.T) {
			x := makeDecaySine(sr, f, 0.5, 0.8)
			got := EstimatePitch(x, sr, 60, 1000)
			if math.Abs(got-f) > 0.01*f {
				t.Fatalf("EstimatePitch=%f want %f", got, f)
			}
		})
	}
}

func TestEstimatePitchIgnoresStrongHarmonics(t *testing.T) {
	const sr = 44100
	const f0 = 196.0
	n := sr / 2
	x := make([]float64, n)
	for i := range x {
		tt := float64(i) / sr
		x[i] = 0.4*math.Sin(2*math.Pi*f0*tt) + 0.8*math.Sin(2*math.Pi*2*f0*tt) + 0.3*math.Sin(2*math.Pi*3*f0*tt)
	}
	got := EstimatePitch(x, sr, 60, 1000)
	if math.Abs(got-f0) > 1 {
		t.Fatalf("EstimatePitch=%f want %f", got, f0)
	}
}

func TestEstimatePitchSilenceAndBadRange(t *testing.T) {
	if got := EstimatePitch(make([]float64, 8192), 44100, 60, 1000); got != 0 {
		t.Fatalf("silence pitch=%f want 0", got)
	}
	x := makeDecaySine(44100, 220, 0.2, 0.5)
	if got := EstimatePitch(x, 44100, 500, 100); got != 0 {
		t.Fatalf("inverted range pitch=%f want 0", got)
	}
	if got := EstimatePitch(x[:100], 44100, 60, 1000); got != 0 {
		t.Fatalf("short input pitch=%f want 0", got)
	}
}

func TestDBToLin(t *testing.T) {
	tests := []struct {
		db   float64
		want float64
	}{
		{0, 1},
		{-20, 0.1},
		{-6.0206, 0.5},
		{20, 10},
	}
	for _, tt := range tests {
		if got := DBToLin(tt.db); math.Abs(got-tt.want) > 1e-3*tt.want {
			t.Fatalf("DBToLin(%g)=%g want %g", tt.db, got, tt.want)
		}
	}
}
