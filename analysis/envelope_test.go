package analysis

import (
	"math"
	"testing"
)

func TestFitDecayMeasuresExponentialSlope(t *testing.T) {
	sr := 48000
	const tau = 0.5
	x := makeDecaySine(sr, 196, 2.0, tau)
	env := dbEnvelope(x, envFrame, envHop)
	fit := fitDecay(env, float64(envHop)/float64(sr))
	if !fit.ok {
		t.Fatal("decay not measured")
	}
	want := -20 / math.Ln10 / tau
	if math.Abs(fit.slope-want) > 0.3 {
		t.Fatalf("slope=%.2f dB/s want %.2f", fit.slope, want)
	}
	if got, wantT60 := fit.t60(), 60/-want; math.Abs(got-wantT60) > 0.1 {
		t.Fatalf("t60=%.3f s want %.3f", got, wantT60)
	}
}

func TestFitDecayNeedsEnoughFrames(t *testing.T) {
	fit := fitDecay([]float64{-10, -12, -14}, 0.01)
	if fit.ok || fit.slope != 0 || fit.t60() != 0 {
		t.Fatalf("short envelope fit=%+v", fit)
	}
	rising := []float64{-60, -50, -40, -30, -20, -10, 0, 1, 2, 3}
	if fit := fitDecay(rising, 0.01); fit.ok {
		t.Fatalf("envelope peaking at the end fit=%+v", fit)
	}
}

func TestLineSlope(t *testing.T) {
	y := make([]float64, 20)
	for i := range y {
		y[i] = 3 - 12*float64(i)*0.05
	}
	if got := lineSlope(y, 0.05); math.Abs(got+12) > 1e-9 {
		t.Fatalf("slope=%g want -12", got)
	}
	if got := lineSlope([]float64{4}, 0.05); got != 0 {
		t.Fatalf("single point slope=%g want 0", got)
	}
}

func TestCompareReportsT60(t *testing.T) {
	sr := 48000
	a := makeDecaySine(sr, 110, 2.0, 0.5)
	b := makeDecaySine(sr, 110, 2.0, 0.25)
	m := Compare(a, b, sr)
	if m.RefT60S <= m.CandT60S || m.CandT60S <= 0 {
		t.Fatalf("t60 ref=%.3f cand=%.3f", m.RefT60S, m.CandT60S)
	}
	if math.Abs(m.RefT60S-60*0.5*math.Ln10/20) > 0.15 {
		t.Fatalf("ref t60=%.3f", m.RefT60S)
	}
}
