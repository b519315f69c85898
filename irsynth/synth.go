package irsynth

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/cwbudde/algo-approx"
	pdefd "github.com/cwbudde/algo-pde/fd"
	pdepoisson "github.com/cwbudde/algo-pde/poisson"
)

// BodyConfig controls mono guitar body IR generation.
//
// The body is modelled as a Helmholtz air resonance plus the modes of an
// orthotropic top plate. Plate modes come from the finite-difference Dirichlet
// Laplacian spectrum on a GridSize grid along each axis, combined as
//
//	f_mn/f_11 = sqrt(S·λm² + 2·√S·λm·R²λn + R⁴λn²) / (same at m=n=1)
//
// where S = StiffnessRatio (Dx/Dy) and R = PlateRatio (Lx/Ly). The discrete
// spectrum flattens towards the grid's Nyquist, so GridSize also bounds how
// many distinct high modes appear.
type BodyConfig struct {
	SampleRate     int
	DurationS      float64 // typically 0.03-0.2s
	Modes          int     // max plate modes to include
	Seed           int64
	Brightness     float64
	AirHz          float64 // Helmholtz resonance of the sound hole
	AirLevel       float64
	TopHz          float64 // lowest top-plate mode f_11
	PlateRatio     float64 // Lx/Ly aspect ratio of the top
	StiffnessRatio float64 // Dx/Dy, along/across the grain
	GridSize       int
	DirectLevel    float64
	LowDecayS      float64 // decay time for modes below CrossoverHz
	HighDecayS     float64 // decay time for modes above CrossoverHz
	CrossoverHz    float64
	FadeOutS       float64 // cosine fade-out at the end; 0 = no fade

	NormalizePeak float64
}

// DefaultBodyConfig returns defaults for a small-bodied acoustic guitar.
func DefaultBodyConfig() BodyConfig {
	return BodyConfig{
		SampleRate:     44100,
		DurationS:      0.08,
		Modes:          48,
		Seed:           1,
		Brightness:     1.0,
		AirHz:          100.0,
		AirLevel:       0.8,
		TopHz:          200.0,
		PlateRatio:     1.3,
		StiffnessRatio: 12.0, // spruce
		GridSize:       48,
		DirectLevel:    0.5,
		LowDecayS:      0.12,
		HighDecayS:     0.02,
		CrossoverHz:    1000.0,
		FadeOutS:       0.005,
		NormalizePeak:  0.9,
	}
}

func (c *BodyConfig) Validate() error {
	if c.SampleRate < 8000 {
		return fmt.Errorf("sample rate too low: %d", c.SampleRate)
	}
	if c.DurationS <= 0 {
		return fmt.Errorf("duration must be > 0")
	}
	if c.Modes < 1 {
		return fmt.Errorf("modes must be >= 1")
	}
	if c.Brightness <= 0 {
		return fmt.Errorf("brightness must be > 0")
	}
	if c.AirHz <= 0 || c.TopHz <= 0 {
		return fmt.Errorf("air and top frequencies must be > 0")
	}
	if c.TopHz >= 0.47*float64(c.SampleRate) {
		return fmt.Errorf("top frequency %g Hz above band limit", c.TopHz)
	}
	if c.AirLevel < 0 {
		return fmt.Errorf("air level must be >= 0")
	}
	if c.PlateRatio <= 0 {
		return fmt.Errorf("plate ratio must be > 0")
	}
	if c.StiffnessRatio <= 0 {
		return fmt.Errorf("stiffness ratio must be > 0")
	}
	if c.GridSize < 2 {
		return fmt.Errorf("grid size must be >= 2")
	}
	if c.DirectLevel < 0 {
		return fmt.Errorf("direct level must be >= 0")
	}
	if c.LowDecayS <= 0 || c.HighDecayS <= 0 {
		return fmt.Errorf("decay seconds must be > 0")
	}
	if c.CrossoverHz <= 0 {
		return fmt.Errorf("crossover Hz must be > 0")
	}
	if c.NormalizePeak <= 0 {
		return fmt.Errorf("normalize peak must be > 0")
	}
	return nil
}

// GenerateBody synthesizes a mono body IR.
func GenerateBody(cfg BodyConfig) ([]float32, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	n := int(math.Round(cfg.DurationS * float64(cfg.SampleRate)))
	if n < 1 {
		n = 1
	}
	buf := make([]float64, n)

	rng := rand.New(rand.NewSource(cfg.Seed))

	buf[0] += cfg.DirectLevel

	maxF := 0.47 * float64(cfg.SampleRate)

	if cfg.AirLevel > 0 && cfg.AirHz < maxF {
		decay := math.Exp(-1.0 / (cfg.LowDecayS * float64(cfg.SampleRate)))
		addModeRec(buf, cfg.AirLevel, cfg.AirHz, 0, decay, cfg.SampleRate)
	}

	freqs := plateModeFreqs(cfg.TopHz, maxF, cfg.Modes, cfg.GridSize, cfg.PlateRatio, cfg.StiffnessRatio)

	logCrossover := math.Log(cfg.CrossoverHz)
	brightnessExp := 0.7 + 0.9*cfg.Brightness
	for _, f := range freqs {
		amp := 0.9 / math.Pow(1.0+f/cfg.TopHz, brightnessExp)
		amp *= 0.7 + 0.6*rng.Float64()

		// 0 = pure LowDecayS, 1 = pure HighDecayS.
		blend := 1.0 / (1.0 + float64(approx.FastExp(float32(-3.0*(math.Log(f)-logCrossover)))))
		tau := cfg.LowDecayS*(1.0-blend) + cfg.HighDecayS*blend
		decay := math.Exp(-1.0 / (tau * float64(cfg.SampleRate)))

		phi := rng.Float64() * 2.0 * math.Pi
		addModeRec(buf, amp, f, phi, decay, cfg.SampleRate)
	}

	highpassDC(buf, 0.995)
	applyFadeOut(buf, cfg.FadeOutS, cfg.SampleRate)

	peak := maxAbs(buf)
	if peak < 1e-12 {
		peak = 1e-12
	}
	s := cfg.NormalizePeak / peak
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = float32(buf[i] * s)
	}
	return out, nil
}

// plateModeFreqs returns up to maxModes ascending plate frequencies in
// [f11, maxF]. The first entry is always f11.
func plateModeFreqs(f11, maxF float64, maxModes, grid int, R, S float64) []float64 {
	lambda := pdefd.Eigenvalues(grid, 1.0/float64(grid+1), pdepoisson.Dirichlet)
	sqrtS := math.Sqrt(S)
	R2 := R * R
	omega := func(lx, ly float64) float64 {
		ly *= R2
		return math.Sqrt(S*lx*lx + 2*sqrtS*lx*ly + ly*ly)
	}
	base := omega(lambda[0], lambda[0])

	freqs := make([]float64, 0, maxModes)
	for m := range lambda {
		for n := range lambda {
			f := f11 * omega(lambda[m], lambda[n]) / base
			if f > maxF {
				break // lambda is non-decreasing in n
			}
			freqs = append(freqs, f)
		}
	}

	sort.Float64s(freqs)
	if len(freqs) > maxModes {
		freqs = freqs[:maxModes]
	}
	return freqs
}

func addModeRec(out []float64, amp float64, freq float64, phase float64, decay float64, sampleRate int) {
	if len(out) == 0 {
		return
	}
	w := 2.0 * math.Pi * freq / float64(sampleRate)
	cw := math.Cos(w)
	x0 := math.Cos(phase)
	x1 := math.Cos(phase + w)
	env := 1.0

	out[0] += amp * env * x0
	env *= decay
	if len(out) == 1 {
		return
	}
	out[1] += amp * env * x1
	env *= decay
	for i := 2; i < len(out); i++ {
		x2 := 2.0*cw*x1 - x0
		x0 = x1
		x1 = x2
		out[i] += amp * env * x2
		env *= decay
	}
}

func highpassDC(x []float64, r float64) {
	prevIn := 0.0
	prevOut := 0.0
	for i := range x {
		y := x[i] - prevIn + r*prevOut
		prevIn = x[i]
		prevOut = y
		x[i] = y
	}
}

func maxAbs(x []float64) float64 {
	m := 0.0
	for _, v := range x {
		a := math.Abs(v)
		if a > m {
			m = a
		}
	}
	return m
}

// applyFadeOut applies a cosine fade-out to the last fadeS seconds of buf.
func applyFadeOut(buf []float64, fadeS float64, sampleRate int) {
	if fadeS <= 0 || len(buf) == 0 {
		return
	}
	fadeSamples := int(math.Round(fadeS * float64(sampleRate)))
	if fadeSamples > len(buf) {
		fadeSamples = len(buf)
	}
	start := len(buf) - fadeSamples
	for i := 0; i < fadeSamples; i++ {
		t := float64(i) / float64(fadeSamples)
		buf[start+i] *= 0.5 * (1.0 + math.Cos(t*math.Pi))
	}
}
