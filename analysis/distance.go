package analysis

import (
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"

	"github.com/cwbudde/algo-guitar/internal/audioio"
)

// Score weights of the normalized sub-metrics.
const (
	WeightTime     = 0.30
	WeightEnvelope = 0.25
	WeightSpectral = 0.30
	WeightDecay    = 0.15
)

const (
	silenceFloor = 1e-6
	targetRMS    = 0.1
	minAligned   = 256
	maxCompareS  = 12
)

// Metrics contains distance and similarity measurements between two audio signals.
type Metrics struct {
	SampleRate int `json:"sample_rate"`

	ReferenceFrames int `json:"reference_frames"`
	CandidateFrames int `json:"candidate_frames"`
	AlignedFrames   int `json:"aligned_frames"`
	LagSamples      int `json:"lag_samples"`

	TimeRMSE        float64 `json:"time_rmse"`
	EnvelopeRMSEDB  float64 `json:"envelope_rmse_db"`
	SpectralRMSEDB  float64 `json:"spectral_rmse_db"`
	RefDecayDBPerS  float64 `json:"ref_decay_db_per_s"`
	CandDecayDBPerS float64 `json:"cand_decay_db_per_s"`
	DecayDiffDBPerS float64 `json:"decay_diff_db_per_s"`
	RefT60S         float64 `json:"ref_t60_s"`  // 0 when no decay was measured
	CandT60S        float64 `json:"cand_t60_s"` // 0 when no decay was measured

	TimeNorm     float64 `json:"time_norm"`
	EnvelopeNorm float64 `json:"envelope_norm"`
	SpectralNorm float64 `json:"spectral_norm"`
	DecayNorm    float64 `json:"decay_norm"`
	Dominant     string  `json:"dominant,omitempty"` // sub-metric contributing most to Score

	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
}

// Compare returns objective distance metrics and a combined score in [0,1].
// Both signals are trimmed of leading silence, brought to the same RMS and
// aligned by cross-correlation before they are measured.
func Compare(reference []float64, candidate []float64, sampleRate int) Metrics {
	m := Metrics{
		SampleRate:      sampleRate,
		ReferenceFrames: len(reference),
		CandidateFrames: len(candidate),
		Score:           1,
	}
	if sampleRate <= 0 {
		return m
	}
	ref, cand := prepare(reference), prepare(candidate)
	if len(ref) == 0 || len(cand) == 0 {
		return m
	}

	maxLag := max(1, min(sampleRate/2, len(ref)-1, len(cand)-1))
	m.LagSamples = estimateLag(ref, cand, maxLag)
	ref, cand = alignByLag(ref, cand, m.LagSamples)
	n := min(len(ref), len(cand), sampleRate*maxCompareS)
	if n < minAligned {
		return m
	}
	ref, cand = ref[:n], cand[:n]
	m.AlignedFrames = n

	m.TimeRMSE = rmse(ref, cand)

	refEnv := dbEnvelope(ref, envFrame, envHop)
	candEnv := dbEnvelope(cand, envFrame, envHop)
	m.EnvelopeRMSEDB = rmse(refEnv, candEnv)
	m.SpectralRMSEDB = spectralRMSEDB(ref, cand)

	hopSec := float64(envHop) / float64(sampleRate)
	refFit := fitDecay(refEnv, hopSec)
	candFit := fitDecay(candEnv, hopSec)
	m.RefDecayDBPerS, m.RefT60S = refFit.slope, refFit.t60()
	m.CandDecayDBPerS, m.CandT60S = candFit.slope, candFit.t60()
	if refFit.ok && candFit.ok {
		m.DecayDiffDBPerS = math.Abs(refFit.slope - candFit.slope)
	}

	m.score()
	return m
}

// score normalizes the raw distances and combines them.
func (m *Metrics) score() {
	m.TimeNorm = unit(m.TimeRMSE / 0.25)
	m.EnvelopeNorm = unit(m.EnvelopeRMSEDB / 30)
	m.SpectralNorm = unit(m.SpectralRMSEDB / 30)
	m.DecayNorm = unit(m.DecayDiffDBPerS / 40)

	parts := []struct {
		name string
		v    float64
	}{
		{"time", WeightTime * m.TimeNorm},
		{"envelope", WeightEnvelope * m.EnvelopeNorm},
		{"spectral", WeightSpectral * m.SpectralNorm},
		{"decay", WeightDecay * m.DecayNorm},
	}
	var sum, top float64
	m.Dominant = ""
	for _, p := range parts {
		sum += p.v
		if p.v > top {
			m.Dominant, top = p.name, p.v
		}
	}
	m.Score = unit(sum)
	m.Similarity = unit(math.Exp(-4 * m.Score))
}

func unit(x float64) float64 { return audioio.Clamp(x, 0, 1) }

// prepare drops leading silence and scales x to targetRMS.
func prepare(x []float64) []float64 {
	start := 0
	for start < len(x) && math.Abs(x[start]) <= silenceFloor {
		start++
	}
	x = x[start:]
	out := make([]float64, len(x))
	g := 1.0
	if r := rms(x); r > 1e-12 {
		g = targetRMS / r
	}
	for i, v := range x {
		out[i] = v * g
	}
	return out
}

// estimateLag returns the shift of cand relative to ref in [-maxLag, maxLag]
// that maximises their cross-correlation.
func estimateLag(ref []float64, cand []float64, maxLag int) int {
	xc := crossCorrelate(ref, cand)
	if len(xc) == 0 {
		return 0
	}
	zero := len(cand) - 1
	lo := max(-maxLag, -zero)
	hi := min(maxLag, len(xc)-1-zero)
	bestLag := 0
	best := math.Inf(-1)
	for lag := lo; lag <= hi; lag++ {
		if v := float64(xc[zero+lag]); v > best {
			best, bestLag = v, lag
		}
	}
	return bestLag
}

// crossCorrelate returns c where c[len(b)-1+lag] = sum_i a[i+lag]*b[i].
func crossCorrelate(a []float64, b []float64) []float32 {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	a32 := make([]float32, len(a))
	for i, v := range a {
		a32[i] = float32(v)
	}
	rev := make([]float32, len(b))
	for i, v := range b {
		rev[len(b)-1-i] = float32(v)
	}
	out := make([]float32, len(a)+len(b)-1)
	if err := algofft.ConvolveReal(out, a32, rev); err != nil {
		return nil
	}
	return out
}

// alignByLag drops the lead of whichever signal starts later.
func alignByLag(ref []float64, cand []float64, lag int) ([]float64, []float64) {
	switch {
	case lag >= len(ref) || -lag >= len(cand):
		return nil, nil
	case lag >= 0:
		return ref[lag:], cand
	default:
		return ref, cand[-lag:]
	}
}

// spectralRMSEDB compares Hann-windowed magnitude spectra of the first
// power-of-two block (512 to 4096 samples) shared by a and b.
func spectralRMSEDB(a []float64, b []float64) float64 {
	n := min(len(a), len(b))
	if n < 512 {
		return 0
	}
	size := 512
	for size < 4096 && size*2 <= n {
		size *= 2
	}
	aw, bw, bins := spectralWindowedInputs(a[:size], b[:size])
	plan, err := algofft.NewPlanReal64(size)
	if err != nil {
		return 0
	}
	specA := make([]complex128, size/2+1)
	specB := make([]complex128, size/2+1)
	plan.Forward(specA, aw)
	plan.Forward(specB, bw)

	diff := make([]float64, bins-1)
	for k := 1; k < bins; k++ {
		diff[k-1] = linToDB(cmplx.Abs(specA[k])) - linToDB(cmplx.Abs(specB[k]))
	}
	return rms(diff)
}

// spectralWindowedInputs applies a Hann window to equal-length inputs and
// returns the number of bins below Nyquist.
func spectralWindowedInputs(a []float64, b []float64) ([]float64, []float64, int) {
	n := min(len(a), len(b))
	aw := make([]float64, n)
	bw := make([]float64, n)
	for i := 0; i < n; i++ {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		aw[i] = a[i] * w
		bw[i] = b[i] * w
	}
	return aw, bw, n / 2
}
