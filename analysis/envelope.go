package analysis

import "math"

const (
	envFrame = 256
	envHop   = 128

	// decayRangeDB is how far below the peak the decay fit follows a pluck.
	decayRangeDB = 60.0
)

// dbEnvelope returns the frame RMS of x in dB, one value per hop.
func dbEnvelope(x []float64, frame int, hop int) []float64 {
	if frame <= 0 || hop <= 0 || len(x) < frame {
		return nil
	}
	out := make([]float64, 0, 1+(len(x)-frame)/hop)
	for start := 0; start+frame <= len(x); start += hop {
		out = append(out, linToDB(rms(x[start:start+frame])))
	}
	return out
}

type decayFit struct {
	slope float64 // dB per second, 0 when not measured
	ok    bool
}

// t60 converts the slope into seconds to fall by 60 dB.
func (d decayFit) t60() float64 {
	if !d.ok || d.slope >= 0 {
		return 0
	}
	return -60 / d.slope
}

// fitDecay fits a line to the envelope from just after its peak until it
// falls decayRangeDB below the peak.
func fitDecay(env []float64, hopSec float64) decayFit {
	var none decayFit
	if len(env) < 8 || hopSec <= 0 {
		return none
	}
	peak := 0
	for i, v := range env {
		if v > env[peak] {
			peak = i
		}
	}
	start := peak + 1
	if start >= len(env)-4 {
		return none
	}
	end := start
	for end < len(env) && env[end] >= env[peak]-decayRangeDB {
		end++
	}
	if end-start < 6 {
		return none
	}
	return decayFit{slope: lineSlope(env[start:end], hopSec), ok: true}
}

// lineSlope is the least-squares slope of y sampled every dx.
func lineSlope(y []float64, dx float64) float64 {
	n := float64(len(y))
	meanX := dx * (n - 1) / 2
	var meanY float64
	for _, v := range y {
		meanY += v
	}
	meanY /= n
	var num, den float64
	for i, v := range y {
		x := float64(i)*dx - meanX
		num += x * (v - meanY)
		den += x * x
	}
	if den < 1e-12 {
		return 0
	}
	return num / den
}

func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

// rmse is the RMS difference over the common length of a and b.
func rmse(a []float64, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

func linToDB(x float64) float64 {
	return 20 * math.Log10(math.Max(x, 1e-12))
}
