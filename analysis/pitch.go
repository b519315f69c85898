package analysis

import (
	"math"

	"github.com/cwbudde/algo-approx"
)

// silenceDB is the RMS level below which a signal is treated as silent.
const silenceDB = -90.0

// DBToLin converts decibels to a linear amplitude ratio.
func DBToLin(db float64) float64 {
	const ln10Over20 = 0.11512925464970228
	return float64(approx.FastExp(float32(db * ln10Over20)))
}

// EstimatePitch returns the fundamental frequency of x in Hz, searching
// periods between sampleRate/maxHz and sampleRate/minHz. It picks the first
// autocorrelation peak within 90% of the strongest one, which avoids locking
// onto a sub-octave, and refines it with parabolic interpolation. It returns 0
// for silent input or an empty search range.
func EstimatePitch(x []float64, sampleRate int, minHz, maxHz float64) float64 {
	if sampleRate <= 0 || minHz <= 0 || maxHz <= minHz {
		return 0
	}
	minLag := int(math.Floor(float64(sampleRate) / maxHz))
	maxLag := int(math.Ceil(float64(sampleRate) / minHz))
	if minLag < 1 {
		minLag = 1
	}
	if maxLag+2 >= len(x) || minLag >= maxLag {
		return 0
	}
	if rms(x) < DBToLin(silenceDB) {
		return 0
	}

	xc := crossCorrelate(x, x)
	if xc == nil {
		return 0
	}
	zero := len(x) - 1
	// Unbiased estimate so long lags are not penalised for overlapping less.
	r := func(lag int) float64 {
		return float64(xc[zero+lag]) / float64(len(x)-lag)
	}

	best := math.Inf(-1)
	for lag := minLag; lag <= maxLag; lag++ {
		if v := r(lag); v > best {
			best = v
		}
	}
	if best <= 0 {
		return 0
	}
	pick := -1
	for lag := minLag; lag <= maxLag; lag++ {
		v := r(lag)
		if v < 0.9*best {
			continue
		}
		if (lag == minLag || v >= r(lag-1)) && v >= r(lag+1) {
			pick = lag
			break
		}
	}
	if pick < 0 {
		return 0
	}

	period := float64(pick)
	if pick > 1 {
		a, b, c := r(pick-1), r(pick), r(pick+1)
		if den := a - 2*b + c; den != 0 {
			period += 0.5 * (a - c) / den
		}
	}
	return float64(sampleRate) / period
}
