package dsp

import dspcore "github.com/cwbudde/algo-dsp/dsp/core"

// DampFactor is the per-period amplitude multiplier applied while a string is muted.
const DampFactor = 0.9

// IIRFilt runs the one-pole Karplus-Strong loop filter in place over the first n
// samples of buf, treating them as a circular buffer.
// brightness near 0 averages neighbouring samples; near 1 it barely smooths.
func IIRFilt(buf []float32, n int, brightness float32, gain float32) {
	if n < 1 {
		return
	}
	b1 := 0.5 * (1 - brightness)
	b0 := 1.0 - b1
	for j := 0; j < n-1; j++ {
		buf[j] = FlushDenormals(gain * (b0*buf[j] + b1*buf[j+1]))
	}
	buf[n-1] = FlushDenormals(gain * (b0*buf[n-1] + b1*buf[0]))
}

// DampFilt scales the first n samples by DampFactor.
func DampFilt(buf []float32, n int) {
	for j := 0; j < n; j++ {
		buf[j] *= DampFactor
	}
}

// LagrangeCoeffs returns the second-order Lagrange taps for a fractional
// advance nu in [0,1). The advance is shifted by half a sample, so the taps
// cover a 0.5 to 1.5 sample delay.
func LagrangeCoeffs(nu float32) (c0, c1, c2 float32) {
	nu += 0.5
	c0 = 0.5 * (1 - nu) * (2 - nu)
	c1 = (2 - nu) * nu
	c2 = 0.5 * (nu - 1) * nu
	return c0, c1, c2
}

// FracDelay shifts a circular buffer of length n by a fractional amount using
// second-order Lagrange interpolation over each sample and its two successors.
func FracDelay(buf []float32, n int, nu float32) {
	if n < 2 {
		return
	}
	c0, c1, c2 := LagrangeCoeffs(nu)
	for i := 0; i < n-2; i++ {
		buf[i] = c0*buf[i] + c1*buf[i+1] + c2*buf[i+2]
	}
	buf[n-2] = c0*buf[n-2] + c1*buf[n-1] + c2*buf[0]
	buf[n-1] = c0*buf[n-1] + c1*buf[0] + c2*buf[1]
}

// FracDelayLinear is the first-order variant of FracDelay.
func FracDelayLinear(buf []float32, n int, nu float32) {
	if n < 1 {
		return
	}
	for i := 0; i < n-1; i++ {
		buf[i] += nu * (buf[i+1] - buf[i])
	}
	buf[n-1] += nu * (buf[0] - buf[n-1])
}

// FlushDenormals converts denormal numbers to zero to avoid performance issues.
func FlushDenormals(x float32) float32 {
	return float32(dspcore.FlushDenormals(float64(x)))
}
