package guitar

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-guitar/internal/audioio"
)

func windowRMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func maxAbsDiff(a []float32, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	max := 0.0
	for i := 0; i < n; i++ {
		d := math.Abs(float64(a[i] - b[i]))
		if d > max {
			max = d
		}
	}
	return max
}

func directConvolve(x []float32, h []float32) []float32 {
	y := make([]float32, len(x)+len(h)-1)
	for i := 0; i < len(x); i++ {
		for j := 0; j < len(h); j++ {
			y[i+j] += x[i] * h[j]
		}
	}
	return y
}

// measurePeriod finds the autocorrelation peak between minLag and maxLag and
// refines it with a parabola through the neighbouring lags.
func measurePeriod(samples []float32, minLag, maxLag int) float64 {
	n := len(samples) - maxLag - 1
	if n <= 0 || minLag < 1 {
		return 0
	}
	corr := func(lag int) float64 {
		var sum float64
		for i := 0; i < n; i++ {
			sum += float64(samples[i]) * float64(samples[i+lag])
		}
		return sum
	}
	best := minLag
	bestVal := math.Inf(-1)
	for lag := minLag; lag <= maxLag; lag++ {
		if v := corr(lag); v > bestVal {
			bestVal = v
			best = lag
		}
	}
	a, b, c := corr(best-1), bestVal, corr(best+1)
	den := a - 2*b + c
	if den == 0 {
		return float64(best)
	}
	return float64(best) + 0.5*(a-c)/den
}

// renderVoice runs v for n samples in blocks of block samples.
func renderVoice(v *StringVoice, n, block int) []float32 {
	out := make([]float32, n)
	for pos := 0; pos < n; pos += block {
		end := pos + block
		if end > n {
			end = n
		}
		v.Generate(out[pos:end])
	}
	return out
}

func newTestVoice(t *testing.T) *StringVoice {
	t.Helper()
	v, err := NewStringVoice(NewDefaultParams(), 1)
	if err != nil {
		t.Fatalf("NewStringVoice: %v", err)
	}
	return v
}

func newTestGuitar(t *testing.T, song *Song) *Guitar {
	t.Helper()
	g, err := NewGuitar(NewDefaultParams())
	if err != nil {
		t.Fatalf("NewGuitar: %v", err)
	}
	if song != nil {
		if err := g.SetSong(song); err != nil {
			t.Fatalf("SetSong: %v", err)
		}
	}
	return g
}

func countEvents(events []Event, typ EventType) int {
	n := 0
	for _, ev := range events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func writeTempIRWav(t *testing.T, ir []float32, sampleRate int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ir.wav")
	if err := audioio.WriteMonoWAV(path, ir, sampleRate); err != nil {
		t.Fatalf("WriteMonoWAV: %v", err)
	}
	return path
}
