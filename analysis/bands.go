package analysis

import (
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

const (
	bandFFTSize = 4096
	bandHop     = 2048
)

// Band is a frequency range in Hz.
type Band struct {
	Name string
	LoHz float64
	HiHz float64
}

// TimeWindow is a time range in milliseconds from the aligned start.
type TimeWindow struct {
	Name    string
	StartMS float64
	EndMS   float64
}

// DefaultBands cover the range a plucked string and its body occupy.
var DefaultBands = []Band{
	{"sub-bass (20-80Hz)", 20, 80},
	{"bass (80-300Hz)", 80, 300},
	{"low-mid (300-1kHz)", 300, 1000},
	{"mid (1-3kHz)", 1000, 3000},
	{"hi-mid (3-6kHz)", 3000, 6000},
	{"high (6-12kHz)", 6000, 12000},
	{"air (12-20kHz)", 12000, 20000},
}

// DefaultWindows split a pluck into attack, body and tail.
var DefaultWindows = []TimeWindow{
	{"attack (0-20ms)", 0, 20},
	{"early (20-100ms)", 20, 100},
	{"sustain (100-500ms)", 100, 500},
	{"decay (0.5-2s)", 500, 2000},
	{"late (2-4s)", 2000, 4000},
}

// BandDiff compares one band inside one time window.
type BandDiff struct {
	Band    string  `json:"band"`
	RMSEDB  float64 `json:"rmse_db"` // per-bin log-magnitude RMSE
	RefDB   float64 `json:"ref_db"`
	CandDB  float64 `json:"cand_db"`
	DiffDB  float64 `json:"diff_db"` // CandDB - RefDB
	NumBins int     `json:"bins"`
}

// WindowReport holds the band diffs of one time window.
type WindowReport struct {
	Window string     `json:"window"`
	Frames int        `json:"frames"`
	Bands  []BandDiff `json:"bands"`
}

// CompareBands aligns cand to ref by peak position and compares their
// averaged STFT magnitudes band by band in each time window. Windows past the
// end of the shorter signal are skipped.
func CompareBands(ref, cand []float64, sampleRate int, windows []TimeWindow, bands []Band) ([]WindowReport, error) {
	ref, cand = alignByPeak(ref, cand)
	n := min(len(ref), len(cand))

	plan, err := algofft.NewPlanReal64(bandFFTSize)
	if err != nil {
		return nil, err
	}
	binHz := float64(sampleRate) / bandFFTSize
	nBins := bandFFTSize / 2
	hann := make([]float64, bandFFTSize)
	for i := range hann {
		hann[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(bandFFTSize-1))
	}
	specRef := make([]complex128, nBins+1)
	specCand := make([]complex128, nBins+1)
	bufRef := make([]float64, bandFFTSize)
	bufCand := make([]float64, bandFFTSize)

	var out []WindowReport
	for _, tw := range windows {
		start := int(tw.StartMS / 1000 * float64(sampleRate))
		end := min(int(tw.EndMS/1000*float64(sampleRate)), n)
		if start >= end {
			continue
		}

		avgRef := make([]float64, nBins)
		avgCand := make([]float64, nBins)
		frames := 0
		accumulate := func(pos, length int) {
			clear(bufRef)
			clear(bufCand)
			for i := 0; i < length; i++ {
				bufRef[i] = ref[pos+i] * hann[i]
				bufCand[i] = cand[pos+i] * hann[i]
			}
			plan.Forward(specRef, bufRef)
			plan.Forward(specCand, bufCand)
			for k := 1; k < nBins; k++ {
				avgRef[k] += cmplx.Abs(specRef[k])
				avgCand[k] += cmplx.Abs(specCand[k])
			}
			frames++
		}
		for pos := start; pos+bandFFTSize <= end; pos += bandHop {
			accumulate(pos, bandFFTSize)
		}
		if frames == 0 {
			// Window shorter than one frame: zero-padded single frame.
			accumulate(start, min(end-start, bandFFTSize))
		}
		scale := 1 / float64(frames)
		for k := range avgRef {
			avgRef[k] *= scale
			avgCand[k] *= scale
		}

		wr := WindowReport{Window: tw.Name, Frames: frames}
		for _, b := range bands {
			loK := max(int(b.LoHz/binHz), 1)
			hiK := min(int(b.HiHz/binHz), nBins-1)
			if loK > hiK {
				continue
			}
			var sumSq, refPow, candPow float64
			cnt := 0
			for k := loK; k <= hiK; k++ {
				d := linToDB(avgRef[k]) - linToDB(avgCand[k])
				sumSq += d * d
				refPow += avgRef[k] * avgRef[k]
				candPow += avgCand[k] * avgCand[k]
				cnt++
			}
			refDB := 10 * math.Log10(math.Max(refPow/float64(cnt), 1e-24))
			candDB := 10 * math.Log10(math.Max(candPow/float64(cnt), 1e-24))
			wr.Bands = append(wr.Bands, BandDiff{
				Band:    b.Name,
				RMSEDB:  math.Sqrt(sumSq / float64(cnt)),
				RefDB:   refDB,
				CandDB:  candDB,
				DiffDB:  candDB - refDB,
				NumBins: cnt,
			})
		}
		out = append(out, wr)
	}
	return out, nil
}

// alignByPeak drops leading samples so both signals peak at the same index.
func alignByPeak(ref, cand []float64) ([]float64, []float64) {
	lag := peakIndex(cand) - peakIndex(ref)
	switch {
	case lag > 0 && lag < len(cand):
		cand = cand[lag:]
	case lag < 0 && -lag < len(ref):
		ref = ref[-lag:]
	}
	return ref, cand
}

func peakIndex(x []float64) int {
	idx := 0
	peak := -1.0
	for i, v := range x {
		if a := math.Abs(v); a > peak {
			idx, peak = i, a
		}
	}
	return idx
}
