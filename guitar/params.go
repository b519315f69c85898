package guitar

import "errors"

const (
	// SampleRate is the fixed output rate of the synthesizer in Hz.
	SampleRate = 44100
	// NumStrings is the number of string voices owned by a Guitar.
	NumStrings = 6
	// DefaultCapacity is the delay-line length of each string voice.
	DefaultCapacity = 4096

	// minPeriod is the shortest loop the circular filters accept.
	minPeriod = 3
)

var (
	// ErrKeyOutOfRange reports a key whose loop length does not fit the delay line.
	ErrKeyOutOfRange = errors.New("key out of range")
	// ErrCapacity reports a delay line too short for the initial fret.
	ErrCapacity = errors.New("delay line capacity too small")
	// ErrNoStrings reports a player created without an instrument.
	ErrNoStrings = errors.New("no instrument to play")
)

// Params holds the synthesis and sequencing parameters.
type Params struct {
	SampleRate int
	Capacity   int

	T60            float64 // seconds to decay by 60 dB
	Brightness     float32 // loop filter coefficient B restored on every fret
	NumFilt        int     // loop filter passes per period
	NumFiltPluck   int     // filter passes shaping the excitation
	LinearInterp   bool    // first-order fractional delay instead of Lagrange
	PluckAmplitude float32
	OutputScale    float32 // per-voice contribution to the mix

	BeatDelay  float64 // samples per beat
	StrumDelay float64 // samples per strum sub-step

	Seed int64

	OutputGain float32

	BodyEnabled   bool
	BodyIRWavPath string // empty selects the synthetic body IR
	BodyGain      float32
}

// NewDefaultParams creates default parameters.
func NewDefaultParams() *Params {
	return &Params{
		SampleRate:     SampleRate,
		Capacity:       DefaultCapacity,
		T60:            8.0,
		Brightness:     0.0,
		NumFilt:        1,
		NumFiltPluck:   1,
		PluckAmplitude: 0.8,
		OutputScale:    0.5,
		BeatDelay:      SampleRate / 60 * 60,
		StrumDelay:     6600,
		Seed:           1,
		OutputGain:     1.0,
		BodyEnabled:    false,
		BodyGain:       1.0,
	}
}

// resolve returns a copy of p with unusable fields replaced by defaults.
func resolve(p *Params) Params {
	d := NewDefaultParams()
	if p == nil {
		return *d
	}
	r := *p
	if r.SampleRate <= 0 {
		r.SampleRate = d.SampleRate
	}
	if r.Capacity <= 0 {
		r.Capacity = d.Capacity
	}
	if r.T60 <= 0 {
		r.T60 = d.T60
	}
	if r.Brightness < 0 {
		r.Brightness = 0
	}
	if r.Brightness > 0.99 {
		r.Brightness = 0.99
	}
	if r.NumFilt < 1 {
		r.NumFilt = d.NumFilt
	}
	if r.NumFiltPluck < 0 {
		r.NumFiltPluck = d.NumFiltPluck
	}
	if r.PluckAmplitude <= 0 {
		r.PluckAmplitude = d.PluckAmplitude
	}
	if r.OutputScale <= 0 {
		r.OutputScale = d.OutputScale
	}
	if r.BeatDelay <= 0 {
		r.BeatDelay = d.BeatDelay
	}
	if r.StrumDelay < 0 {
		r.StrumDelay = d.StrumDelay
	}
	if r.OutputGain <= 0 {
		r.OutputGain = d.OutputGain
	}
	if r.BodyGain <= 0 {
		r.BodyGain = d.BodyGain
	}
	return r
}
