package guitar

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-guitar/dsp"
)

// StringVoice is a Karplus-Strong string: a circular delay line whose integer
// length is corrected to the exact pitch by a fractional-delay pass once per
// period.
type StringVoice struct {
	sampleRate     float64
	t60            float64
	baseBrightness float32
	numFilt        int
	numFiltPluck   int
	linear         bool
	pluckAmplitude float32
	outputScale    float32

	buffer []float32
	rng    *rand.Rand

	key        int
	pitch      float64
	period     float64
	periodI    int
	sample     float64 // read cursor in [0, periodI)
	time       float64 // absolute sample position
	gain       float32
	brightness float32
	damp       bool

	events eventQueue
}

// NewStringVoice allocates the delay line and frets middle C.
func NewStringVoice(params *Params, seed int64) (*StringVoice, error) {
	p := resolve(params)
	s := &StringVoice{
		sampleRate:     float64(p.SampleRate),
		t60:            p.T60,
		baseBrightness: p.Brightness,
		numFilt:        p.NumFilt,
		numFiltPluck:   p.NumFiltPluck,
		linear:         p.LinearInterp,
		pluckAmplitude: p.PluckAmplitude,
		outputScale:    p.OutputScale,
		buffer:         make([]float32, p.Capacity),
		rng:            rand.New(rand.NewSource(seed)),
	}
	if err := s.Fret(60); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapacity, err)
	}
	return s, nil
}

// periodFor adds back the half-sample advance of each loop filter pass and,
// for Lagrange, the half-sample shift of the interpolator.
func (s *StringVoice) periodFor(pitch float64) float64 {
	period := s.sampleRate/pitch + 0.5*float64(s.numFilt)
	if !s.linear {
		period += 0.5
	}
	return period
}

func (s *StringVoice) checkKey(key int) error {
	periodI := int(math.Ceil(s.periodFor(PitchOf(float64(key)))))
	if periodI > len(s.buffer) || periodI < minPeriod {
		return fmt.Errorf("%w: key %d needs a %d-sample loop, capacity is %d", ErrKeyOutOfRange, key, periodI, len(s.buffer))
	}
	return nil
}

// Fret retunes the string to key without restarting its phase.
func (s *StringVoice) Fret(key int) error {
	if err := s.checkKey(key); err != nil {
		return err
	}
	s.key = key
	s.pitch = PitchOf(float64(key))
	s.period = s.periodFor(s.pitch)
	for s.sample >= s.period {
		s.sample -= s.period
	}
	s.periodI = int(math.Ceil(s.period))
	s.gain = float32(math.Pow(0.001, 1.0/(s.pitch*s.t60*float64(s.numFilt))))
	s.brightness = s.baseBrightness
	return nil
}

// Pluck fills the current loop with noise and pre-shapes it with the loop filter.
func (s *StringVoice) Pluck() {
	n := s.periodI
	for i := 0; i < n; i++ {
		s.buffer[i] = s.pluckAmplitude * float32(2*s.rng.Float64()-1)
	}
	for i := 0; i < s.numFiltPluck; i++ {
		dsp.IIRFilt(s.buffer, n, s.brightness, s.gain)
	}
}

// render adds the string output for buf[start:end] and runs the loop filters
// each time the cursor wraps.
func (s *StringVoice) render(buf []float32, start, end int) {
	p := s.sample
	periodI := float64(s.periodI)
	nu := float32(periodI - s.period)
	for i := start; i < end; i++ {
		buf[i] += s.outputScale * s.buffer[int(p)]
		p++
		if p >= periodI {
			p -= periodI
			if s.linear {
				dsp.FracDelayLinear(s.buffer, s.periodI, nu)
			} else {
				dsp.FracDelay(s.buffer, s.periodI, nu)
			}
			for j := 0; j < s.numFilt; j++ {
				dsp.IIRFilt(s.buffer, s.periodI, s.brightness, s.gain)
			}
			if s.damp {
				dsp.DampFilt(s.buffer, s.periodI)
			}
		}
	}
	s.sample = p
}

// Generate adds len(buf) samples of output to buf, applying every event that
// falls inside the block at its sample boundary.
func (s *StringVoice) Generate(buf []float32) {
	n := float64(len(buf))
	start := 0.0
	for start < n {
		end := n
		ev, ok := s.events.next(s.time+start, s.time+end)
		if ok {
			end = ev.Time - s.time
		}
		s.render(buf, int(math.Ceil(start)), int(math.Ceil(end)))
		if ok {
			s.apply(ev)
		}
		start = end
	}
	s.time += n
}

func (s *StringVoice) apply(ev Event) {
	switch ev.Type {
	case EventPluck:
		s.Pluck()
		_ = s.Fret(ev.Key)
	case EventDamp:
		s.damp = true
	case EventUndamp:
		s.damp = false
	case EventHammer:
		_ = s.Fret(ev.Key)
	}
}

// AddPluck schedules a pluck that also frets key.
func (s *StringVoice) AddPluck(time float64, key int) error {
	if err := s.checkKey(key); err != nil {
		return err
	}
	s.events.push(Event{Type: EventPluck, Time: time, Key: key})
	return nil
}

// AddHammer schedules a fret change without excitation.
func (s *StringVoice) AddHammer(time float64, key int) error {
	if err := s.checkKey(key); err != nil {
		return err
	}
	s.events.push(Event{Type: EventHammer, Time: time, Key: key})
	return nil
}

// AddDamp schedules a mute.
func (s *StringVoice) AddDamp(time float64) {
	s.events.push(Event{Type: EventDamp, Time: time})
}

// AddUndamp schedules the end of a mute.
func (s *StringVoice) AddUndamp(time float64) {
	s.events.push(Event{Type: EventUndamp, Time: time})
}

// ClearEvents drops every pending event.
func (s *StringVoice) ClearEvents() {
	s.events.clear()
}

// ResetClock moves the absolute time back to zero without touching the
// delay line, so a ringing string carries over a song loop.
func (s *StringVoice) ResetClock() {
	s.time = 0
}

// Events returns a copy of the pending events in the order they will fire.
func (s *StringVoice) Events() []Event {
	return s.events.pending()
}

// Key returns the MIDI key the string is fretted at.
func (s *StringVoice) Key() int { return s.key }

// Pitch returns the fretted frequency in Hz.
func (s *StringVoice) Pitch() float64 { return s.pitch }

// Period returns the fractional loop length in samples.
func (s *StringVoice) Period() float64 { return s.period }

// PeriodI returns the integer part of Period, the active delay-line length.
func (s *StringVoice) PeriodI() int { return s.periodI }

// Gain returns the per-pass loop gain.
func (s *StringVoice) Gain() float32 { return s.gain }

// Brightness returns the current loop filter coefficient.
func (s *StringVoice) Brightness() float32 { return s.brightness }

// Damped reports whether the string is muted.
func (s *StringVoice) Damped() bool { return s.damp }

// Time returns the absolute sample position of the voice.
func (s *StringVoice) Time() float64 { return s.time }

// Cursor returns the fractional read position inside the loop.
func (s *StringVoice) Cursor() float64 { return s.sample }

// Capacity returns the delay-line length.
func (s *StringVoice) Capacity() int { return len(s.buffer) }

// Loop returns a copy of the active part of the delay line.
func (s *StringVoice) Loop() []float32 {
	out := make([]float32, s.periodI)
	copy(out, s.buffer[:s.periodI])
	return out
}
