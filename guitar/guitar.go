package guitar

import (
	"fmt"
	"math"
)

// openPitch is the MIDI key of each open string: E2 A2 D3 G3 B3 E4.
var openPitch = [NumStrings]int{40, 45, 50, 55, 59, 64}

// OpenKey returns the MIDI key of open string i (0 = low E).
func OpenKey(i int) int { return openPitch[i] }

// MaxFret is the highest fret used when mapping live keys onto strings.
const MaxFret = 12

// Guitar owns six string voices and loops a song across them.
type Guitar struct {
	params     Params
	strings    [NumStrings]*StringVoice
	song       *Song
	played     []Pattern // copy of the last song that passed validation
	songErr    error
	cursor     float64 // fractional start of the next pattern
	end        int     // sample time where the compiled song runs out
	time       int
	beatDelay  float64
	strumDelay float64
}

// NewGuitar creates a guitar playing DefaultSong.
func NewGuitar(params *Params) (*Guitar, error) {
	p := resolve(params)
	g := &Guitar{
		params:     p,
		beatDelay:  p.BeatDelay,
		strumDelay: p.StrumDelay,
	}
	for i := range g.strings {
		s, err := NewStringVoice(&p, p.Seed+int64(i)*7919)
		if err != nil {
			return nil, fmt.Errorf("string %d: %w", i+1, err)
		}
		g.strings[i] = s
	}
	if err := g.SetSong(DefaultSong()); err != nil {
		return nil, err
	}
	return g, nil
}

// Voice returns string voice i (0 = low E).
func (g *Guitar) Voice(i int) *StringVoice { return g.strings[i] }

// Song returns the current song.
func (g *Guitar) Song() *Song { return g.song }

// Params returns the resolved parameters.
func (g *Guitar) Params() Params { return g.params }

// Time returns the playback position within the current loop.
func (g *Guitar) Time() int { return g.time }

// End returns the loop length in samples.
func (g *Guitar) End() int { return g.end }

// SetSong validates song, installs it and restarts from the top.
func (g *Guitar) SetSong(song *Song) error {
	if song == nil {
		song = NewSong()
	}
	if err := song.Validate(g.strings[0]); err != nil {
		return err
	}
	g.song = song
	g.Rewind()
	return nil
}

// SyncSong rebuilds every string's timeline from the song. When the song
// no longer validates, the timeline is rebuilt from the last valid version
// and the validation error is returned.
func (g *Guitar) SyncSong() error {
	err := g.song.Validate(g.strings[0])
	if err == nil {
		g.played = copyPatterns(g.song.Patterns)
	}
	g.songErr = err
	for _, s := range g.strings {
		s.ClearEvents()
	}
	g.cursor = 0
	g.end = 0
	for i := range g.played {
		g.compile(&g.played[i])
	}
	return err
}

// SongErr returns the error from the last timeline rebuild, if the song was
// edited into an unplayable state after SetSong.
func (g *Guitar) SongErr() error { return g.songErr }

func copyPatterns(src []*Pattern) []Pattern {
	out := make([]Pattern, len(src))
	for i, p := range src {
		out[i] = *p
		out[i].Strum = append([]Gesture(nil), p.Strum...)
	}
	return out
}

// Rewind moves playback to the start of the song. Strings keep ringing.
// A rebuild failure is kept in SongErr.
func (g *Guitar) Rewind() {
	g.time = 0
	for _, s := range g.strings {
		s.ResetClock()
	}
	_ = g.SyncSong()
}

// AddPattern compiles p into string events starting at the end of the
// timeline and extends the timeline by its duration.
func (g *Guitar) AddPattern(p *Pattern) error {
	if err := p.Validate(g.strings[0]); err != nil {
		return err
	}
	g.compile(p)
	return nil
}

func (g *Guitar) compile(p *Pattern) {
	start := g.cursor
	for i, s := range g.strings {
		key := p.Keys[i]
		for _, d := range p.Strum {
			when := start + d.Beat*g.beatDelay + float64(d.Step)*g.strumDelay
			if d.String == i+1 && key != 0 {
				if key > 0 {
					s.AddUndamp(when - 1)
					_ = s.AddPluck(when, key)
				} else {
					s.AddDamp(when - 1)
					_ = s.AddPluck(when, -key)
				}
			}
			if d.String == -(i + 1) {
				s.AddDamp(when - 1)
			}
		}
	}
	g.cursor += p.Duration * g.beatDelay
	g.end = int(math.Round(g.cursor))
}

// Generate adds the mix of all strings to buf. When the song runs out inside
// the block, the timeline is rebuilt and the rest of the block plays the song
// from the top.
func (g *Guitar) Generate(buf []float32) {
	for len(buf) > 0 {
		if g.end <= 0 {
			g.render(buf)
			g.time += len(buf)
			return
		}
		remaining := g.end - g.time
		if remaining < 0 {
			remaining = 0
		}
		if len(buf) < remaining {
			g.render(buf)
			g.time += len(buf)
			return
		}
		g.render(buf[:remaining])
		g.Rewind()
		buf = buf[remaining:]
	}
}

func (g *Guitar) render(buf []float32) {
	for _, s := range g.strings {
		s.Generate(buf)
	}
}

// Strike plucks key right now on the string that reaches it with the lowest
// fret. It reports false when no string can play key.
func (g *Guitar) Strike(key int) bool {
	best := -1
	bestFret := MaxFret + 1
	for i := NumStrings - 1; i >= 0; i-- {
		fret := key - openPitch[i]
		if fret >= 0 && fret < bestFret {
			best = i
			bestFret = fret
		}
	}
	if best < 0 {
		return false
	}
	s := g.strings[best]
	now := s.Time()
	s.AddUndamp(now)
	return s.AddPluck(now, key) == nil
}

// StringState is a read-only view of one string.
type StringState struct {
	Key    int
	Pitch  float64
	Period float64
	Damped bool
}

// Snapshot is a read-only copy of the state a display needs.
type Snapshot struct {
	Playing bool
	Time    int
	End     int
	Peak    float32
	Strings [NumStrings]StringState
}

// Snapshot captures the current string and transport state.
func (g *Guitar) Snapshot() Snapshot {
	snap := Snapshot{Time: g.time, End: g.end}
	for i, s := range g.strings {
		snap.Strings[i] = StringState{
			Key:    s.Key(),
			Pitch:  s.Pitch(),
			Period: s.Period(),
			Damped: s.Damped(),
		}
	}
	return snap
}
