package guitar

import (
	"fmt"
	"math"
)

// Gesture is one articulation inside a pattern. String selects a string by
// 1-based index: positive plucks it with the pattern's key, negative mutes it.
// The gesture fires at Beat beats plus Step strum sub-steps after the pattern
// start.
type Gesture struct {
	String int
	Beat   float64
	Step   int
}

// Pattern is a chord held for Duration beats and articulated by Strum.
// A key of 0 leaves the string silent; a negative key plucks abs(key) muted.
type Pattern struct {
	Keys     [NumStrings]int
	Duration float64
	Strum    []Gesture
}

// NewPattern damps every string just before the downbeat and then strums all
// six strings from low to high, one sub-step apart.
func NewPattern(keys [NumStrings]int) *Pattern {
	strum := AllDamp(0)
	strum = append(strum, SimpleStrum(0, 1)...)
	return &Pattern{
		Keys:     keys,
		Duration: 2,
		Strum:    strum,
	}
}

// NewPickingPattern plays the strings one at a time in order, dur beats apart.
func NewPickingPattern(keys [NumStrings]int, order []int, dur float64) *Pattern {
	strum := AllDamp(0)
	strum = append(strum, Picking(order, dur)...)
	return &Pattern{
		Keys:     keys,
		Duration: 2,
		Strum:    strum,
	}
}

// SimpleStrum plucks strings 1..6 at beat, each offset sub-steps after the last.
func SimpleStrum(beat float64, offset int) []Gesture {
	out := make([]Gesture, NumStrings)
	for i := range out {
		out[i] = Gesture{String: i + 1, Beat: beat, Step: i * offset}
	}
	return out
}

// AllDamp mutes all strings a hair before beat.
func AllDamp(beat float64) []Gesture {
	b := beat - 0.0001
	out := make([]Gesture, NumStrings)
	for i := range out {
		out[i] = Gesture{String: -(i + 1), Beat: b}
	}
	return out
}

// Picking plucks the strings listed in order, one every dur beats.
func Picking(order []int, dur float64) []Gesture {
	out := make([]Gesture, len(order))
	for i, str := range order {
		out[i] = Gesture{String: str, Beat: dur * float64(i)}
	}
	return out
}

// Validate checks that every sounding key can be fretted by a voice like v.
func (p *Pattern) Validate(v *StringVoice) error {
	if p == nil {
		return fmt.Errorf("nil pattern")
	}
	if math.IsNaN(p.Duration) || math.IsInf(p.Duration, 0) {
		return fmt.Errorf("pattern duration must be finite")
	}
	for i, key := range p.Keys {
		if key == 0 {
			continue
		}
		if key < 0 {
			key = -key
		}
		if err := v.checkKey(key); err != nil {
			return fmt.Errorf("string %d: %w", i+1, err)
		}
	}
	for i, g := range p.Strum {
		if g.String == 0 || g.String > NumStrings || g.String < -NumStrings {
			return fmt.Errorf("gesture %d: string selector %d out of range", i, g.String)
		}
	}
	return nil
}
