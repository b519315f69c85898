package guitar

import (
	"fmt"
	"math"
)

// PitchOf converts a MIDI key number to frequency in Hz.
// Key 60 is middle C and key 69 is A440.
func PitchOf(key float64) float64 {
	return 8.1757989 * math.Pow(2.0, key/12.0)
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// KeyName formats a MIDI key as scientific pitch notation, e.g. 60 -> "C4".
func KeyName(key int) string {
	if key < 0 {
		return fmt.Sprintf("?%d", key)
	}
	return fmt.Sprintf("%s%d", noteNames[key%12], key/12-1)
}
