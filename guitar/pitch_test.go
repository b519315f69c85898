package guitar

import (
	"fmt"
	"math"
	"testing"
)

func TestPitchOfReferenceKeys(t *testing.T) {
	tests := []struct {
		key  float64
		want float64
	}{
		{69, 440.0},
		{60, 261.6256},
		{57, 220.0},
		{40, 82.4069},
		{0, 8.1757989},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("Key%g", tt.key), func(t *testing.T) {
			got := PitchOf(tt.key)
			if math.Abs(got-tt.want) > 1e-3 {
				t.Fatalf("PitchOf(%g)=%f want %f", tt.key, got, tt.want)
			}
		})
	}
}

func TestPitchOfOctaveDoubles(t *testing.T) {
	for key := -24.0; key <= 127; key += 0.5 {
		ratio := PitchOf(key+12) / PitchOf(key)
		if math.Abs(ratio-2) > 1e-12 {
			t.Fatalf("PitchOf(%g+12)/PitchOf(%g)=%.15f want 2", key, key, ratio)
		}
	}
}

func TestKeyName(t *testing.T) {
	tests := map[int]string{
		60: "C4",
		69: "A4",
		40: "E2",
		61: "C#4",
		0:  "C-1",
	}
	for key, want := range tests {
		if got := KeyName(key); got != want {
			t.Fatalf("KeyName(%d)=%q want %q", key, got, want)
		}
	}
}
