package guitar

import "fmt"

// Song is an ordered list of patterns that loops forever.
type Song struct {
	BPM      float64 // label only; timing comes from the beat delay
	Patterns []*Pattern
}

// NewSong creates an empty song at 120 bpm.
func NewSong() *Song {
	return &Song{BPM: 120}
}

// Add appends a pattern.
func (s *Song) Add(p *Pattern) {
	s.Patterns = append(s.Patterns, p)
}

// DefaultSong is a I-vi-IV-V progression in G.
func DefaultSong() *Song {
	s := NewSong()
	s.Add(NewPattern([NumStrings]int{43, 47, 50, 55, 59, 67})) // G
	s.Add(NewPattern([NumStrings]int{40, 47, 52, 55, 59, 64})) // Em
	s.Add(NewPattern([NumStrings]int{48, 48, 52, 55, 60, 64})) // C
	s.Add(NewPattern([NumStrings]int{50, 45, 50, 57, 60, 66})) // D7
	return s
}

// Validate checks every pattern against voice v.
func (s *Song) Validate(v *StringVoice) error {
	if s == nil {
		return nil
	}
	for i, p := range s.Patterns {
		if err := p.Validate(v); err != nil {
			return fmt.Errorf("pattern %d: %w", i, err)
		}
	}
	return nil
}

// DefaultPickingSong plays DefaultSong as bass-first arpeggios.
func DefaultPickingSong() *Song {
	order := []int{1, 4, 3, 5, 4, 6, 5, 4}
	s := NewSong()
	for _, p := range DefaultSong().Patterns {
		s.Add(NewPickingPattern(p.Keys, order, 0.25))
	}
	return s
}

// SongForStyle returns the default song for "strum" or "pick".
func SongForStyle(style string) (*Song, error) {
	switch style {
	case "", "strum":
		return DefaultSong(), nil
	case "pick":
		return DefaultPickingSong(), nil
	}
	return nil, fmt.Errorf("unknown style %q (use strum or pick)", style)
}
