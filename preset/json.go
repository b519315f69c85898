package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-guitar/guitar"
)

// File is the JSON schema for guitar presets.
type File struct {
	T60            *float64 `json:"t60,omitempty"`
	Brightness     *float32 `json:"brightness,omitempty"`
	LoopFilters    *int     `json:"loop_filters,omitempty"`
	PluckFilters   *int     `json:"pluck_filters,omitempty"`
	Interpolation  string   `json:"interpolation,omitempty"` // "lagrange" (default) or "linear"
	PluckAmplitude *float32 `json:"pluck_amplitude,omitempty"`
	BeatDelay      *float64 `json:"beat_delay,omitempty"`
	StrumDelay     *float64 `json:"strum_delay,omitempty"`
	Seed           *int64   `json:"seed,omitempty"`
	OutputGain     *float32 `json:"output_gain,omitempty"`
	BodyEnabled    *bool    `json:"body_enabled,omitempty"`
	BodyIRWavPath  string   `json:"body_ir_wav_path,omitempty"`
	BodyGain       *float32 `json:"body_gain,omitempty"`
}

// LoadJSON loads a preset JSON file and applies it on top of default params.
func LoadJSON(path string) (*guitar.Params, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	p := guitar.NewDefaultParams()
	if err := ApplyFile(p, &f); err != nil {
		return nil, err
	}

	if p.BodyIRWavPath != "" && !filepath.IsAbs(p.BodyIRWavPath) {
		base := filepath.Dir(path)
		p.BodyIRWavPath = filepath.Clean(filepath.Join(base, p.BodyIRWavPath))
	}
	return p, nil
}

// ApplyFile applies a parsed preset file onto an existing params object.
func ApplyFile(dst *guitar.Params, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination params")
	}
	if f == nil {
		return nil
	}

	if f.T60 != nil {
		if *f.T60 <= 0 {
			return fmt.Errorf("t60 must be > 0")
		}
		dst.T60 = *f.T60
	}
	if f.Brightness != nil {
		if *f.Brightness < 0 || *f.Brightness > 0.99 {
			return fmt.Errorf("brightness must be in [0,0.99]")
		}
		dst.Brightness = *f.Brightness
	}
	if f.LoopFilters != nil {
		if *f.LoopFilters < 1 || *f.LoopFilters > 8 {
			return fmt.Errorf("loop_filters must be in [1,8]")
		}
		dst.NumFilt = *f.LoopFilters
	}
	if f.PluckFilters != nil {
		if *f.PluckFilters < 0 || *f.PluckFilters > 16 {
			return fmt.Errorf("pluck_filters must be in [0,16]")
		}
		dst.NumFiltPluck = *f.PluckFilters
	}
	switch strings.ToLower(strings.TrimSpace(f.Interpolation)) {
	case "":
	case "lagrange":
		dst.LinearInterp = false
	case "linear":
		dst.LinearInterp = true
	default:
		return fmt.Errorf("interpolation must be lagrange or linear, got %q", f.Interpolation)
	}
	if f.PluckAmplitude != nil {
		if *f.PluckAmplitude <= 0 || *f.PluckAmplitude > 1 {
			return fmt.Errorf("pluck_amplitude must be in (0,1]")
		}
		dst.PluckAmplitude = *f.PluckAmplitude
	}
	if f.BeatDelay != nil {
		if *f.BeatDelay <= 0 {
			return fmt.Errorf("beat_delay must be > 0")
		}
		dst.BeatDelay = *f.BeatDelay
	}
	if f.StrumDelay != nil {
		if *f.StrumDelay < 0 {
			return fmt.Errorf("strum_delay must be >= 0")
		}
		dst.StrumDelay = *f.StrumDelay
	}
	if f.Seed != nil {
		dst.Seed = *f.Seed
	}
	if f.OutputGain != nil {
		if *f.OutputGain <= 0 {
			return fmt.Errorf("output_gain must be > 0")
		}
		dst.OutputGain = *f.OutputGain
	}
	if f.BodyEnabled != nil {
		dst.BodyEnabled = *f.BodyEnabled
	}
	if f.BodyIRWavPath != "" {
		dst.BodyIRWavPath = strings.TrimSpace(f.BodyIRWavPath)
	}
	if f.BodyGain != nil {
		if *f.BodyGain <= 0 {
			return fmt.Errorf("body_gain must be > 0")
		}
		dst.BodyGain = *f.BodyGain
	}
	return nil
}

// FromParams captures every preset field of p.
func FromParams(p *guitar.Params) *File {
	interp := "lagrange"
	if p.LinearInterp {
		interp = "linear"
	}
	return &File{
		T60:            ptr(p.T60),
		Brightness:     ptr(p.Brightness),
		LoopFilters:    ptr(p.NumFilt),
		PluckFilters:   ptr(p.NumFiltPluck),
		Interpolation:  interp,
		PluckAmplitude: ptr(p.PluckAmplitude),
		BeatDelay:      ptr(p.BeatDelay),
		StrumDelay:     ptr(p.StrumDelay),
		Seed:           ptr(p.Seed),
		OutputGain:     ptr(p.OutputGain),
		BodyEnabled:    ptr(p.BodyEnabled),
		BodyIRWavPath:  p.BodyIRWavPath,
		BodyGain:       ptr(p.BodyGain),
	}
}

// SaveJSON writes f as indented JSON, creating parent directories as needed.
func SaveJSON(path string, f *File) error {
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

func ptr[T any](v T) *T { return &v }
