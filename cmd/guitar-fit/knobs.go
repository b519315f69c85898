package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-guitar/guitar"
	"github.com/cwbudde/algo-guitar/internal/audioio"
	"github.com/cwbudde/algo-guitar/irsynth"
)

type knobDef struct {
	Name  string
	Min   float64
	Max   float64
	IsInt bool
}

type candidate struct {
	Vals []float64
}

// parseOptimizeGroups parses a comma-separated string of group names.
// Valid groups: string, body.
func parseOptimizeGroups(raw string) (map[string]bool, error) {
	valid := map[string]bool{"string": true, "body": true}
	groups := make(map[string]bool)
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !valid[s] {
			return nil, fmt.Errorf("unknown optimize group %q (valid: string, body)", s)
		}
		groups[s] = true
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("no optimize groups specified")
	}
	return groups, nil
}

func initCandidate(base *guitar.Params, sampleRate int, groups map[string]bool) ([]knobDef, candidate) {
	bodyCfg := irsynth.DefaultBodyConfig()
	bodyCfg.SampleRate = sampleRate

	defs := make([]knobDef, 0, 12)
	vals := make([]float64, 0, 12)
	addKnob := func(def knobDef, val float64) {
		defs = append(defs, def)
		vals = append(vals, val)
	}

	if groups["string"] {
		addKnob(knobDef{Name: "t60", Min: 0.3, Max: 20}, base.T60)
		addKnob(knobDef{Name: "brightness", Min: 0, Max: 0.95}, float64(base.Brightness))
		addKnob(knobDef{Name: "loop_filters", Min: 1, Max: 3, IsInt: true}, float64(base.NumFilt))
		addKnob(knobDef{Name: "pluck_filters", Min: 0, Max: 8, IsInt: true}, float64(base.NumFiltPluck))
	}
	if groups["body"] {
		addKnob(knobDef{Name: "body_air_hz", Min: 80, Max: 140}, bodyCfg.AirHz)
		addKnob(knobDef{Name: "body_air_level", Min: 0, Max: 1.5}, bodyCfg.AirLevel)
		addKnob(knobDef{Name: "body_top_hz", Min: 150, Max: 280}, bodyCfg.TopHz)
		addKnob(knobDef{Name: "body_stiffness_ratio", Min: 4, Max: 20}, bodyCfg.StiffnessRatio)
		addKnob(knobDef{Name: "body_direct", Min: 0.1, Max: 1.2}, bodyCfg.DirectLevel)
		addKnob(knobDef{Name: "body_low_decay", Min: 0.03, Max: 0.3}, bodyCfg.LowDecayS)
	}

	for i := range vals {
		vals[i] = audioio.Clamp(vals[i], defs[i].Min, defs[i].Max)
		if defs[i].IsInt {
			vals[i] = math.Round(vals[i])
		}
	}
	return defs, candidate{Vals: vals}
}

// applyCandidate returns a copy of base with c applied, plus the body IR
// config when any body knob is active.
func applyCandidate(base *guitar.Params, sampleRate int, defs []knobDef, c candidate) (*guitar.Params, *irsynth.BodyConfig) {
	params := *base
	bodyCfg := irsynth.DefaultBodyConfig()
	bodyCfg.SampleRate = sampleRate
	hasBody := false

	for i, def := range defs {
		v := c.Vals[i]
		switch def.Name {
		case "t60":
			params.T60 = v
		case "brightness":
			params.Brightness = float32(v)
		case "loop_filters":
			params.NumFilt = int(math.Round(v))
		case "pluck_filters":
			params.NumFiltPluck = int(math.Round(v))
		case "body_air_hz":
			bodyCfg.AirHz = v
			hasBody = true
		case "body_air_level":
			bodyCfg.AirLevel = v
			hasBody = true
		case "body_top_hz":
			bodyCfg.TopHz = v
			hasBody = true
		case "body_stiffness_ratio":
			bodyCfg.StiffnessRatio = v
			hasBody = true
		case "body_direct":
			bodyCfg.DirectLevel = v
			hasBody = true
		case "body_low_decay":
			bodyCfg.LowDecayS = v
			hasBody = true
		}
	}
	if !hasBody {
		return &params, nil
	}
	return &params, &bodyCfg
}

func fromNormalized(pos []float64, defs []knobDef) candidate {
	vals := make([]float64, len(defs))
	for i := range defs {
		x := 0.0
		if i < len(pos) {
			x = audioio.Clamp(pos[i], 0, 1)
		}
		v := defs[i].Min + x*(defs[i].Max-defs[i].Min)
		if defs[i].IsInt {
			v = math.Round(v)
		}
		vals[i] = v
	}
	return candidate{Vals: vals}
}

func toNormalized(c candidate, defs []knobDef) []float64 {
	pos := make([]float64, len(defs))
	for i, d := range defs {
		span := d.Max - d.Min
		if span <= 0 {
			continue
		}
		pos[i] = audioio.Clamp((c.Vals[i]-d.Min)/span, 0, 1)
	}
	return pos
}

func knobMap(defs []knobDef, c candidate) map[string]float64 {
	m := make(map[string]float64, len(defs))
	for i, d := range defs {
		m[d.Name] = c.Vals[i]
	}
	return m
}
