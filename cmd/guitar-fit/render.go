package main

import (
	"fmt"

	"github.com/cwbudde/algo-guitar/guitar"
	"github.com/cwbudde/algo-guitar/irsynth"
)

// renderPluck plucks key once on a fresh string and renders frames samples,
// optionally through a synthetic body.
func renderPluck(params *guitar.Params, bodyCfg *irsynth.BodyConfig, key int, frames int, blockSize int) ([]float64, []float32, error) {
	v, err := guitar.NewStringVoice(params, params.Seed)
	if err != nil {
		return nil, nil, err
	}
	if err := v.AddPluck(0, key); err != nil {
		return nil, nil, err
	}

	var body *guitar.BodyConvolver
	var ir []float32
	if bodyCfg != nil {
		ir, err = irsynth.GenerateBody(*bodyCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("body ir: %w", err)
		}
		body, err = guitar.NewBodyConvolver(ir, 1)
		if err != nil {
			return nil, nil, err
		}
	}

	if blockSize < 16 {
		blockSize = 16
	}
	out := make([]float32, frames)
	for pos := 0; pos < frames; pos += blockSize {
		end := min(pos+blockSize, frames)
		block := out[pos:end]
		v.Generate(block)
		if body != nil {
			body.Process(block)
		}
	}

	mono := make([]float64, frames)
	for i, s := range out {
		mono[i] = float64(s)
	}
	return mono, ir, nil
}
