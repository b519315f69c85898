package main

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cwbudde/algo-guitar/analysis"
	"github.com/cwbudde/algo-guitar/guitar"
)

func TestNewMayflyConfig(t *testing.T) {
	tests := []struct {
		variant string
		wantErr bool
	}{
		{variant: "ma"},
		{variant: "desma"},
		{variant: "olce"},
		{variant: "eobbma"},
		{variant: "gsasma"},
		{variant: "mpma"},
		{variant: "aoblmoa"},
		{variant: "bogus", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			cfg, err := newMayflyConfig(tt.variant, 10, 5, 20)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("newMayflyConfig(%q) expected error", tt.variant)
				}
				return
			}
			if err != nil {
				t.Fatalf("newMayflyConfig(%q) unexpected error: %v", tt.variant, err)
			}
			if cfg.ProblemSize != 5 {
				t.Fatalf("ProblemSize = %d, want 5", cfg.ProblemSize)
			}
			if cfg.NPop != 10 {
				t.Fatalf("NPop = %d, want 10", cfg.NPop)
			}
			if cfg.MaxIterations != 20 {
				t.Fatalf("MaxIterations = %d, want 20", cfg.MaxIterations)
			}
		})
	}
}

func TestReserveEvalCapsAtMax(t *testing.T) {
	const (
		maxEvals = 47
		workers  = 8
	)

	var evals int64
	var granted int64
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if _, ok := reserveEval(&evals, maxEvals); !ok {
					return
				}
				atomic.AddInt64(&granted, 1)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt64(&granted); got != maxEvals {
		t.Fatalf("granted evaluations = %d, want %d", got, maxEvals)
	}
	if got := atomic.LoadInt64(&evals); got != maxEvals {
		t.Fatalf("eval counter = %d, want %d", got, maxEvals)
	}
}

func TestCloneCandidateCopiesSlice(t *testing.T) {
	orig := candidate{Vals: []float64{1.0, 2.0, 3.0}}
	cloned := cloneCandidate(orig)
	cloned.Vals[0] = 99.0

	if orig.Vals[0] != 1.0 {
		t.Fatalf("clone mutated original: got %.1f want 1.0", orig.Vals[0])
	}
}

func TestUpdateTopCandidatesKeepsBestK(t *testing.T) {
	defs := []knobDef{{Name: "t60", Min: 0.3, Max: 20}}
	var top []topCandidate
	scores := []float64{0.5, 0.2, 0.9, 0.2, 0.1}
	for i, s := range scores {
		top = updateTopCandidates(top, 3, i+1, analysis.Metrics{Score: s}, defs, candidate{Vals: []float64{float64(i)}})
	}
	if len(top) != 3 {
		t.Fatalf("len(top) = %d, want 3", len(top))
	}
	wantEvals := []int{5, 2, 4}
	for i, w := range wantEvals {
		if top[i].Eval != w {
			t.Fatalf("top[%d].Eval = %d, want %d (top=%+v)", i, top[i].Eval, w, top)
		}
	}
}

func TestEvaluateCandidateScoresSelfRenderLow(t *testing.T) {
	base := guitar.NewDefaultParams()
	base.T60 = 2.0
	defs, cand := initCandidate(base, guitar.SampleRate, map[string]bool{"string": true})

	ref, _, err := renderPluck(base, nil, 45, guitar.SampleRate, 256)
	if err != nil {
		t.Fatalf("renderPluck: %v", err)
	}
	cfg := &optimizationConfig{
		reference:       ref,
		baseParams:      base,
		defs:            defs,
		key:             45,
		sampleRate:      guitar.SampleRate,
		renderBlockSize: 256,
	}

	same, err := evaluateCandidate(cfg, cand)
	if err != nil {
		t.Fatalf("evaluateCandidate: %v", err)
	}
	if same.metrics.Score > 0.05 {
		t.Fatalf("self score = %f, want near zero", same.metrics.Score)
	}

	other := cloneCandidate(cand)
	for i, d := range defs {
		if d.Name == "t60" {
			other.Vals[i] = 0.3
		}
	}
	diff, err := evaluateCandidate(cfg, other)
	if err != nil {
		t.Fatalf("evaluateCandidate: %v", err)
	}
	if diff.metrics.Score <= same.metrics.Score {
		t.Fatalf("short decay score %f not worse than self score %f", diff.metrics.Score, same.metrics.Score)
	}
}
