package guitar

import (
	"math"
	"math/rand"
	"os"
	"testing"
)

func TestBodyConvolverUnitImpulseDelaysByOnePartition(t *testing.T) {
	c, err := NewBodyConvolver(nil, 1)
	if err != nil {
		t.Fatalf("NewBodyConvolver: %v", err)
	}
	in := make([]float32, 1000)
	for i := range in {
		in[i] = float32(math.Sin(float64(i) * 0.05))
	}
	out := append([]float32(nil), in...)
	for pos := 0; pos < len(out); pos += 37 {
		end := pos + 37
		if end > len(out) {
			end = len(out)
		}
		c.Process(out[pos:end])
	}
	lat := c.Latency()
	for i := 0; i < lat; i++ {
		if out[i] != 0 {
			t.Fatalf("sample %d inside latency is %g", i, out[i])
		}
	}
	if d := maxAbsDiff(out[lat:], in); d > 1e-5 {
		t.Fatalf("delayed output differs from input by %g", d)
	}
}

func TestBodyConvolverMatchesDirectConvolution(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	ir := make([]float32, 300)
	for i := range ir {
		ir[i] = float32(rng.Float64()*2-1) * float32(math.Exp(-float64(i)/60))
	}
	in := make([]float32, 2000)
	for i := range in {
		in[i] = float32(rng.Float64()*2 - 1)
	}

	c, err := NewBodyConvolver(ir, 0.5)
	if err != nil {
		t.Fatalf("NewBodyConvolver: %v", err)
	}
	out := append([]float32(nil), in...)
	for pos := 0; pos < len(out); pos += 50 {
		c.Process(out[pos : pos+50])
	}

	want := directConvolve(in, ir)
	lat := c.Latency()
	for i := 0; i+lat < len(out); i++ {
		if d := math.Abs(float64(out[i+lat] - 0.5*want[i])); d > 1e-3 {
			t.Fatalf("sample %d: got %g want %g", i, out[i+lat], 0.5*want[i])
		}
	}
}

func TestBodyConvolverReset(t *testing.T) {
	c, err := NewBodyConvolver([]float32{1, 0.5}, 1)
	if err != nil {
		t.Fatalf("NewBodyConvolver: %v", err)
	}
	buf := make([]float32, 300)
	for i := range buf {
		buf[i] = 1
	}
	c.Process(buf)
	c.Reset()
	silent := make([]float32, 300)
	c.Process(silent)
	if windowRMS(silent) != 0 {
		t.Fatalf("history survived Reset")
	}
}

func TestLoadBodyIR(t *testing.T) {
	ir := []float32{0.5, -0.25, 0.125, 0}
	path := writeTempIRWav(t, ir, SampleRate)
	got, err := LoadBodyIR(path, SampleRate)
	if err != nil {
		t.Fatalf("LoadBodyIR: %v", err)
	}
	if len(got) != len(ir) {
		t.Fatalf("len=%d want %d", len(got), len(ir))
	}
	if d := maxAbsDiff(got, ir); d > 1e-3 {
		t.Fatalf("ir differs by %g", d)
	}
	if _, err := LoadBodyIR(path+".missing", SampleRate); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestNewBodyForParams(t *testing.T) {
	params := NewDefaultParams()
	synth, err := NewBodyForParams(params)
	if err != nil {
		t.Fatalf("synthetic body: %v", err)
	}
	if synth.IRLen() != int(math.Round(0.08*SampleRate)) {
		t.Fatalf("synthetic ir len=%d", synth.IRLen())
	}

	params.BodyIRWavPath = writeTempIRWav(t, []float32{0.5, 0.25}, SampleRate)
	fromWav, err := NewBodyForParams(params)
	if err != nil {
		t.Fatalf("wav body: %v", err)
	}
	if fromWav.IRLen() != 2 {
		t.Fatalf("wav ir len=%d want 2", fromWav.IRLen())
	}

	params.BodyIRWavPath += ".missing"
	if _, err := NewBodyForParams(params); err == nil {
		t.Fatalf("expected error for missing ir")
	}
}

func TestDecodeBodyIR(t *testing.T) {
	ir := []float32{0.5, -0.25, 0.125, 0}
	data, err := os.ReadFile(writeTempIRWav(t, ir, SampleRate))
	if err != nil {
		t.Fatalf("read wav: %v", err)
	}
	got, err := DecodeBodyIR(data, SampleRate)
	if err != nil {
		t.Fatalf("DecodeBodyIR: %v", err)
	}
	if d := maxAbsDiff(got, ir); len(got) != len(ir) || d > 1e-3 {
		t.Fatalf("decoded ir %v, want %v", got, ir)
	}
	if _, err := DecodeBodyIR([]byte("not a wav"), SampleRate); err == nil {
		t.Fatalf("expected error for garbage data")
	}
}
