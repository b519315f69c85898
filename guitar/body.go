package guitar

import (
	"bytes"
	"fmt"

	dspconv "github.com/cwbudde/algo-dsp/dsp/conv"

	"github.com/cwbudde/algo-guitar/internal/audioio"
	"github.com/cwbudde/algo-guitar/irsynth"
)

const bodyPartSize = 128

// BodyConvolver colours the string mix with a guitar body impulse response.
// Output is delayed by exactly one partition (bodyPartSize samples) so that
// arbitrary block sizes can be streamed through a fixed-size convolver.
type BodyConvolver struct {
	ola  *dspconv.StreamingOverlapAddT[float32, complex64]
	gain float32

	in     []float32 // pending input for the next partition
	out    []float32 // wet output of the previous partition
	fill   int
	irLen  int
	outBuf []float32
}

// NewBodyConvolver creates a convolver for ir. An empty ir is a unit impulse.
func NewBodyConvolver(ir []float32, gain float32) (*BodyConvolver, error) {
	if len(ir) == 0 {
		ir = []float32{1}
	}
	ola, err := dspconv.NewStreamingOverlapAdd32(ir, bodyPartSize)
	if err != nil {
		return nil, fmt.Errorf("body convolver: %w", err)
	}
	return &BodyConvolver{
		ola:    ola,
		gain:   gain,
		in:     make([]float32, bodyPartSize),
		out:    make([]float32, bodyPartSize),
		outBuf: make([]float32, bodyPartSize),
		irLen:  len(ir),
	}, nil
}

// LoadBodyIR reads a mono impulse response from a WAV file at sampleRate.
func LoadBodyIR(path string, sampleRate int) ([]float32, error) {
	data, err := audioio.ReadWAVMonoAt(path, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("load body ir: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("load body ir: empty wav data: %s", path)
	}
	return audioio.ToFloat32(data), nil
}

// DecodeBodyIR decodes a WAV impulse response held in memory.
func DecodeBodyIR(data []byte, sampleRate int) ([]float32, error) {
	ir, rate, err := audioio.DecodeWAVMono(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode body ir: %w", err)
	}
	if len(ir) == 0 {
		return nil, fmt.Errorf("decode body ir: empty wav data")
	}
	ir, err = audioio.Resample(ir, rate, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("decode body ir: %w", err)
	}
	return audioio.ToFloat32(ir), nil
}

// NewBodyForParams builds the body convolver selected by p: the WAV at
// BodyIRWavPath, or a synthetic body when the path is empty.
func NewBodyForParams(p *Params) (*BodyConvolver, error) {
	r := resolve(p)
	var ir []float32
	if r.BodyIRWavPath != "" {
		loaded, err := LoadBodyIR(r.BodyIRWavPath, r.SampleRate)
		if err != nil {
			return nil, err
		}
		ir = loaded
	} else {
		cfg := irsynth.DefaultBodyConfig()
		cfg.SampleRate = r.SampleRate
		cfg.Seed = r.Seed
		synth, err := irsynth.GenerateBody(cfg)
		if err != nil {
			return nil, fmt.Errorf("synthesize body ir: %w", err)
		}
		ir = synth
	}
	return NewBodyConvolver(ir, r.BodyGain)
}

// Latency returns the fixed delay in samples added by Process.
func (c *BodyConvolver) Latency() int { return bodyPartSize }

// IRLen returns the impulse response length in samples.
func (c *BodyConvolver) IRLen() int { return c.irLen }

// Process replaces buf with the convolved signal in place.
func (c *BodyConvolver) Process(buf []float32) {
	for i, x := range buf {
		y := c.out[c.fill]
		c.in[c.fill] = x
		c.fill++
		if c.fill == bodyPartSize {
			if err := c.ola.ProcessBlockTo(c.outBuf, c.in); err != nil {
				// Pass the dry block through rather than dropping audio.
				copy(c.outBuf, c.in)
			}
			c.out, c.outBuf = c.outBuf, c.out
			c.fill = 0
		}
		buf[i] = c.gain * y
	}
}

// Reset clears the convolution history.
func (c *BodyConvolver) Reset() {
	c.ola.Reset()
	clear(c.in)
	clear(c.out)
	c.fill = 0
}
