package guitar

import (
	"encoding/binary"
	"math"
	"sync"
	"sync/atomic"
)

const strikeQueueLen = 64

// Player drives a Guitar from an audio callback. It is the only type in the
// package that is safe for concurrent use: the audio goroutine calls Fill or
// Read while control goroutines call Play, Pause, Strike and Snapshot.
type Player struct {
	mu      sync.Mutex
	guitar  *Guitar
	body    *BodyConvolver
	gain    float32
	playing atomic.Bool
	strikes chan int

	snap    Snapshot
	scratch []float32
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithBody routes the mix through a body convolver.
func WithBody(body *BodyConvolver) PlayerOption {
	return func(p *Player) { p.body = body }
}

// WithOutputGain scales the final output.
func WithOutputGain(gain float32) PlayerOption {
	return func(p *Player) { p.gain = gain }
}

// NewPlayer creates a paused player for g.
func NewPlayer(g *Guitar, opts ...PlayerOption) (*Player, error) {
	if g == nil {
		return nil, ErrNoStrings
	}
	p := &Player{
		guitar:  g,
		gain:    g.Params().OutputGain,
		strikes: make(chan int, strikeQueueLen),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.snap = g.Snapshot()
	return p, nil
}

// Play starts rendering.
func (p *Player) Play() { p.playing.Store(true) }

// Pause stops rendering. Fill produces silence while paused.
func (p *Player) Pause() { p.playing.Store(false) }

// Toggle flips between playing and paused and returns the new state.
func (p *Player) Toggle() bool {
	for {
		old := p.playing.Load()
		if p.playing.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Playing reports whether the player is rendering.
func (p *Player) Playing() bool { return p.playing.Load() }

// Rewind restarts the song from the top.
func (p *Player) Rewind() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.guitar.Rewind()
	if p.body != nil {
		p.body.Reset()
	}
	p.snap = p.guitar.Snapshot()
	p.snap.Playing = p.playing.Load()
}

// SetSong installs song and restarts it from the top. The body, output gain
// and queued strikes are kept.
func (p *Player) SetSong(song *Song) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.guitar.SetSong(song); err != nil {
		return err
	}
	if p.body != nil {
		p.body.Reset()
	}
	p.snap = p.guitar.Snapshot()
	p.snap.Playing = p.playing.Load()
	return nil
}

// SetBody replaces the body convolver; nil bypasses the body.
func (p *Player) SetBody(body *BodyConvolver) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.body = body
}

// RequestBuffer returns a zeroed scratch buffer of n samples. The buffer is
// reused by the next call.
func (p *Player) RequestBuffer(n int) []float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buffer(n)
}

func (p *Player) buffer(n int) []float32 {
	if cap(p.scratch) < n {
		p.scratch = make([]float32, n)
	}
	buf := p.scratch[:n]
	clear(buf)
	return buf
}

// Fill overwrites buf with the next len(buf) samples of output.
func (p *Player) Fill(buf []float32) {
	clear(buf)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fill(buf)
}

func (p *Player) fill(buf []float32) {
	playing := p.playing.Load()
	if !playing {
		p.snap.Playing = false
		p.snap.Peak = 0
		return
	}
	p.drainStrikes()
	p.guitar.Generate(buf)
	if p.body != nil {
		p.body.Process(buf)
	}
	var peak float32
	for i, v := range buf {
		v *= p.gain
		buf[i] = v
		if a := float32(math.Abs(float64(v))); a > peak {
			peak = a
		}
	}
	p.snap = p.guitar.Snapshot()
	p.snap.Playing = true
	p.snap.Peak = peak
}

func (p *Player) drainStrikes() {
	for {
		select {
		case key := <-p.strikes:
			p.guitar.Strike(key)
		default:
			return
		}
	}
}

// Strike queues a live pluck of key for the next Fill. It never blocks and
// reports false when the queue is full.
func (p *Player) Strike(key int) bool {
	select {
	case p.strikes <- key:
		return true
	default:
		return false
	}
}

// Snapshot returns the state captured by the last Fill.
func (p *Player) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	snap := p.snap
	snap.Playing = p.playing.Load()
	return snap
}

// Read implements io.Reader for audio sinks, serving float32 little-endian
// mono PCM. Trailing bytes that do not make a whole sample are left unread.
func (p *Player) Read(b []byte) (int, error) {
	n := len(b) / 4
	if n == 0 {
		return 0, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	buf := p.buffer(n)
	p.fill(buf)
	for i, v := range buf {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return n * 4, nil
}
