package guitar

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func newTestPlayer(t *testing.T, song *Song, opts ...PlayerOption) *Player {
	t.Helper()
	p, err := NewPlayer(newTestGuitar(t, song), opts...)
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}
	return p
}

func TestNewPlayerRequiresGuitar(t *testing.T) {
	if _, err := NewPlayer(nil); !errors.Is(err, ErrNoStrings) {
		t.Fatalf("NewPlayer(nil) err=%v want ErrNoStrings", err)
	}
}

func TestPausedPlayerFillsSilence(t *testing.T) {
	p := newTestPlayer(t, nil)
	if p.Playing() {
		t.Fatalf("new player should be paused")
	}
	buf := make([]float32, 4096)
	for i := range buf {
		buf[i] = 1
	}
	p.Fill(buf)
	if windowRMS(buf) != 0 {
		t.Fatalf("paused Fill is not silent")
	}
	if snap := p.Snapshot(); snap.Time != 0 || snap.Playing {
		t.Fatalf("paused Fill advanced the song: %+v", snap)
	}
}

func TestPlayingPlayerRendersSong(t *testing.T) {
	p := newTestPlayer(t, nil)
	p.Play()
	buf := p.RequestBuffer(SampleRate / 2)
	p.Fill(buf)
	if windowRMS(buf) == 0 {
		t.Fatalf("playing Fill is silent")
	}
	snap := p.Snapshot()
	if !snap.Playing || snap.Time != SampleRate/2 || snap.Peak <= 0 {
		t.Fatalf("snapshot=%+v", snap)
	}
}

func TestPlayerToggle(t *testing.T) {
	p := newTestPlayer(t, nil)
	if !p.Toggle() || !p.Playing() {
		t.Fatalf("first toggle should start playback")
	}
	if p.Toggle() || p.Playing() {
		t.Fatalf("second toggle should pause")
	}
}

func TestPlayerOutputGain(t *testing.T) {
	ref := newTestPlayer(t, nil)
	loud := newTestPlayer(t, nil, WithOutputGain(2))
	ref.Play()
	loud.Play()
	a := make([]float32, 20000)
	b := make([]float32, 20000)
	ref.Fill(a)
	loud.Fill(b)
	for i := range a {
		if math.Abs(float64(b[i]-2*a[i])) > 1e-6 {
			t.Fatalf("sample %d: got %g want %g", i, b[i], 2*a[i])
		}
	}
}

func TestPlayerWithBodyAddsLatency(t *testing.T) {
	body, err := NewBodyConvolver(nil, 1)
	if err != nil {
		t.Fatalf("NewBodyConvolver: %v", err)
	}
	dry := newTestPlayer(t, nil)
	wet := newTestPlayer(t, nil, WithBody(body))
	dry.Play()
	wet.Play()
	a := make([]float32, 20000)
	b := make([]float32, 20000)
	dry.Fill(a)
	wet.Fill(b)
	if d := maxAbsDiff(b[body.Latency():], a); d > 1e-4 {
		t.Fatalf("unit body differs from delayed dry signal by %g", d)
	}
}

func TestPlayerStrike(t *testing.T) {
	p := newTestPlayer(t, NewSong())
	p.Play()
	if !p.Strike(64) {
		t.Fatalf("Strike rejected")
	}
	buf := make([]float32, 2048)
	p.Fill(buf)
	if windowRMS(buf) == 0 {
		t.Fatalf("struck note is silent")
	}
	if p.Snapshot().Strings[5].Key != 64 {
		t.Fatalf("high E key=%d want 64", p.Snapshot().Strings[5].Key)
	}
}

func TestPlayerStrikeQueueNeverBlocks(t *testing.T) {
	p := newTestPlayer(t, NewSong())
	for i := 0; i < strikeQueueLen; i++ {
		if !p.Strike(60) {
			t.Fatalf("strike %d rejected before queue was full", i)
		}
	}
	if p.Strike(60) {
		t.Fatalf("strike accepted on a full queue")
	}
}

func TestPlayerReadServesFloat32LE(t *testing.T) {
	p := newTestPlayer(t, nil)
	p.Play()
	ref := newTestGuitar(t, nil)
	want := make([]float32, 1024)
	ref.Generate(want)

	b := make([]byte, 1024*4+3)
	n, err := p.Read(b)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 1024*4 {
		t.Fatalf("Read n=%d want %d", n, 1024*4)
	}
	for i := range want {
		got := math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
		if got != want[i] {
			t.Fatalf("sample %d: got %g want %g", i, got, want[i])
		}
	}
}

func TestPlayerRewind(t *testing.T) {
	p := newTestPlayer(t, nil)
	p.Play()
	buf := make([]float32, 10000)
	p.Fill(buf)
	p.Rewind()
	if snap := p.Snapshot(); snap.Time != 0 {
		t.Fatalf("time after rewind=%d", snap.Time)
	}
}

func TestPlayerSetBody(t *testing.T) {
	body, err := NewBodyConvolver(nil, 1)
	if err != nil {
		t.Fatalf("NewBodyConvolver: %v", err)
	}
	dry := newTestPlayer(t, nil)
	wet := newTestPlayer(t, nil)
	wet.SetBody(body)
	dry.Play()
	wet.Play()
	a := make([]float32, 4096)
	b := make([]float32, 4096)
	dry.Fill(a)
	wet.Fill(b)
	if d := maxAbsDiff(b[body.Latency():], a); d > 1e-4 {
		t.Fatalf("body set at runtime differs from delayed dry signal by %g", d)
	}

	wet.SetBody(nil)
	dry.Fill(a)
	wet.Fill(b)
	if d := maxAbsDiff(a, b); d != 0 {
		t.Fatalf("bypassed body still alters output by %g", d)
	}
}

func TestPlayerSetSongKeepsBodyAndStrikes(t *testing.T) {
	body, err := NewBodyConvolver(nil, 1)
	if err != nil {
		t.Fatalf("NewBodyConvolver: %v", err)
	}
	p := newTestPlayer(t, nil, WithBody(body))
	p.Play()
	if !p.Strike(45) {
		t.Fatalf("strike queue rejected a key")
	}

	if err := p.SetSong(NewSong()); err != nil {
		t.Fatalf("SetSong: %v", err)
	}
	if snap := p.Snapshot(); snap.Time != 0 || snap.End != 0 || !snap.Playing {
		t.Fatalf("snapshot after SetSong=%+v", snap)
	}

	buf := make([]float32, 4096)
	p.Fill(buf)
	if r := windowRMS(buf[:body.Latency()]); r != 0 {
		t.Fatalf("body latency lost after SetSong: rms=%g", r)
	}
	if windowRMS(buf[body.Latency():]) == 0 {
		t.Fatalf("queued strike was dropped by SetSong")
	}

	bad := &Song{Patterns: []*Pattern{nil}}
	if err := p.SetSong(bad); err == nil {
		t.Fatalf("SetSong accepted a nil pattern")
	}
}
