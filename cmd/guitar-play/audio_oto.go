//go:build !headless

package main

import (
	"io"
	"time"

	"github.com/ebitengine/oto/v3"
)

type otoSink struct {
	ctx    *oto.Context
	player *oto.Player
}

// openAudio starts pulling float32 mono PCM from src on the default device.
func openAudio(src io.Reader, sampleRate int, buffer time.Duration) (io.Closer, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   buffer,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	pl := ctx.NewPlayer(src)
	pl.Play()
	return &otoSink{ctx: ctx, player: pl}, nil
}

func (s *otoSink) Close() error {
	s.player.Pause()
	return s.player.Close()
}
