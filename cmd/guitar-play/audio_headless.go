//go:build headless

package main

import (
	"io"
	"time"
)

// nullSink pulls audio at real-time pace and discards it, so the display and
// live input behave as they would with a device.
type nullSink struct {
	done chan struct{}
	exit chan struct{}
}

func openAudio(src io.Reader, sampleRate int, buffer time.Duration) (io.Closer, error) {
	if buffer <= 0 {
		buffer = 40 * time.Millisecond
	}
	frames := max(1, int(buffer.Seconds()*float64(sampleRate)))
	s := &nullSink{done: make(chan struct{}), exit: make(chan struct{})}
	go func() {
		defer close(s.exit)
		buf := make([]byte, frames*4)
		tick := time.NewTicker(buffer)
		defer tick.Stop()
		for {
			select {
			case <-s.done:
				return
			case <-tick.C:
				if _, err := src.Read(buf); err != nil {
					return
				}
			}
		}
	}()
	return s, nil
}

func (s *nullSink) Close() error {
	close(s.done)
	<-s.exit
	return nil
}
