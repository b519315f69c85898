//go:build !headless

package main

import (
	"fmt"
	"log/slog"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// openMIDI listens to the first input whose name contains match and calls
// onNote for every note-on. The returned func stops listening.
func openMIDI(match string, onNote func(key int)) (func(), error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	ins, err := drv.Ins()
	if err != nil {
		drv.Close()
		return nil, err
	}
	var found drivers.In
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
		if found == nil && strings.Contains(strings.ToLower(in.String()), strings.ToLower(match)) {
			found = in
		}
	}
	if found == nil {
		drv.Close()
		return nil, fmt.Errorf("no input matching %q (have: %s)", match, strings.Join(names, ", "))
	}
	if err := found.Open(); err != nil {
		drv.Close()
		return nil, fmt.Errorf("open %q: %w", found.String(), err)
	}

	stop, err := midi.ListenTo(found, func(msg midi.Message, _ int32) {
		var ch, key, vel uint8
		if msg.GetNoteStart(&ch, &key, &vel) {
			slog.Debug("midi: note on", "ch", ch, "key", key, "vel", vel)
			onNote(int(key))
		}
	}, midi.HandleError(func(listenErr error) {
		slog.Warn("midi: listener error", "device", found.String(), "err", listenErr)
	}))
	if err != nil {
		_ = found.Close()
		drv.Close()
		return nil, fmt.Errorf("listen %q: %w", found.String(), err)
	}
	slog.Info("midi: connected", "device", found.String())

	return func() {
		stop()
		_ = found.Close()
		drv.Close()
	}, nil
}
