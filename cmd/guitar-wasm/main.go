//go:build js && wasm

package main

import (
	"syscall/js"
	"unsafe"

	"github.com/cwbudde/algo-guitar/guitar"
)

const maxBlock = 128

var (
	globalPlayer *guitar.Player
	outputBuffer []float32
)

func main() {
	c := make(chan struct{})

	js.Global().Set("wasmInit", js.FuncOf(wasmInit))
	js.Global().Set("wasmSetStyle", js.FuncOf(wasmSetStyle))
	js.Global().Set("wasmToggle", js.FuncOf(wasmToggle))
	js.Global().Set("wasmRewind", js.FuncOf(wasmRewind))
	js.Global().Set("wasmStrike", js.FuncOf(wasmStrike))
	js.Global().Set("wasmLoadIR", js.FuncOf(wasmLoadIR))
	js.Global().Set("wasmProcessBlock", js.FuncOf(wasmProcessBlock))
	js.Global().Set("wasmGetMemoryBuffer", js.FuncOf(wasmGetMemoryBuffer))

	println("WASM guitar module loaded")
	<-c
}

// wasmInit builds a guitar playing the default song. The host must run its
// audio context at guitar.SampleRate.
func wasmInit(this js.Value, args []js.Value) interface{} {
	g, err := guitar.NewGuitar(guitar.NewDefaultParams())
	if err != nil {
		println("guitar init failed:", err.Error())
		return false
	}
	p, err := guitar.NewPlayer(g)
	if err != nil {
		println("player init failed:", err.Error())
		return false
	}
	globalPlayer = p
	outputBuffer = make([]float32, maxBlock)
	println("Guitar initialized at", guitar.SampleRate, "Hz")
	return true
}

func wasmSetStyle(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalPlayer == nil {
		return false
	}
	song, err := guitar.SongForStyle(args[0].String())
	if err != nil {
		println(err.Error())
		return false
	}
	if err := globalPlayer.SetSong(song); err != nil {
		println("set style failed:", err.Error())
		return false
	}
	return true
}

func wasmToggle(this js.Value, args []js.Value) interface{} {
	if globalPlayer == nil {
		return false
	}
	return globalPlayer.Toggle()
}

func wasmRewind(this js.Value, args []js.Value) interface{} {
	if globalPlayer != nil {
		globalPlayer.Rewind()
	}
	return nil
}

func wasmStrike(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalPlayer == nil {
		return false
	}
	return globalPlayer.Strike(args[0].Int())
}

// wasmLoadIR installs a body IR from WAV bytes; an empty buffer removes it.
func wasmLoadIR(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalPlayer == nil {
		return false
	}
	arrayBuffer := args[0]
	length := arrayBuffer.Get("byteLength").Int()
	if length == 0 {
		globalPlayer.SetBody(nil)
		return true
	}

	data := make([]byte, length)
	js.CopyBytesToGo(data, js.Global().Get("Uint8Array").New(arrayBuffer))
	ir, err := guitar.DecodeBodyIR(data, guitar.SampleRate)
	if err != nil {
		println("Failed to decode IR:", err.Error())
		return false
	}
	body, err := guitar.NewBodyConvolver(ir, 1)
	if err != nil {
		println("Failed to build body:", err.Error())
		return false
	}
	globalPlayer.SetBody(body)
	println("IR loaded successfully:", len(ir), "samples")
	return true
}

func wasmProcessBlock(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalPlayer == nil {
		return 0
	}
	numFrames := args[0].Int()
	if numFrames > maxBlock {
		numFrames = maxBlock
	}
	if numFrames < 1 {
		return 0
	}

	globalPlayer.Fill(outputBuffer[:numFrames])

	ptr := &outputBuffer[0]
	return js.ValueOf(uintptr(unsafe.Pointer(ptr)))
}

func wasmGetMemoryBuffer(this js.Value, args []js.Value) interface{} {
	return js.Global().Get("Go").Get("_inst").Get("exports").Get("mem").Get("buffer")
}
