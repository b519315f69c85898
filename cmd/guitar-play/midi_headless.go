//go:build headless

package main

import "errors"

func openMIDI(string, func(key int)) (func(), error) {
	return nil, errors.New("midi input is not available in headless builds")
}
