// Package ws281x drives a WS2811/WS2812 matrix wired in row-major order
// through the rpi_ws281x library. The hardware driver is only built
// with the ws281x build tag; without it Init reports ErrUnsupported.
package ws281x

import "errors"

// ErrUnsupported is returned by Init in binaries built without ws281x support.
var ErrUnsupported = errors.New("ws281x support not compiled in (build with -tags ws281x)")

// Options is the strip wiring.
type Options struct {
	LEDCount   int
	GPIOPin    int
	DMA        int
	Frequency  int
	Brightness int
}
