// Package discard provides an LED driver that drops every frame, for running
// the service headless.
package discard

import (
	"sync/atomic"

	"github.com/couchcryptid/storm-matrix/internal/domain"
)

// Driver implements engine.Driver and only remembers the last frame.
type Driver struct {
	frames atomic.Uint64
	last   atomic.Pointer[[]domain.Packed]
}

func New() *Driver { return &Driver{} }

func (d *Driver) Init() error { return nil }

func (d *Driver) Render(leds []domain.Packed) error {
	frame := append([]domain.Packed(nil), leds...)
	d.last.Store(&frame)
	d.frames.Add(1)
	return nil
}

func (d *Driver) Shutdown() error { return nil }

// Frames is the number of frames rendered.
func (d *Driver) Frames() uint64 { return d.frames.Load() }

// Last returns a copy of the most recent frame, or nil before the first.
func (d *Driver) Last() []domain.Packed {
	p := d.last.Load()
	if p == nil {
		return nil
	}
	return append([]domain.Packed(nil), (*p)...)
}
