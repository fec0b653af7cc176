//go:build ws281x

package ws281x

import (
	"fmt"
	"log/slog"

	"github.com/couchcryptid/storm-matrix/internal/domain"
	ws2811 "github.com/rpi-ws281x/rpi-ws281x-go"
)

// Driver implements engine.Driver on channel 0 of the ws281x controller.
// Pixels are sent exactly as packed; channel order is the engine's concern,
// so the strip type is fixed to RGB.
type Driver struct {
	opts   Options
	dev    *ws2811.WS2811
	logger *slog.Logger
}

func New(opts Options, logger *slog.Logger) *Driver {
	return &Driver{opts: opts, logger: logger}
}

func (d *Driver) Init() error {
	opt := ws2811.DefaultOptions
	opt.Frequency = d.opts.Frequency
	opt.DmaNum = d.opts.DMA
	opt.Channels[0].GpioPin = d.opts.GPIOPin
	opt.Channels[0].LedCount = d.opts.LEDCount
	opt.Channels[0].Brightness = d.opts.Brightness
	opt.Channels[0].StripeType = ws2811.WS2811StripRGB

	dev, err := ws2811.MakeWS2811(&opt)
	if err != nil {
		return fmt.Errorf("create ws281x device: %w", err)
	}
	if err := dev.Init(); err != nil {
		return fmt.Errorf("init ws281x: %w", err)
	}
	d.dev = dev
	d.logger.Info("ws281x initialized",
		"leds", d.opts.LEDCount,
		"gpio", d.opts.GPIOPin,
		"dma", d.opts.DMA,
		"frequency", d.opts.Frequency,
		"brightness", d.opts.Brightness,
	)
	return nil
}

func (d *Driver) Render(leds []domain.Packed) error {
	buf := d.dev.Leds(0)
	for i := range buf {
		if i < len(leds) {
			buf[i] = uint32(leds[i])
		} else {
			buf[i] = 0
		}
	}
	if err := d.dev.Render(); err != nil {
		return fmt.Errorf("ws281x render: %w", err)
	}
	if err := d.dev.Wait(); err != nil {
		return fmt.Errorf("ws281x wait: %w", err)
	}
	return nil
}

func (d *Driver) Shutdown() error {
	if d.dev == nil {
		return nil
	}
	d.dev.Fini()
	d.dev = nil
	return nil
}
