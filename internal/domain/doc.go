// Package domain models the LED matrix display and the forecast data that
// drives it.
//
// # Forecast Feed
//
// An upstream job writes the forecast as a fixed-size binary blob: one record
// per row-equivalent (14 for the classic 18×14 panel, 12 for the wide 24×12
// panel). Each record is three big-endian signed 32-bit integers with no
// separators:
//
//	offset 0  temperature   (roughly 0–10000, scaled by the producer)
//	offset 4  wind          (roughly 0–200)
//	offset 8  precipitation (roughly 0–200)
//
// The total payload length is records × 12 bytes. Anything else is rejected
// with [ErrForecastSize]; a short read is never padded.
//
// # Colors
//
// [Color] is an 8-bit triple used for palettes and mapped colors. The LED
// transport consumes [Packed] integers whose bit layout is declared by a
// [ChannelOrder]. The classic panel's wiring expected GBR:
//
//	bits 16–23 green | bits 8–15 blue | bits 0–7 red
//
// Scaling a color truncates toward zero and clamps to [0, 255]; channels never
// wrap.
//
// # Frame
//
// [Frame] holds float [Pixel] cells so exponential fades keep moving at low
// intensities. It is flattened row-major (y outer, x inner), matching the
// strip's scan order.
//
// # Palette Ramp
//
// [RampIndex] maps a magnitude onto a palette bucket by linear rescaling
// against a configured [min, max] range. Both ends clamp, so out-of-range
// readings pick the first or last entry instead of reading past the palette.
package domain
