package domain

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an 8-bit RGB triple. Palette entries and mapped forecast colors are
// always Colors; only the frame flattener produces Packed values.
type Color struct {
	R, G, B uint8
}

// Black is the zero color used for blank frames.
var Black = Color{}

// RGB builds a Color from integer channels, clamping each into [0, 255].
func RGB(r, g, b int) Color {
	return Color{R: clampChannel(r), G: clampChannel(g), B: clampChannel(b)}
}

// Scale multiplies every channel by factor, truncating toward zero and
// clamping the result. Factors above 1 brighten.
func (c Color) Scale(factor float64) Color {
	return Color{
		R: clampFloat(float64(c.R) * factor),
		G: clampFloat(float64(c.G) * factor),
		B: clampFloat(float64(c.B) * factor),
	}
}

// Hex renders the color as "#rrggbb".
func (c Color) Hex() string {
	return c.colorful().Hex()
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(cf colorful.Color) Color {
	r, g, b := cf.Clamped().RGB255()
	return Color{R: r, G: g, B: b}
}

// Packed is a single transport-order integer holding three 8-bit channels.
type Packed uint32

// ChannelOrder declares the bit layout of a Packed value. The first channel
// named occupies bits 16-23, the last bits 0-7.
type ChannelOrder struct {
	name                   string
	rShift, gShift, bShift uint
}

// Supported channel orders. GBR matches the layout the classic panel's
// wiring expected (g<<16 | b<<8 | r).
var (
	OrderRGB = ChannelOrder{name: "RGB", rShift: 16, gShift: 8, bShift: 0}
	OrderRBG = ChannelOrder{name: "RBG", rShift: 16, bShift: 8, gShift: 0}
	OrderGRB = ChannelOrder{name: "GRB", gShift: 16, rShift: 8, bShift: 0}
	OrderGBR = ChannelOrder{name: "GBR", gShift: 16, bShift: 8, rShift: 0}
	OrderBRG = ChannelOrder{name: "BRG", bShift: 16, rShift: 8, gShift: 0}
	OrderBGR = ChannelOrder{name: "BGR", bShift: 16, gShift: 8, rShift: 0}
)

var channelOrders = []ChannelOrder{OrderRGB, OrderRBG, OrderGRB, OrderGBR, OrderBRG, OrderBGR}

// ParseChannelOrder resolves a case-insensitive order name such as "grb".
func ParseChannelOrder(s string) (ChannelOrder, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for _, o := range channelOrders {
		if o.name == name {
			return o, nil
		}
	}
	return ChannelOrder{}, fmt.Errorf("unknown channel order %q", s)
}

func (o ChannelOrder) String() string { return o.name }

// Pack combines the channels of c into one transport-order integer.
func (o ChannelOrder) Pack(c Color) Packed {
	return Packed(uint32(c.R)<<o.rShift | uint32(c.G)<<o.gShift | uint32(c.B)<<o.bShift)
}

// Unpack is the inverse of Pack for the same order.
func (o ChannelOrder) Unpack(p Packed) Color {
	return Color{
		R: uint8(uint32(p) >> o.rShift),
		G: uint8(uint32(p) >> o.gShift),
		B: uint8(uint32(p) >> o.bShift),
	}
}

func clampChannel(v int) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// clampFloat truncates toward zero before clamping, so 0.9 becomes 0.
func clampFloat(v float64) uint8 {
	if v >= 255 {
		return 255
	}
	if v <= 0 {
		return 0
	}
	return uint8(v)
}
