package domain

import "fmt"

// Pixel is a frame cell with float channels in [0, 255]. Fractional values let
// slow fades keep moving where integer channels would stall.
type Pixel struct {
	R, G, B float64
}

// PixelOf lifts an 8-bit color into a Pixel.
func PixelOf(c Color) Pixel {
	return Pixel{R: float64(c.R), G: float64(c.G), B: float64(c.B)}
}

// Color truncates and clamps the pixel to 8-bit channels.
func (p Pixel) Color() Color {
	return Color{R: clampFloat(p.R), G: clampFloat(p.G), B: clampFloat(p.B)}
}

// Brightness is the channel sum, used to decide whether a cell sits above or
// below its fade target.
func (p Pixel) Brightness() float64 {
	return p.R + p.G + p.B
}

// Frame is the width×height grid every effect reads and writes. It is stored
// row-major and never resized.
type Frame struct {
	width, height int
	cells         []Pixel
}

// NewFrame allocates a black frame. It panics on a non-positive size.
func NewFrame(width, height int) *Frame {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("frame: invalid size %dx%d", width, height))
	}
	return &Frame{width: width, height: height, cells: make([]Pixel, width*height)}
}

func (f *Frame) Width() int { return f.width }
func (f *Frame) Height() int { return f.height }

// index panics on out-of-range coordinates; bounds come from configuration,
// so a miss is a programming error.
func (f *Frame) index(x, y int) int {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		panic(fmt.Sprintf("frame: (%d,%d) outside %dx%d", x, y, f.width, f.height))
	}
	return y*f.width + x
}

func (f *Frame) At(x, y int) Pixel { return f.cells[f.index(x, y)] }
func (f *Frame) Set(x, y int, p Pixel) { f.cells[f.index(x, y)] = p }
func (f *Frame) Get(x, y int) Color { return f.At(x, y).Color() }
func (f *Frame) SetColor(x, y int, c Color) { f.Set(x, y, PixelOf(c)) }

// Fill sets every cell to c.
func (f *Frame) Fill(c Color) {
	p := PixelOf(c)
	for i := range f.cells {
		f.cells[i] = p
	}
}

// FillRow sets every cell of row y to c.
func (f *Frame) FillRow(y int, c Color) {
	start := f.index(0, y)
	p := PixelOf(c)
	for i := start; i < start+f.width; i++ {
		f.cells[i] = p
	}
}

// ShiftRowsUp copies row y+1 into row y for every y below the top row. The
// top row keeps its contents; callers overwrite it.
func (f *Frame) ShiftRowsUp() {
	copy(f.cells, f.cells[f.width:])
}

// Flatten packs the frame in scan order (y outer, x inner) into dst, reusing
// its backing array when large enough. The result has exactly width*height
// entries.
func (f *Frame) Flatten(order ChannelOrder, dst []Packed) []Packed {
	n := len(f.cells)
	if cap(dst) < n {
		dst = make([]Packed, n)
	}
	dst = dst[:n]
	for i, p := range f.cells {
		dst[i] = order.Pack(p.Color())
	}
	return dst
}
