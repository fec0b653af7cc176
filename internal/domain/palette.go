package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette is an ordered color ramp indexed by rescaled forecast magnitudes.
type Palette []Color

// DefaultPalette is the 23-step purple→green→orange ramp (paletton.com) the
// classic display was tuned with.
var DefaultPalette = MustParsePalette([]string{
	"#882D61", "#6F256F", "#582A72", "#4B2D73", "#403075", "#343477", "#2E4272", "#29506D", "#226666",
	"#277553", "#2D882D", "#609732", "#7B9F35", "#91A437", "#AAAA39", "#AAA039", "#AA9739", "#AA8E39",
	"#AA8439", "#AA7939", "#AA6C39", "#AA5939", "#AA3939",
})

// ParsePalette parses hex colors ("#rrggbb" or "rrggbb") into a Palette.
func ParsePalette(hexes []string) (Palette, error) {
	if len(hexes) == 0 {
		return nil, errors.New("palette is empty")
	}
	p := make(Palette, 0, len(hexes))
	for i, h := range hexes {
		h = strings.TrimSpace(h)
		if !strings.HasPrefix(h, "#") {
			h = "#" + h
		}
		cf, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("palette entry %d: %w", i, err)
		}
		p = append(p, fromColorful(cf))
	}
	return p, nil
}

// MustParsePalette is ParsePalette for package-level literals.
func MustParsePalette(hexes []string) Palette {
	p, err := ParsePalette(hexes)
	if err != nil {
		panic(err)
	}
	return p
}

// GradientPalette blends n steps from one color to another in HCL space.
func GradientPalette(from, to Color, n int) Palette {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return Palette{from}
	}
	a, b := from.colorful(), to.colorful()
	p := make(Palette, n)
	for i := range p {
		p[i] = fromColorful(a.BlendHcl(b, float64(i)/float64(n-1)))
	}
	return p
}

// At returns the entry at i, clamped into the palette bounds. An empty
// palette yields Black.
func (p Palette) At(i int) Color {
	if len(p) == 0 {
		return Black
	}
	if i < 0 {
		i = 0
	}
	if i >= len(p) {
		i = len(p) - 1
	}
	return p[i]
}

// Hex lists the palette as hex strings.
func (p Palette) Hex() []string {
	out := make([]string, len(p))
	for i, c := range p {
		out[i] = c.Hex()
	}
	return out
}

// RampIndex linearly rescales magnitude from [sampleMin, sampleMax] onto a
// bucket in [0, buckets). Both ends are clamped: values at or below
// sampleMin land in bucket 0, values at or above sampleMax in buckets-1.
func RampIndex(magnitude, sampleMin, sampleMax float64, buckets int) int {
	if buckets <= 0 || sampleMax <= sampleMin {
		return 0
	}
	if magnitude < sampleMin {
		magnitude = sampleMin
	}
	if magnitude > sampleMax {
		magnitude = sampleMax
	}
	pos := int(float64(buckets) * (magnitude - sampleMin) / (sampleMax - sampleMin))
	if pos < 0 {
		return 0
	}
	if pos > buckets-1 {
		return buckets - 1
	}
	return pos
}
