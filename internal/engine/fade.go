package engine

import "github.com/couchcryptid/storm-matrix/internal/domain"

// FadePixel moves p one step toward target. Above the target every channel
// decays geometrically by decay; below it every channel gains target*(1-rise).
// Channels are clamped to [0, 255] afterwards.
func FadePixel(p domain.Pixel, target domain.Color, decay, rise float64) domain.Pixel {
	t := domain.PixelOf(target)
	switch {
	case p.Brightness() > t.Brightness():
		p.R *= decay
		p.G *= decay
		p.B *= decay
	case p.Brightness() < t.Brightness():
		p.R += t.R * (1 - rise)
		p.G += t.G * (1 - rise)
		p.B += t.B * (1 - rise)
	}
	return clampPixel(p)
}

// Fade applies FadePixel to every cell, using the row's target and the edge
// decay factor on the first and last columns.
func Fade(frame *domain.Frame, targets []domain.Color, s Settings) {
	w := frame.Width()
	for y := 0; y < frame.Height(); y++ {
		for x := 0; x < w; x++ {
			decay := s.DecayFactor
			if x == 0 || x == w-1 {
				decay = s.EdgeDecayFactor
			}
			frame.Set(x, y, FadePixel(frame.At(x, y), targets[y], decay, s.RiseFactor))
		}
	}
}

func clampPixel(p domain.Pixel) domain.Pixel {
	return domain.Pixel{R: clamp255(p.R), G: clamp255(p.G), B: clamp255(p.B)}
}

func clamp255(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
