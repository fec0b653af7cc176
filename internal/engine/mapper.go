package engine

import "github.com/couchcryptid/storm-matrix/internal/domain"

// SampleIndex maps a row onto the forecast sample that colors it. The first
// headerRows rows share sample 0; each later row advances by one, so row
// headerRows reads sample 1. The +1 is deliberate: it matches the panels
// already deployed (classic row 3 reads sample 1), not row - headerRows.
func SampleIndex(row, headerRows int) int {
	if row < headerRows {
		return 0
	}
	return row - headerRows + 1
}

// TargetColor is the dimmed palette color a row fades toward.
func TargetColor(s Settings, f domain.Forecast, row int) domain.Color {
	temp := f.Sample(SampleIndex(row, s.HeaderRows)).Temperature
	if temp < 0 {
		temp = 0
	}
	idx := domain.RampIndex(float64(temp), s.TempMin, s.TempMax, len(s.Palette))
	return s.Palette.At(idx).Scale(s.TargetDim)
}

// targetColors fills dst with one target per row.
func targetColors(s Settings, f domain.Forecast, dst []domain.Color) {
	for y := range dst {
		dst[y] = TargetColor(s, f, y)
	}
}
