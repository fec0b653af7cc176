package engine

// BandWidth is the number of columns the precipitation band covers at each
// edge: none when dry, then 1, 2 or 3 at the 50 and 100 thresholds.
func BandWidth(precip int) int {
	switch {
	case precip <= 0:
		return 0
	case precip < 50:
		return 1
	case precip < 100:
		return 2
	default:
		return 3
	}
}

// AdvancePhase steps the band's palette index on even ticks, wrapping at
// paletteLen.
func (r *RowState) AdvancePhase(tick uint64, paletteLen int) {
	if tick%2 != 0 || paletteLen <= 0 {
		return
	}
	r.Phase++
	if r.Phase >= paletteLen {
		r.Phase = 0
	}
}
