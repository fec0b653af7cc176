package engine

// RowState is the per-row animation state: the wind marker's continuous
// position and velocity, and the precipitation band's color phase.
type RowState struct {
	Position float64
	Velocity float64
	Phase    int
}

// NewRowStates lays out one marker per row from the settings' start lists,
// cycling them when the panel has more rows and clamping into the width.
func NewRowStates(s Settings) []RowState {
	rows := make([]RowState, s.Height)
	for y := range rows {
		pos := s.MarkerStart[y%len(s.MarkerStart)]
		pos = min(max(pos, 0), float64(s.Width-1))
		rows[y] = RowState{
			Position: pos,
			Velocity: s.MarkerDirection[y%len(s.MarkerDirection)],
		}
	}
	return rows
}

// MarkerCell converts a continuous position into the painted column, keeping
// offset columns free at each edge for the precipitation band. On a panel too
// narrow for both bands the result is still clamped into [0, width-1].
func MarkerCell(pos float64, width, offset int) int {
	x := int(pos)
	if x >= width-(1+offset) {
		x = width - (1 + offset)
	}
	if x <= offset {
		x = offset
	}
	return min(max(x, 0), width-1)
}

// Advance reflects the marker at the panel edges and then moves it. A marker
// reaching the right edge while moving right turns around at wind/divisor
// cells per tick, and symmetrically on the left. The move happens in the
// same tick as the reflection, so a marker never sits on an edge.
func (r *RowState) Advance(width, wind int, divisor float64) {
	if r.Position >= float64(width-1) && r.Velocity > 0 {
		r.Velocity = -float64(wind) / divisor
	}
	if r.Position <= 0 && r.Velocity < 0 {
		r.Velocity = float64(wind) / divisor
	}
	r.Position += r.Velocity
}
