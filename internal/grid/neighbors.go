package grid

// NeighborOptions selects a neighborhood shape around a cell.
type NeighborOptions struct {
	// Moore selects the square (Chebyshev-distance) neighborhood;
	// false selects the von Neumann diamond (Manhattan distance).
	Moore bool
	// Radius extends the classic one-step neighborhood to an r-step
	// window. Values below 1 are treated as 1.
	Radius int
	// IncludeCenter adds the origin cell to the result. Ignored when
	// Annular is set with a radius above zero.
	IncludeCenter bool
	// Annular keeps only the boundary ring at exactly Radius instead
	// of the filled window.
	Annular bool
}

// offset is a relative (row, col) displacement.
type offset struct{ dr, dc int }

// neighborOffsets generates the displacement set for the requested
// neighborhood, duplicate-free and ordered by increasing row then
// increasing column within the bounding window.
func neighborOffsets(opt NeighborOptions) []offset {
	r := opt.Radius
	if r < 1 {
		r = 1
	}
	includeCenter := opt.IncludeCenter
	if opt.Annular && r > 0 {
		// The center can never sit on the ring; the flag is ignored
		// rather than rejected.
		includeCenter = false
	}

	var out []offset
	for dr := -r; dr <= r; dr++ {
		for dc := -r; dc <= r; dc++ {
			dist := chebyshev(dr, dc)
			if !opt.Moore {
				dist = manhattan(dr, dc)
			}
			switch {
			case dr == 0 && dc == 0:
				if includeCenter {
					out = append(out, offset{dr, dc})
				}
			case dist > r:
				// outside the window
			case opt.Annular && dist != r:
				// interior of the ring
			default:
				out = append(out, offset{dr, dc})
			}
		}
	}
	return out
}

func chebyshev(dr, dc int) int {
	a, b := abs(dr), abs(dc)
	if a > b {
		return a
	}
	return b
}

func manhattan(dr, dc int) int { return abs(dr) + abs(dc) }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// NeighborsByIndices resolves the neighborhood around idx against this
// layer's bounds. Candidates falling outside the grid are dropped
// silently; there is no wraparound. The result is ordered row-major
// and contains no duplicates.
func (l *Layer) NeighborsByIndices(idx Indices, opt NeighborOptions) []*Cell {
	offsets := neighborOffsets(opt)
	out := make([]*Cell, 0, len(offsets))
	for _, o := range offsets {
		row, col := idx.Row+o.dr, idx.Col+o.dc
		if !l.InBounds(row, col) {
			continue
		}
		out = append(out, l.cells[l.Idx(row, col)])
	}
	return out
}
