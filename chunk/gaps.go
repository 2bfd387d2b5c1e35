package chunk

// band is the shared vertical interval of one row.
type band struct {
	row    int
	top    float64
	bottom float64
}

// collectBands gathers each row's vertical interval in sequence order. Rows
// are contiguous in the candidate sequence by construction, so a band runs
// from the minimum top to the maximum bottom of one row's run.
func collectBands(candidates []*Candidate) []band {
	var bands []band
	for _, c := range candidates {
		if len(bands) == 0 || bands[len(bands)-1].row != c.Row {
			bands = append(bands, band{row: c.Row, top: c.Rect.Top(), bottom: c.Rect.Bottom()})
			continue
		}
		b := &bands[len(bands)-1]
		if c.Rect.Top() < b.top {
			b.top = c.Rect.Top()
		}
		if c.Rect.Bottom() > b.bottom {
			b.bottom = c.Rect.Bottom()
		}
	}
	return bands
}

// GapFiller adjusts row-band boundaries so the bands tile the page height
// exactly.
type GapFiller struct {
	config Config
}

// NewGapFiller creates a gap filler with the given configuration.
func NewGapFiller(config Config) *GapFiller {
	return &GapFiller{config: config}
}

// Fill mutates the candidates' vertical boundaries so their row bands tile
// [0, pageHeight). The first band is pulled up to 0 and the last extended to
// the page height; a positive gap between adjacent bands is split at its
// midpoint, and a negative one is clamped with the earlier band winning the
// boundary. Members of a row receive their band's final extent. Horizontal
// extents are untouched.
func (f *GapFiller) Fill(candidates []*Candidate, pageHeight float64) []*Candidate {
	if len(candidates) == 0 {
		return candidates
	}

	bands := collectBands(candidates)

	if bands[0].top > 0 {
		bands[0].top = 0
	}
	if last := &bands[len(bands)-1]; last.bottom < pageHeight {
		last.bottom = pageHeight
	}

	for i := 1; i < len(bands); i++ {
		prev, curr := &bands[i-1], &bands[i]
		gap := curr.top - prev.bottom
		switch {
		case gap > 0:
			mid := prev.bottom + gap/2
			prev.bottom = mid
			curr.top = mid
		case gap < 0:
			// Residual overlap from boundary rounding: the earlier band wins.
			curr.top = prev.bottom
			if curr.bottom < curr.top {
				curr.bottom = curr.top
			}
		}
	}

	byRow := make(map[int]band, len(bands))
	for _, b := range bands {
		byRow[b.row] = b
	}
	for _, c := range candidates {
		b := byRow[c.Row]
		c.Rect.Y = b.top
		c.Rect.Height = b.bottom - b.top
	}
	return candidates
}
