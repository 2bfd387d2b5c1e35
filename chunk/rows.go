package chunk

import (
	"math"
	"sort"
)

// rowOverlapRatio is the fraction of the shorter candidate's height that two
// candidates must vertically share to count as side-by-side.
const rowOverlapRatio = 0.3

// RowGrouper orders candidates into row-major reading order, grouping
// side-by-side candidates into rows.
type RowGrouper struct {
	config Config
}

// NewRowGrouper creates a row grouper with the given configuration.
func NewRowGrouper(config Config) *RowGrouper {
	return &RowGrouper{config: config}
}

// Group returns the candidates in reading order: rows by their topmost member
// ascending, members within a row left to right. Grouping is transitive, so a
// chain of pairwise neighbors forms a single row even when its ends do not
// overlap each other. Candidate.Row records the row index for the later
// stages.
func (g *RowGrouper) Group(candidates []*Candidate) []*Candidate {
	n := len(candidates)
	if n == 0 {
		return candidates
	}

	// Union-find over the neighbor relation.
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if g.neighbors(candidates[i], candidates[j]) {
				ri, rj := find(i), find(j)
				if ri != rj {
					parent[rj] = ri
				}
			}
		}
	}

	// Gather rows in first-member order so the grouping is deterministic.
	rowIndex := make(map[int]int)
	var rows [][]*Candidate
	for i, cand := range candidates {
		root := find(i)
		idx, ok := rowIndex[root]
		if !ok {
			idx = len(rows)
			rowIndex[root] = idx
			rows = append(rows, nil)
		}
		rows[idx] = append(rows[idx], cand)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rowAnchor(rows[i]) < rowAnchor(rows[j])
	})

	out := make([]*Candidate, 0, n)
	for rowIdx, row := range rows {
		sort.SliceStable(row, func(i, j int) bool {
			return row[i].Rect.Left() < row[j].Rect.Left()
		})
		for _, cand := range row {
			cand.Row = rowIdx
			out = append(out, cand)
		}
	}
	return out
}

// neighbors reports whether two candidates sit side by side: their vertical
// overlap must exceed rowOverlapRatio of the shorter one's height.
func (g *RowGrouper) neighbors(a, b *Candidate) bool {
	minHeight := math.Min(a.Rect.Height, b.Rect.Height)
	if minHeight <= 0 {
		return false
	}
	return a.Rect.VerticalOverlap(b.Rect)/minHeight > rowOverlapRatio
}

// rowAnchor returns the row's vertical anchor: the minimum top over its
// members.
func rowAnchor(row []*Candidate) float64 {
	top := row[0].Rect.Top()
	for _, c := range row[1:] {
		if c.Rect.Top() < top {
			top = c.Rect.Top()
		}
	}
	return top
}
