package model

import "sort"

// StyleSummary aggregates how often style values occur across a page's
// captured nodes. It gives downstream consumers a global styling
// context without shipping every node's style snapshot.
type StyleSummary struct {
	Colors           map[string]int `json:"colors"`
	BackgroundColors map[string]int `json:"background_colors"`
	FontFamilies     map[string]int `json:"font_families"`
	FontSizes        map[string]int `json:"font_sizes"`
	DisplayTypes     map[string]int `json:"display_types"`
	PositionTypes    map[string]int `json:"position_types"`
}

// StyleCount is a single style value with its occurrence count
type StyleCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Empty reports whether the summary carries no style counts at all.
func (s *StyleSummary) Empty() bool {
	if s == nil {
		return true
	}
	return len(s.Colors) == 0 && len(s.BackgroundColors) == 0 &&
		len(s.FontFamilies) == 0 && len(s.FontSizes) == 0 &&
		len(s.DisplayTypes) == 0 && len(s.PositionTypes) == 0
}

// SummarizeStyles computes a StyleSummary over every node in the tree.
// A nil or empty tree yields an empty summary.
func SummarizeStyles(t *Tree) *StyleSummary {
	s := &StyleSummary{
		Colors:           make(map[string]int),
		BackgroundColors: make(map[string]int),
		FontFamilies:     make(map[string]int),
		FontSizes:        make(map[string]int),
		DisplayTypes:     make(map[string]int),
		PositionTypes:    make(map[string]int),
	}
	if t == nil {
		return s
	}

	for i := range t.Nodes {
		styles := t.Nodes[i].Styles
		if styles == nil {
			continue
		}
		countStyle(s.Colors, styles["color"])
		countStyle(s.BackgroundColors, styles["background_color"])
		countStyle(s.FontFamilies, styles["font_family"])
		countStyle(s.FontSizes, styles["font_size"])
		countStyle(s.DisplayTypes, styles["display"])
		countStyle(s.PositionTypes, styles["position"])
	}

	return s
}

// Top returns the summary with each frequency map reduced to its limit
// most frequent values. The receiver is not modified.
func (s *StyleSummary) Top(limit int) *StyleSummary {
	if s == nil {
		return nil
	}
	return &StyleSummary{
		Colors:           topValues(s.Colors, limit),
		BackgroundColors: topValues(s.BackgroundColors, limit),
		FontFamilies:     topValues(s.FontFamilies, limit),
		FontSizes:        topValues(s.FontSizes, limit),
		DisplayTypes:     topValues(s.DisplayTypes, limit),
		PositionTypes:    topValues(s.PositionTypes, limit),
	}
}

// TopValues returns the limit most frequent entries of a frequency map
// ordered by count descending, ties broken by value ascending so the
// result is deterministic.
func TopValues(m map[string]int, limit int) []StyleCount {
	counts := make([]StyleCount, 0, len(m))
	for value, count := range m {
		counts = append(counts, StyleCount{Value: value, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Value < counts[j].Value
	})
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}

func countStyle(m map[string]int, value string) {
	if value != "" {
		m[value]++
	}
}

func topValues(m map[string]int, limit int) map[string]int {
	out := make(map[string]int, limit)
	for _, sc := range TopValues(m, limit) {
		out[sc.Value] = sc.Count
	}
	return out
}
