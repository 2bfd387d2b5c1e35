package model

import "math"

// Point represents a 2D point in page pixel coordinates
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Rect represents an axis-aligned rectangle in page pixel coordinates.
// The origin is the top-left corner of the page and Y grows downward,
// matching browser layout coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect creates a rectangle from coordinates
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// NewRectFromEdges creates a rectangle from its top-left and bottom-right edges
func NewRectFromEdges(left, top, right, bottom float64) Rect {
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// Left returns the left edge X coordinate
func (r Rect) Left() float64 {
	return r.X
}

// Right returns the right edge X coordinate
func (r Rect) Right() float64 {
	return r.X + r.Width
}

// Top returns the top edge Y coordinate
func (r Rect) Top() float64 {
	return r.Y
}

// Bottom returns the bottom edge Y coordinate
func (r Rect) Bottom() float64 {
	return r.Y + r.Height
}

// Center returns the center point
func (r Rect) Center() Point {
	return Point{
		X: r.X + r.Width/2,
		Y: r.Y + r.Height/2,
	}
}

// Contains checks if a point is inside the rectangle
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left() && p.X <= r.Right() &&
		p.Y >= r.Top() && p.Y <= r.Bottom()
}

// Intersects checks if two rectangles intersect
func (r Rect) Intersects(other Rect) bool {
	return !(r.Right() < other.Left() ||
		r.Left() > other.Right() ||
		r.Bottom() < other.Top() ||
		r.Top() > other.Bottom())
}

// Intersection returns the intersection of two rectangles
func (r Rect) Intersection(other Rect) Rect {
	if !r.Intersects(other) {
		return Rect{}
	}

	left := math.Max(r.Left(), other.Left())
	top := math.Max(r.Top(), other.Top())
	right := math.Min(r.Right(), other.Right())
	bottom := math.Min(r.Bottom(), other.Bottom())

	return NewRectFromEdges(left, top, right, bottom)
}

// Union returns the smallest rectangle containing both rectangles
func (r Rect) Union(other Rect) Rect {
	left := math.Min(r.Left(), other.Left())
	top := math.Min(r.Top(), other.Top())
	right := math.Max(r.Right(), other.Right())
	bottom := math.Max(r.Bottom(), other.Bottom())

	return NewRectFromEdges(left, top, right, bottom)
}

// Area returns the area of the rectangle in square pixels
func (r Rect) Area() float64 {
	return r.Width * r.Height
}

// OverlapArea returns the area shared with another rectangle in square
// pixels, or 0 when the rectangles do not overlap.
func (r Rect) OverlapArea(other Rect) float64 {
	w := math.Min(r.Right(), other.Right()) - math.Max(r.Left(), other.Left())
	h := math.Min(r.Bottom(), other.Bottom()) - math.Max(r.Top(), other.Top())
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// VerticalOverlap returns the length of the shared vertical extent with
// another rectangle, or 0 when their vertical spans are disjoint.
func (r Rect) VerticalOverlap(other Rect) float64 {
	overlap := math.Min(r.Bottom(), other.Bottom()) - math.Max(r.Top(), other.Top())
	if overlap < 0 {
		return 0
	}
	return overlap
}

// HorizontalOverlap returns the length of the shared horizontal extent with
// another rectangle, or 0 when their horizontal spans are disjoint.
func (r Rect) HorizontalOverlap(other Rect) float64 {
	overlap := math.Min(r.Right(), other.Right()) - math.Max(r.Left(), other.Left())
	if overlap < 0 {
		return 0
	}
	return overlap
}

// OverlapRatio calculates the overlap ratio with another rectangle,
// relative to the smaller of the two areas.
// Returns value between 0 and 1
func (r Rect) OverlapRatio(other Rect) float64 {
	minArea := math.Min(r.Area(), other.Area())
	if minArea == 0 {
		return 0
	}
	return r.OverlapArea(other) / minArea
}

// Expand expands the rectangle by a margin on all sides
func (r Rect) Expand(margin float64) Rect {
	return Rect{
		X:      r.X - margin,
		Y:      r.Y - margin,
		Width:  r.Width + 2*margin,
		Height: r.Height + 2*margin,
	}
}

// IsEmpty returns true if the rectangle has zero area
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// IsValid returns true if the rectangle has positive dimensions and
// finite, non-NaN coordinates
func (r Rect) IsValid() bool {
	for _, v := range [4]float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r.Width > 0 && r.Height > 0
}
