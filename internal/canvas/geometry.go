package canvas

import "collabboard-backend/internal/model"

// Rect is an axis-aligned rectangle. Width/Height may be negative before
// normalization (drag direction).
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Normalize returns an equivalent rect with non-negative width and height.
func (r Rect) Normalize() Rect {
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r
}

// Intersects reports whether two rects overlap. Touching edges count as
// intersecting, so a marquee grazing an object still selects it.
func (r Rect) Intersects(other Rect) bool {
	a, b := r.Normalize(), other.Normalize()
	return a.X <= b.X+b.Width &&
		a.X+a.Width >= b.X &&
		a.Y <= b.Y+b.Height &&
		a.Y+a.Height >= b.Y
}

// Contains reports whether the point lies inside the rect.
func (r Rect) Contains(x, y float64) bool {
	n := r.Normalize()
	return x >= n.X && x <= n.X+n.Width && y >= n.Y && y <= n.Y+n.Height
}

// BoundsOf returns the object's axis-aligned bounding box. Line and arrow
// geometry comes from the points sequence when present.
func BoundsOf(obj model.BoardObject) Rect {
	if len(obj.Points) >= 4 && (obj.Type == model.ObjectLine || obj.Type == model.ObjectArrow) {
		minX, minY := obj.Points[0], obj.Points[1]
		maxX, maxY := minX, minY
		for i := 2; i+1 < len(obj.Points); i += 2 {
			x, y := obj.Points[i], obj.Points[i+1]
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
		return Rect{X: obj.X + minX, Y: obj.Y + minY, Width: maxX - minX, Height: maxY - minY}
	}
	return Rect{X: obj.X, Y: obj.Y, Width: obj.Width, Height: obj.Height}
}

// IntersectingIDs returns the ids of objects whose bounding box intersects
// the marquee rect. Partial overlap is enough; containment is not required.
func IntersectingIDs(objects []model.BoardObject, marquee Rect) []string {
	ids := make([]string, 0)
	for _, obj := range objects {
		if marquee.Intersects(BoundsOf(obj)) {
			ids = append(ids, obj.ID)
		}
	}
	return ids
}
