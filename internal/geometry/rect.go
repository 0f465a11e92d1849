package geometry

// Point represents a 2D coordinate in drawing space.
type Point struct {
	X float64
	Y float64
}

// Rect represents an axis-aligned rectangle in float coordinates.
type Rect struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// NewRect constructs a Rect from two corner coordinates ensuring ordering.
func NewRect(x1, y1, x2, y2 float64) Rect {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return Rect{MinX: x1, MinY: y1, MaxX: x2, MaxY: y2}
}

// Width returns the rectangle width.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the rectangle height.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Area returns the rectangle area.
func (r Rect) Area() float64 { return r.Width() * r.Height() }

// Intersects reports whether the two rectangles overlap or touch.
func (r Rect) Intersects(o Rect) bool {
	return !(r.MaxX < o.MinX || r.MinX > o.MaxX || r.MaxY < o.MinY || r.MinY > o.MaxY)
}

// ContainsPoint reports whether (x, y) lies inside the rectangle, edges included.
func (r Rect) ContainsPoint(x, y float64) bool {
	return r.MinX <= x && x <= r.MaxX && r.MinY <= y && y <= r.MaxY
}

// Gap returns the per-axis edge separation between two rectangles.
// Overlapping axes report zero.
func (r Rect) Gap(o Rect) (dx, dy float64) {
	dx = max(0, max(r.MinX, o.MinX)-min(r.MaxX, o.MaxX))
	dy = max(0, max(r.MinY, o.MinY)-min(r.MaxY, o.MaxY))
	return dx, dy
}

// Expand grows the rectangle by marginPercent of its own width/height on
// every side. Non-positive margins return the rectangle unchanged.
func (r Rect) Expand(marginPercent float64) Rect {
	if marginPercent <= 0 {
		return r
	}
	dx := r.Width() * marginPercent
	dy := r.Height() * marginPercent
	return Rect{MinX: r.MinX - dx, MinY: r.MinY - dy, MaxX: r.MaxX + dx, MaxY: r.MaxY + dy}
}
