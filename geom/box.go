package geom

import "math"

// BoundingBox is an axis-aligned box. The zero value is a degenerate box at
// the origin; use EmptyBox to start an accumulation.
type BoundingBox struct {
	Min, Max Vec3
}

// EmptyBox returns a box that contains nothing and grows to fit the first
// point expanded into it.
func EmptyBox() BoundingBox {
	inf := math.Inf(1)
	return BoundingBox{Min: Vec3{inf, inf, inf}, Max: Vec3{-inf, -inf, -inf}}
}

// BoxOf returns the tightest box around pts.
func BoxOf(pts ...Vec3) BoundingBox {
	b := EmptyBox()
	for _, p := range pts {
		b.Expand(p)
	}
	return b
}

// IsEmpty reports whether the box contains no point.
func (b BoundingBox) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Expand grows the box to contain p.
func (b *BoundingBox) Expand(p Vec3) {
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// Union grows the box to contain o.
func (b *BoundingBox) Union(o BoundingBox) {
	if o.IsEmpty() {
		return
	}
	b.Min = b.Min.Min(o.Min)
	b.Max = b.Max.Max(o.Max)
}

// Center returns the box midpoint.
func (b BoundingBox) Center() Vec3 { return b.Min.Add(b.Max).Scale(0.5) }

// HalfDims returns half the box extent along each axis.
func (b BoundingBox) HalfDims() Vec3 { return b.Max.Sub(b.Min).Scale(0.5) }

// Diagonal returns the length of the box diagonal.
func (b BoundingBox) Diagonal() float64 { return b.Max.Sub(b.Min).Len() }

// Overlaps reports whether the boxes intersect once each is inflated by tol.
func (b BoundingBox) Overlaps(o BoundingBox, tol float64) bool {
	for i := range 3 {
		if b.Min[i] > o.Max[i]+tol || o.Min[i] > b.Max[i]+tol {
			return false
		}
	}
	return true
}

// Contains reports whether p lies inside the box inflated by tol.
func (b BoundingBox) Contains(p Vec3, tol float64) bool {
	for i := range 3 {
		if p[i] < b.Min[i]-tol || p[i] > b.Max[i]+tol {
			return false
		}
	}
	return true
}

// ClosestOnBox returns the point of the box nearest to p.
func ClosestOnBox(p Vec3, b BoundingBox) Vec3 {
	return p.Max(b.Min).Min(b.Max)
}
