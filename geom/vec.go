package geom

import "math"

// Vec3 is a point or direction in 3-space. It converts directly from the
// coordinate triples the database returns.
type Vec3 [3]float64

// Add returns a+b.
func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }

// Sub returns a-b.
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }

// Scale returns s*a.
func (a Vec3) Scale(s float64) Vec3 { return Vec3{s * a[0], s * a[1], s * a[2]} }

// Dot returns the scalar product.
func (a Vec3) Dot(b Vec3) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

// Cross returns the vector product a×b.
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// LenSq returns the squared length.
func (a Vec3) LenSq() float64 { return a.Dot(a) }

// Len returns the Euclidean length.
func (a Vec3) Len() float64 { return math.Sqrt(a.LenSq()) }

// Normalize returns a scaled to unit length, or the zero vector when a has
// zero length.
func (a Vec3) Normalize() Vec3 {
	l := a.Len()
	if l == 0 {
		return Vec3{}
	}
	return a.Scale(1 / l)
}

// Abs returns the component-wise absolute value.
func (a Vec3) Abs() Vec3 { return Vec3{math.Abs(a[0]), math.Abs(a[1]), math.Abs(a[2])} }

// Min returns the component-wise minimum.
func (a Vec3) Min(b Vec3) Vec3 { return Vec3{min(a[0], b[0]), min(a[1], b[1]), min(a[2], b[2])} }

// Max returns the component-wise maximum.
func (a Vec3) Max(b Vec3) Vec3 { return Vec3{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])} }

// Dist returns the distance between a and b.
func (a Vec3) Dist(b Vec3) float64 { return a.Sub(b).Len() }

// Newell returns the unnormalised polygon normal by Newell's method. Its
// length is twice the projected area, and it is zero for degenerate
// polygons.
func Newell(pts []Vec3) Vec3 {
	var n Vec3
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		n[0] += (p[1] - q[1]) * (p[2] + q[2])
		n[1] += (p[2] - q[2]) * (p[0] + q[0])
		n[2] += (p[0] - q[0]) * (p[1] + q[1])
	}
	return n
}

// mat3 is a row-major 3×3 matrix.
type mat3 [3]Vec3

func (m mat3) det() float64 {
	return m[0].Dot(m[1].Cross(m[2]))
}

// solve returns x with m·x = b by Cramer's rule. The caller checks det.
func (m mat3) solve(b Vec3, det float64) Vec3 {
	// Columns of m.
	c0 := Vec3{m[0][0], m[1][0], m[2][0]}
	c1 := Vec3{m[0][1], m[1][1], m[2][1]}
	c2 := Vec3{m[0][2], m[1][2], m[2][2]}
	return Vec3{
		b.Dot(c1.Cross(c2)) / det,
		c0.Dot(b.Cross(c2)) / det,
		c0.Dot(c1.Cross(b)) / det,
	}
}
