package geom

import "math"

const (
	// hexMaxIterations bounds the Newton solve of the inverse map.
	hexMaxIterations = 10
	// hexDetEpsilon is the singular-Jacobian threshold relative to the
	// cube of the element's bounding-box diagonal.
	hexDetEpsilon = 1e-12
)

// hexCorners are the natural coordinates of the eight hex corners, bottom
// face counter-clockwise then top face.
var hexCorners = [8]Vec3{
	{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
	{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
}

// trilinear evaluates the map F(ξ) and its Jacobian.
func trilinear(corners *[8]Vec3, xi Vec3) (Vec3, mat3) {
	var x Vec3
	var j mat3
	for i, c := range hexCorners {
		f0 := 1 + c[0]*xi[0]
		f1 := 1 + c[1]*xi[1]
		f2 := 1 + c[2]*xi[2]
		n := f0 * f1 * f2 / 8
		x = x.Add(corners[i].Scale(n))
		dn := Vec3{c[0] * f1 * f2 / 8, f0 * c[1] * f2 / 8, f0 * f1 * c[2] / 8}
		for r := range 3 {
			for k := range 3 {
				j[r][k] += corners[i][r] * dn[k]
			}
		}
	}
	return x, j
}

// NatCoordsTrilinearHex inverts the trilinear map of a hexahedron by Newton
// iteration, returning the natural coordinates ξ with F(ξ) = x. It reports
// false when the Jacobian becomes singular or the iteration does not reach
// the Euclidean tolerance tol within a fixed number of steps.
func NatCoordsTrilinearHex(corners [8]Vec3, x Vec3, tol float64) (Vec3, bool) {
	diag := BoxOf(corners[:]...).Diagonal()
	detTol := hexDetEpsilon * diag * diag * diag
	tol2 := tol * tol

	var xi Vec3
	for range hexMaxIterations {
		fx, j := trilinear(&corners, xi)
		delta := fx.Sub(x)
		if delta.LenSq() <= tol2 {
			return xi, true
		}
		det := j.det()
		if math.Abs(det) < detTol || det == 0 {
			return xi, false
		}
		xi = xi.Sub(j.solve(delta, det))
	}
	fx, _ := trilinear(&corners, xi)
	return xi, fx.Sub(x).LenSq() <= tol2
}

// PointInTrilinearHex reports whether x lies inside the hexahedron, with
// natural coordinates allowed to exceed ±1 by tol.
func PointInTrilinearHex(corners [8]Vec3, x Vec3, tol float64) bool {
	box := BoxOf(corners[:]...)
	if !box.Contains(x, tol*box.Diagonal()) {
		return false
	}
	xi, ok := NatCoordsTrilinearHex(corners, x, 1e-10*max(box.Diagonal(), 1))
	if !ok {
		return false
	}
	lim := 1 + tol
	return math.Abs(xi[0]) <= lim && math.Abs(xi[1]) <= lim && math.Abs(xi[2]) <= lim
}
