package geom

// ClosestOnTri returns the point of triangle tri nearest to p, classifying p
// against the Voronoi regions of the triangle's vertices, edges and face.
func ClosestOnTri(p Vec3, tri [3]Vec3) Vec3 {
	a, b, c := tri[0], tri[1], tri[2]
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	d1, d2 := ab.Dot(ap), ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := p.Sub(b)
	d3, d4 := ab.Dot(bp), ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return a.Add(ab.Scale(d1 / (d1 - d3)))
	}

	cp := p.Sub(c)
	d5, d6 := ab.Dot(cp), ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return a.Add(ac.Scale(d2 / (d2 - d6)))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		return b.Add(c.Sub(b).Scale((d4 - d3) / ((d4 - d3) + (d5 - d6))))
	}

	denom := va + vb + vc
	if denom == 0 {
		// Degenerate triangle: every region test failed on a zero area.
		return closestOnSegment(p, a, b)
	}
	v := vb / denom
	w := vc / denom
	return a.Add(ab.Scale(v)).Add(ac.Scale(w))
}

func closestOnSegment(p, a, b Vec3) Vec3 {
	ab := b.Sub(a)
	l := ab.LenSq()
	if l == 0 {
		return a
	}
	t := min(max(p.Sub(a).Dot(ab)/l, 0), 1)
	return a.Add(ab.Scale(t))
}

// ClosestOnPolygon returns the point of a polygon nearest to p. The polygon
// is fanned into triangles from its first vertex, which is exact for planar
// convex polygons.
func ClosestOnPolygon(p Vec3, verts []Vec3) Vec3 {
	switch len(verts) {
	case 0:
		return p
	case 1:
		return verts[0]
	case 2:
		return closestOnSegment(p, verts[0], verts[1])
	}
	best := verts[0]
	bestD := best.Sub(p).LenSq()
	for i := 1; i+1 < len(verts); i++ {
		q := ClosestOnTri(p, [3]Vec3{verts[0], verts[i], verts[i+1]})
		if d := q.Sub(p).LenSq(); d < bestD {
			best, bestD = q, d
		}
	}
	return best
}
