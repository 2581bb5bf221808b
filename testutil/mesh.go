package testutil

import (
	"github.com/hupe1980/meshgo/handle"
)

// Builder is the subset of the database API needed to build test meshes.
type Builder interface {
	CreateVertex(x, y, z float64) (handle.Handle, error)
	CreateElement(t handle.Type, conn []handle.Handle) (handle.Handle, error)
}

// Mesh describes a structured test mesh.
type Mesh struct {
	NX, NY, NZ int
	Vertices   []handle.Handle
	Elements   []handle.Handle
	Coords     [][3]float64
}

// VertexAt returns the vertex at lattice position (i, j, k).
func (m *Mesh) VertexAt(i, j, k int) handle.Handle {
	return m.Vertices[m.vertexIndex(i, j, k)]
}

func (m *Mesh) vertexIndex(i, j, k int) int {
	return i + (m.NX+1)*(j+(m.NY+1)*k)
}

func lattice(b Builder, nx, ny, nz int) (*Mesh, error) {
	m := &Mesh{NX: nx, NY: ny, NZ: nz}
	for k := 0; k <= nz; k++ {
		for j := 0; j <= ny; j++ {
			for i := 0; i <= nx; i++ {
				p := [3]float64{float64(i), float64(j), float64(k)}
				v, err := b.CreateVertex(p[0], p[1], p[2])
				if err != nil {
					return nil, err
				}
				m.Vertices = append(m.Vertices, v)
				m.Coords = append(m.Coords, p)
			}
		}
	}
	return m, nil
}

// StructuredHexGrid builds an nx×ny×nz block of unit hexes with
// (nx+1)(ny+1)(nz+1) vertices.
func StructuredHexGrid(b Builder, nx, ny, nz int) (*Mesh, error) {
	m, err := lattice(b, nx, ny, nz)
	if err != nil {
		return nil, err
	}
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				conn := []handle.Handle{
					m.VertexAt(i, j, k), m.VertexAt(i+1, j, k),
					m.VertexAt(i+1, j+1, k), m.VertexAt(i, j+1, k),
					m.VertexAt(i, j, k+1), m.VertexAt(i+1, j, k+1),
					m.VertexAt(i+1, j+1, k+1), m.VertexAt(i, j+1, k+1),
				}
				h, err := b.CreateElement(handle.Hex, conn)
				if err != nil {
					return nil, err
				}
				m.Elements = append(m.Elements, h)
			}
		}
	}
	return m, nil
}

// QuadGrid builds an nx×ny planar grid of unit quads at z=0, counterclockwise
// seen from +z.
func QuadGrid(b Builder, nx, ny int) (*Mesh, error) {
	m, err := lattice(b, nx, ny, 0)
	if err != nil {
		return nil, err
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			conn := []handle.Handle{
				m.VertexAt(i, j, 0), m.VertexAt(i+1, j, 0),
				m.VertexAt(i+1, j+1, 0), m.VertexAt(i, j+1, 0),
			}
			h, err := b.CreateElement(handle.Quad, conn)
			if err != nil {
				return nil, err
			}
			m.Elements = append(m.Elements, h)
		}
	}
	return m, nil
}

// kuhn lists the six axis orderings of the Kuhn subdivision of a cube.
var kuhn = [6][3]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}

// TetBlock builds an nx×ny×nz block of cubes, each split into six
// positively oriented tets along its main diagonal. Neighbouring cubes share
// face diagonals, so the result is conforming.
func TetBlock(b Builder, nx, ny, nz int) (*Mesh, error) {
	m, err := lattice(b, nx, ny, nz)
	if err != nil {
		return nil, err
	}
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				for _, order := range kuhn {
					pos := [3]int{i, j, k}
					idx := make([]int, 0, 4)
					idx = append(idx, m.vertexIndex(pos[0], pos[1], pos[2]))
					for _, axis := range order {
						pos[axis]++
						idx = append(idx, m.vertexIndex(pos[0], pos[1], pos[2]))
					}
					if signedVolume(m.Coords[idx[0]], m.Coords[idx[1]], m.Coords[idx[2]], m.Coords[idx[3]]) < 0 {
						idx[1], idx[2] = idx[2], idx[1]
					}
					conn := []handle.Handle{m.Vertices[idx[0]], m.Vertices[idx[1]], m.Vertices[idx[2]], m.Vertices[idx[3]]}
					h, err := b.CreateElement(handle.Tet, conn)
					if err != nil {
						return nil, err
					}
					m.Elements = append(m.Elements, h)
				}
			}
		}
	}
	return m, nil
}

func signedVolume(a, b, c, d [3]float64) float64 {
	u := [3]float64{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
	v := [3]float64{c[0] - a[0], c[1] - a[1], c[2] - a[2]}
	w := [3]float64{d[0] - a[0], d[1] - a[1], d[2] - a[2]}
	return u[0]*(v[1]*w[2]-v[2]*w[1]) - u[1]*(v[0]*w[2]-v[2]*w[0]) + u[2]*(v[0]*w[1]-v[1]*w[0])
}
