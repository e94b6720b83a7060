package render

import (
	"fmt"

	"github.com/soypat/levelset/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is an indexed polygon mesh made of triangles and quads sharing one
// point list. Faces are wound counter clockwise seen from outside.
type Mesh struct {
	Points    []r3.Vec
	Triangles [][3]int
	Quads     [][4]int
}

// SplitQuad splits quad q along its (q[0], q[2]) diagonal into the triangles
// (q[0], q[1], q[2]) and (q[0], q[2], q[3]).
func SplitQuad(q [4]int) [2][3]int {
	return [2][3]int{
		{q[0], q[1], q[2]},
		{q[0], q[2], q[3]},
	}
}

// Empty reports whether the mesh has no points or no faces.
func (m Mesh) Empty() bool {
	return len(m.Points) == 0 || len(m.Triangles)+len(m.Quads) == 0
}

// TriangleCount returns the number of triangles in the mesh once every quad
// is split in two.
func (m Mesh) TriangleCount() int {
	return len(m.Triangles) + 2*len(m.Quads)
}

// Triangulate returns the triangles of the mesh followed by the triangles
// of every split quad.
func (m Mesh) Triangulate() [][3]int {
	tris := make([][3]int, 0, m.TriangleCount())
	tris = append(tris, m.Triangles...)
	for _, q := range m.Quads {
		split := SplitQuad(q)
		tris = append(tris, split[0], split[1])
	}
	return tris
}

// TriangleSoup returns the triangulated mesh as a triangle soup.
func (m Mesh) TriangleSoup() []r3.Triangle {
	soup := make([]r3.Triangle, m.TriangleCount())
	for i := range soup {
		soup[i] = m.triangle(m.triangleIndices(i))
	}
	return soup
}

// Bounds returns the bounding box of the mesh points.
func (m Mesh) Bounds() r3.Box {
	if len(m.Points) == 0 {
		return r3.Box{}
	}
	return r3.Box(d3.Set(m.Points).Bounds())
}

// Validate checks every face references a point of the mesh.
func (m Mesh) Validate() error {
	for i, t := range m.Triangulate() {
		for _, c := range t {
			if c < 0 || c >= len(m.Points) {
				return fmt.Errorf("triangle %d references point %d out of %d", i, c, len(m.Points))
			}
		}
	}
	return nil
}

// triangleIndices returns the i'th triangle of Triangulate without
// building the full list.
func (m Mesh) triangleIndices(i int) [3]int {
	if i < len(m.Triangles) {
		return m.Triangles[i]
	}
	i -= len(m.Triangles)
	return SplitQuad(m.Quads[i/2])[i%2]
}

func (m Mesh) triangle(t [3]int) r3.Triangle {
	return r3.Triangle{m.Points[t[0]], m.Points[t[1]], m.Points[t[2]]}
}
