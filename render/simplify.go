package render

import (
	"github.com/fogleman/simplify"
	"gonum.org/v1/gonum/spatial/r3"
)

// simplifyMesh decimates the triangulated mesh and welds the result back
// into an indexed triangle mesh.
func simplifyMesh(m Mesh, adaptivity float64) Mesh {
	factor := 1 - 0.9*adaptivity
	tris := m.Triangulate()
	in := &simplify.Mesh{Triangles: make([]*simplify.Triangle, len(tris))}
	for i, t := range tris {
		in.Triangles[i] = &simplify.Triangle{
			V1: toSimplify(m.Points[t[0]]),
			V2: toSimplify(m.Points[t[1]]),
			V3: toSimplify(m.Points[t[2]]),
		}
	}
	out := simplify.Simplify(in, factor)

	welded := Mesh{Triangles: make([][3]int, 0, len(out.Triangles))}
	index := make(map[simplify.Vector]int)
	weld := func(v simplify.Vector) int {
		if i, ok := index[v]; ok {
			return i
		}
		i := len(welded.Points)
		welded.Points = append(welded.Points, r3.Vec{X: v.X, Y: v.Y, Z: v.Z})
		index[v] = i
		return i
	}
	for _, t := range out.Triangles {
		tri := [3]int{weld(t.V1), weld(t.V2), weld(t.V3)}
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[2] == tri[0] {
			continue
		}
		welded.Triangles = append(welded.Triangles, tri)
	}
	return welded
}

func toSimplify(v r3.Vec) simplify.Vector {
	return simplify.Vector{X: v.X, Y: v.Y, Z: v.Z}
}
