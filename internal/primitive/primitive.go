// Package primitive generates triangle meshes of simple solids with sdfx.
package primitive

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/soypat/levelset/objfile"
	"gonum.org/v1/gonum/spatial/r3"
)

// SDF returns the solid named shape fitting a cube of side size centered
// at the origin.
func SDF(shape string, size float64) (sdf.SDF3, error) {
	if !(size > 0) || math.IsInf(size, 0) {
		return nil, fmt.Errorf("primitive size must be positive, got %g", size)
	}
	switch shape {
	case "box":
		return sdf.Box3D(v3.Vec{X: size, Y: size, Z: size}, 0)
	case "sphere":
		return sdf.Sphere3D(size / 2)
	case "cylinder":
		return sdf.Cylinder3D(size, size/2, 0)
	}
	return nil, fmt.Errorf("unknown primitive shape %q", shape)
}

// Mesh renders the named shape with marching cubes using cells along the
// longest axis and welds coincident vertices, so the result is an indexed
// mesh with shared edges.
func Mesh(shape string, size float64, cells int) (objfile.Mesh, error) {
	s, err := SDF(shape, size)
	if err != nil {
		return objfile.Mesh{}, err
	}
	if cells < 2 {
		return objfile.Mesh{}, fmt.Errorf("need at least 2 cells, got %d", cells)
	}
	tris := render.ToTriangles(s, render.NewMarchingCubesUniform(cells))
	w := newWelder(size * 1e-9)
	for _, tri := range tris {
		w.add(tri[0], tri[1], tri[2])
	}
	return w.mesh, nil
}

type weldKey [3]int64

// welder merges vertices that quantize to the same key.
type welder struct {
	tol   float64
	index map[weldKey]int
	mesh  objfile.Mesh
}

func newWelder(tol float64) *welder {
	return &welder{tol: tol, index: make(map[weldKey]int)}
}

func (w *welder) vertex(v v3.Vec) int {
	key := weldKey{int64(math.Round(v.X / w.tol)), int64(math.Round(v.Y / w.tol)), int64(math.Round(v.Z / w.tol))}
	if i, ok := w.index[key]; ok {
		return i
	}
	i := len(w.mesh.Vertices)
	w.mesh.Vertices = append(w.mesh.Vertices, r3.Vec{X: v.X, Y: v.Y, Z: v.Z})
	w.index[key] = i
	return i
}

// add appends a triangle, dropping it if welding collapsed any edge.
func (w *welder) add(a, b, c v3.Vec) {
	t := [3]int{w.vertex(a), w.vertex(b), w.vertex(c)}
	if t[0] == t[1] || t[1] == t[2] || t[2] == t[0] {
		return
	}
	w.mesh.Triangles = append(w.mesh.Triangles, t)
}
