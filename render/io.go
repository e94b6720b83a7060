package render

import (
	"io"

	"gonum.org/v1/gonum/spatial/r3"
)

// RenderAll reads the full contents of a Renderer and returns the slice read.
// It does not return error on io.EOF, like the io.ReadAll implementation.
func RenderAll(r Renderer) ([]r3.Triangle, error) {
	var err error
	var nt int
	result := make([]r3.Triangle, 0, 1<<12)
	buf := make([]r3.Triangle, 1024)
	for {
		nt, err = r.ReadTriangles(buf)
		result = append(result, buf[:nt]...)
		if err != nil {
			break
		}
	}
	if err == io.EOF {
		return result, nil
	}
	return result, err
}

// meshRenderer streams the triangles of an indexed mesh, quads split in two.
type meshRenderer struct {
	m    Mesh
	next int // next triangle in m.Triangles followed by split quads.
}

// NewMeshRenderer returns a Renderer that reads the triangles of m.
func NewMeshRenderer(m Mesh) Renderer {
	return &meshRenderer{m: m}
}

func (mr *meshRenderer) ReadTriangles(dst []r3.Triangle) (n int, err error) {
	if len(dst) == 0 {
		panic("cannot write to empty triangle slice")
	}
	total := mr.m.TriangleCount()
	for n < len(dst) && mr.next < total {
		dst[n] = mr.m.triangle(mr.m.triangleIndices(mr.next))
		mr.next++
		n++
	}
	if mr.next == total {
		return n, io.EOF
	}
	return n, nil
}
