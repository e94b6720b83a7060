// Package render extracts polygonal isosurfaces from level set grids and
// writes the resulting triangles to disk.
package render

import "gonum.org/v1/gonum/spatial/r3"

// Renderer streams triangles. ReadTriangles fills t and returns the number
// of triangles written. It returns io.EOF once every triangle has been read.
// Vertices are ordered counter clockwise seen from outside the surface.
type Renderer interface {
	ReadTriangles(t []r3.Triangle) (int, error)
}
