package bridge

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/levelset/render"
	"go.uber.org/zap"
)

// ExtractSurface extracts the isovalue level of g as a triangle mesh.
// Quads are split along their first diagonal, see SplitQuads.
// Adaptivity within [0, 1] controls simplification of flat regions.
// On failure no buffer is left allocated.
func (b *Bridge) ExtractSurface(g *Grid, isovalue, adaptivity float64) (*MeshBuffers, error) {
	lvl, err := g.level()
	if err != nil {
		return nil, err
	}
	m, err := render.VolumeToMesh(lvl, isovalue, adaptivity)
	if err != nil {
		b.log.Debug("extraction failed", zap.Float64("isovalue", isovalue), zap.Float64("adaptivity", adaptivity), zap.Error(err))
		return nil, err
	}
	ntri := m.TriangleCount()
	if len(m.Points) == 0 || ntri == 0 {
		b.log.Debug("extraction empty", zap.Float64("isovalue", isovalue), zap.Int("count", len(m.Points)))
		return nil, ErrEmptyMesh
	}
	if len(m.Points) > b.maxCount || ntri > b.maxCount/3 {
		return nil, fmt.Errorf("%w: %d vertices, %d triangles", ErrCapacity, len(m.Points), ntri)
	}

	verts, err := b.alloc.AllocFloat32(3 * len(m.Points))
	if err != nil {
		b.log.Debug("vertex allocation failed", zap.Int("count", len(m.Points)), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrAlloc, err)
	}
	idx, err := b.alloc.AllocInt32(3 * ntri)
	if err != nil {
		b.alloc.FreeFloat32(verts)
		b.log.Debug("index allocation failed", zap.Int("count", ntri), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrAlloc, err)
	}
	for i, p := range m.Points {
		v := [3]float32{float32(p.X), float32(p.Y), float32(p.Z)}
		if !finite3(v) {
			b.alloc.FreeFloat32(verts)
			b.alloc.FreeInt32(idx)
			return nil, fmt.Errorf("%w: vertex %d %v", ErrNonFinite, i, p)
		}
		copy(verts[3*i:], v[:])
	}
	splitQuadsInto(idx, m.Triangles, m.Quads)
	b.log.Debug("extracted",
		zap.Float64("isovalue", isovalue),
		zap.Float64("adaptivity", adaptivity),
		zap.Int("vertices", len(m.Points)),
		zap.Int("triangles", len(m.Triangles)),
		zap.Int("quads", len(m.Quads)),
	)
	return &MeshBuffers{
		Vertices: &FloatBuffer{data: verts, alloc: b.alloc},
		Indices:  &IntBuffer{data: idx, alloc: b.alloc},
	}, nil
}

// SplitQuads flattens triangles followed by quads into one triangle index
// list of length 3*(len(triangles)+2*len(quads)). Every quad (c0,c1,c2,c3)
// becomes the triangles (c0,c1,c2) and (c0,c2,c3).
func SplitQuads(triangles [][3]int, quads [][4]int) []int32 {
	dst := make([]int32, 3*(len(triangles)+2*len(quads)))
	splitQuadsInto(dst, triangles, quads)
	return dst
}

func splitQuadsInto(dst []int32, triangles [][3]int, quads [][4]int) {
	n := 0
	put := func(t [3]int) {
		dst[n], dst[n+1], dst[n+2] = int32(t[0]), int32(t[1]), int32(t[2])
		n += 3
	}
	for _, t := range triangles {
		put(t)
	}
	for _, q := range quads {
		split := render.SplitQuad(q)
		put(split[0])
		put(split[1])
	}
}

func finite3(v [3]float32) bool {
	for _, f := range v {
		if math32.IsNaN(f) || math32.IsInf(f, 0) {
			return false
		}
	}
	return true
}
