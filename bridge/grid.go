package bridge

import (
	"fmt"
	"sync/atomic"

	"github.com/soypat/levelset"
)

// Grid is a handle to a level set grid produced by a Bridge.
// Its contents never change. Destroy drops the handle's reference.
type Grid struct {
	b   *Bridge
	lvl atomic.Pointer[levelset.Grid]
}

func newGrid(b *Bridge, lvl *levelset.Grid) *Grid {
	g := &Grid{b: b}
	g.lvl.Store(lvl)
	return g
}

// Wrap returns a handle to lvl owned by the default Bridge.
func Wrap(lvl *levelset.Grid) (*Grid, error) {
	return std.Load().Wrap(lvl)
}

// Wrap returns a handle to lvl. The caller must not modify lvl afterwards.
func (b *Bridge) Wrap(lvl *levelset.Grid) (*Grid, error) {
	if lvl == nil {
		return nil, ErrNilGrid
	}
	return newGrid(b, lvl), nil
}

func (g *Grid) level() (*levelset.Grid, error) {
	if g == nil {
		return nil, ErrNilGrid
	}
	lvl := g.lvl.Load()
	if lvl == nil {
		return nil, ErrReleasedGrid
	}
	return lvl, nil
}

// Level returns the underlying grid.
func (g *Grid) Level() (*levelset.Grid, error) { return g.level() }

// Destroy releases the grid. Further operations on g fail with
// ErrReleasedGrid. Destroying a nil or destroyed grid does nothing.
func (g *Grid) Destroy() {
	if g == nil {
		return
	}
	g.lvl.Store(nil)
}

// VoxelSize returns the voxel size of the grid or 0 if destroyed.
func (g *Grid) VoxelSize() float32 { return VoxelSize(g) }

// ActiveVoxelCount returns the number of active voxels or 0 if destroyed.
func (g *Grid) ActiveVoxelCount() uint64 {
	lvl, err := g.level()
	if err != nil {
		return 0
	}
	return lvl.ActiveVoxelCount()
}

func (g *Grid) bridge() *Bridge {
	if g.b == nil {
		return std.Load()
	}
	return g.b
}

// Mesh is a copied extraction result owned by the Go heap.
type Mesh struct {
	Positions [][3]float32
	Indices   []uint32
}

// ToMesh extracts the isovalue surface and copies it into Go memory,
// releasing the intermediate buffers.
func (g *Grid) ToMesh(isovalue, adaptivity float64) (Mesh, error) {
	if _, err := g.level(); err != nil {
		return Mesh{}, err
	}
	mb, err := g.bridge().ExtractSurface(g, isovalue, adaptivity)
	if err != nil {
		return Mesh{}, err
	}
	defer mb.Release()
	verts := mb.Vertices.Data()
	idx := mb.Indices.Data()
	m := Mesh{
		Positions: make([][3]float32, len(verts)/3),
		Indices:   make([]uint32, len(idx)),
	}
	for i := range m.Positions {
		m.Positions[i] = [3]float32{verts[3*i], verts[3*i+1], verts[3*i+2]}
	}
	for i, v := range idx {
		if v < 0 {
			return Mesh{}, fmt.Errorf("%w: %d at %d", ErrNegativeIndex, v, i)
		}
		m.Indices[i] = uint32(v)
	}
	return m, nil
}

// ActiveVoxelCenters returns a copy of the world space centers of every
// active voxel.
func (g *Grid) ActiveVoxelCenters() ([][3]float32, error) {
	if _, err := g.level(); err != nil {
		return nil, err
	}
	buf, err := g.bridge().ExportActiveCenters(g)
	if err != nil {
		return nil, err
	}
	defer buf.Release()
	data := buf.Data()
	out := make([][3]float32, buf.Count())
	for i := range out {
		out[i] = [3]float32{data[3*i], data[3*i+1], data[3*i+2]}
	}
	return out, nil
}

// ActiveVoxelCoords returns a copy of the index coordinates of every
// active voxel.
func (g *Grid) ActiveVoxelCoords() ([][3]int32, error) {
	if _, err := g.level(); err != nil {
		return nil, err
	}
	buf, err := g.bridge().ExportActiveCoords(g)
	if err != nil {
		return nil, err
	}
	defer buf.Release()
	data := buf.Data()
	out := make([][3]int32, buf.Count())
	for i := range out {
		out[i] = [3]int32{data[3*i], data[3*i+1], data[3*i+2]}
	}
	return out, nil
}
