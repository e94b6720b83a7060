package levelset

import (
	"math/bits"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// Leaf node layout. Each leaf covers an 8³ block of voxels and stores one
// value per voxel plus a bitmask of which voxels are active.
const (
	leafLog2Dim = 3
	leafDim     = 1 << leafLog2Dim
	leafMask    = leafDim - 1
	leafVoxels  = leafDim * leafDim * leafDim
	maskWords   = leafVoxels / 64
)

// GridClass describes how grid values should be interpreted.
type GridClass int

const (
	// GridClassUnknown grids carry no interpretation of their values.
	GridClassUnknown GridClass = iota
	// GridClassLevelSet grids store signed distances in world units,
	// negative inside the surface.
	GridClassLevelSet
)

func (c GridClass) String() string {
	switch c {
	case GridClassLevelSet:
		return "level set"
	}
	return "unknown"
}

type leafNode struct {
	origin Coord
	mask   [maskWords]uint64
	values [leafVoxels]float32
}

func newLeaf(origin Coord, background float32) *leafNode {
	l := &leafNode{origin: origin}
	for i := range l.values {
		l.values[i] = background
	}
	return l
}

func (l *leafNode) isOn(off int) bool {
	return l.mask[off>>6]&(1<<(off&63)) != 0
}

// setOn activates off and reports whether it was previously inactive.
func (l *leafNode) setOn(off int) bool {
	was := l.isOn(off)
	l.mask[off>>6] |= 1 << (off & 63)
	return !was
}

// setOff deactivates off and reports whether it was previously active.
func (l *leafNode) setOff(off int) bool {
	was := l.isOn(off)
	l.mask[off>>6] &^= 1 << (off & 63)
	return was
}

func (l *leafNode) onCount() int {
	n := 0
	for _, w := range l.mask {
		n += bits.OnesCount64(w)
	}
	return n
}

// coordAt returns the global coordinate of leaf offset off.
func (l *leafNode) coordAt(off int) Coord {
	return Coord{
		l.origin[0] + int32(off>>(2*leafLog2Dim)),
		l.origin[1] + int32((off>>leafLog2Dim)&leafMask),
		l.origin[2] + int32(off&leafMask),
	}
}

// Grid is a sparse voxel grid of float32 values. Voxels that were never
// written read back as the background value.
//
// A Grid is not safe for concurrent mutation. Concurrent reads are safe
// once construction is complete.
type Grid struct {
	name       string
	class      GridClass
	xform      Transform
	background float32
	leaves     map[Coord]*leafNode
	active     uint64
}

// NewGrid returns an empty grid using xform to map index space to world space.
func NewGrid(xform Transform, background float32) *Grid {
	return &Grid{
		xform:      xform,
		background: background,
		leaves:     make(map[Coord]*leafNode),
	}
}

// Name returns the grid name.
func (g *Grid) Name() string { return g.name }

// SetName sets the grid name.
func (g *Grid) SetName(name string) { g.name = name }

// Class returns the grid class.
func (g *Grid) Class() GridClass { return g.class }

// SetClass sets the grid class.
func (g *Grid) SetClass(c GridClass) { g.class = c }

// Transform returns the index to world transform of the grid.
func (g *Grid) Transform() Transform { return g.xform }

// VoxelSize returns the size of a voxel in world units.
func (g *Grid) VoxelSize() float64 { return g.xform.VoxelSize() }

// Background returns the value of voxels that were never written.
func (g *Grid) Background() float32 { return g.background }

// IndexToWorld returns the world space center of voxel c.
func (g *Grid) IndexToWorld(c Coord) r3.Vec { return g.xform.IndexToWorld(c) }

// Value returns the value stored at c and whether c is active.
func (g *Grid) Value(c Coord) (float32, bool) {
	l := g.leaves[c.leafOrigin()]
	if l == nil {
		return g.background, false
	}
	off := c.leafOffset()
	return l.values[off], l.isOn(off)
}

// IsActive reports whether voxel c is active.
func (g *Grid) IsActive(c Coord) bool {
	l := g.leaves[c.leafOrigin()]
	return l != nil && l.isOn(c.leafOffset())
}

// SetValueOn stores v at c and marks the voxel active.
func (g *Grid) SetValueOn(c Coord, v float32) {
	l := g.leaf(c)
	off := c.leafOffset()
	l.values[off] = v
	if l.setOn(off) {
		g.active++
	}
}

// SetValueOff stores v at c and marks the voxel inactive.
func (g *Grid) SetValueOff(c Coord, v float32) {
	l := g.leaves[c.leafOrigin()]
	if l == nil {
		if v == g.background {
			return
		}
		l = g.leaf(c)
	}
	off := c.leafOffset()
	l.values[off] = v
	if l.setOff(off) {
		g.active--
	}
}

func (g *Grid) leaf(c Coord) *leafNode {
	origin := c.leafOrigin()
	l := g.leaves[origin]
	if l == nil {
		l = newLeaf(origin, g.background)
		g.leaves[origin] = l
	}
	return l
}

// ActiveVoxelCount returns the number of active voxels in the grid.
func (g *Grid) ActiveVoxelCount() uint64 { return g.active }

// LeafCount returns the number of allocated 8³ leaf blocks.
func (g *Grid) LeafCount() int { return len(g.leaves) }

// sortedLeaves returns leaf nodes ordered by origin.
func (g *Grid) sortedLeaves() []*leafNode {
	leaves := make([]*leafNode, 0, len(g.leaves))
	for _, l := range g.leaves {
		leaves = append(leaves, l)
	}
	sort.Slice(leaves, func(i, j int) bool {
		return leaves[i].origin.Less(leaves[j].origin)
	})
	return leaves
}

// ForEachActive calls fn for every active voxel. Leaves are visited in
// ascending origin order and voxels inside a leaf by linear offset, so
// the order is stable for a given grid. Iteration stops if fn returns false.
func (g *Grid) ForEachActive(fn func(c Coord, v float32) bool) {
	for _, l := range g.sortedLeaves() {
		for w, word := range l.mask {
			for word != 0 {
				bit := bits.TrailingZeros64(word)
				word &^= 1 << bit
				off := w*64 + bit
				if !fn(l.coordAt(off), l.values[off]) {
					return
				}
			}
		}
	}
}

// ActiveBounds returns the inclusive index space bounds of all active
// voxels. ok is false if the grid has no active voxels.
func (g *Grid) ActiveBounds() (min, max Coord, ok bool) {
	g.ForEachActive(func(c Coord, _ float32) bool {
		if !ok {
			min, max, ok = c, c, true
			return true
		}
		for i := range c {
			if c[i] < min[i] {
				min[i] = c[i]
			}
			if c[i] > max[i] {
				max[i] = c[i]
			}
		}
		return true
	})
	return min, max, ok
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	c := &Grid{
		name:       g.name,
		class:      g.class,
		xform:      g.xform,
		background: g.background,
		leaves:     make(map[Coord]*leafNode, len(g.leaves)),
		active:     g.active,
	}
	for origin, l := range g.leaves {
		cp := *l
		c.leaves[origin] = &cp
	}
	return c
}
