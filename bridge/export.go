package bridge

import (
	"fmt"

	"github.com/soypat/levelset"
	"go.uber.org/zap"
)

// ExportActiveCenters returns the world space center of every active voxel
// of g as float triples, in the grid's active voxel traversal order.
func (b *Bridge) ExportActiveCenters(g *Grid) (*FloatBuffer, error) {
	lvl, count, err := b.exportCount(g)
	if err != nil {
		return nil, err
	}
	data, err := b.alloc.AllocFloat32(3 * count)
	if err != nil {
		b.log.Debug("center allocation failed", zap.Int("count", count), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrAlloc, err)
	}
	i := 0
	var convErr error
	lvl.ForEachActive(func(c levelset.Coord, _ float32) bool {
		p := lvl.IndexToWorld(c)
		v := [3]float32{float32(p.X), float32(p.Y), float32(p.Z)}
		if !finite3(v) {
			convErr = fmt.Errorf("%w: voxel %v center %v", ErrNonFinite, c, p)
			return false
		}
		copy(data[i:], v[:])
		i += 3
		return true
	})
	if convErr != nil {
		b.alloc.FreeFloat32(data)
		return nil, convErr
	}
	return &FloatBuffer{data: data, alloc: b.alloc}, nil
}

// ExportActiveCoords returns the index coordinate of every active voxel of g
// as int triples, in the same order as ExportActiveCenters.
func (b *Bridge) ExportActiveCoords(g *Grid) (*IntBuffer, error) {
	lvl, count, err := b.exportCount(g)
	if err != nil {
		return nil, err
	}
	data, err := b.alloc.AllocInt32(3 * count)
	if err != nil {
		b.log.Debug("coord allocation failed", zap.Int("count", count), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrAlloc, err)
	}
	i := 0
	lvl.ForEachActive(func(c levelset.Coord, _ float32) bool {
		data[i], data[i+1], data[i+2] = c[0], c[1], c[2]
		i += 3
		return true
	})
	return &IntBuffer{data: data, alloc: b.alloc}, nil
}

func (b *Bridge) exportCount(g *Grid) (*levelset.Grid, int, error) {
	lvl, err := g.level()
	if err != nil {
		return nil, 0, err
	}
	n := lvl.ActiveVoxelCount()
	switch {
	case n == 0:
		return nil, 0, ErrNoActiveVoxels
	case n > uint64(b.maxCount):
		b.log.Debug("active voxel count overflow", zap.Uint64("count", n), zap.Int("max", b.maxCount))
		return nil, 0, fmt.Errorf("%w: %d active voxels", ErrCapacity, n)
	}
	return lvl, int(n), nil
}
