package levelset

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrInvalidVoxelSize is returned when a transform is built from a
// non-positive or non-finite voxel size.
var ErrInvalidVoxelSize = errors.New("voxel size must be positive and finite")

// Transform is a uniform, axis aligned map between index space and
// world space:
//
//	world = origin + voxelSize*index
//
// The zero value is not usable, use NewLinearTransform or NewTransform.
type Transform struct {
	voxelSize float64
	origin    r3.Vec
}

// NewLinearTransform returns a transform with voxelSize world units per voxel
// on every axis and voxel centers at world = voxelSize*index.
func NewLinearTransform(voxelSize float64) (Transform, error) {
	return NewTransform(voxelSize, r3.Vec{})
}

// NewTransform returns a uniform transform with the given voxel size whose
// index origin maps to origin in world space.
func NewTransform(voxelSize float64, origin r3.Vec) (Transform, error) {
	if !(voxelSize > 0) || math.IsInf(voxelSize, 0) {
		return Transform{}, ErrInvalidVoxelSize
	}
	return Transform{voxelSize: voxelSize, origin: origin}, nil
}

// VoxelSize returns the size of a voxel in world units.
func (t Transform) VoxelSize() float64 { return t.voxelSize }

// Origin returns the world position of index coordinate (0,0,0).
func (t Transform) Origin() r3.Vec { return t.origin }

// IndexToWorld returns the world space center of voxel c.
func (t Transform) IndexToWorld(c Coord) r3.Vec {
	return t.IndexToWorldVec(c.ToV3())
}

// IndexToWorldVec maps a fractional index space position to world space.
func (t Transform) IndexToWorldVec(v r3.Vec) r3.Vec {
	return r3.Add(t.origin, r3.Scale(t.voxelSize, v))
}

// WorldToIndex maps a world position to fractional index space.
func (t Transform) WorldToIndex(v r3.Vec) r3.Vec {
	return r3.Scale(1/t.voxelSize, r3.Sub(v, t.origin))
}
