package bridge

import (
	"context"
	"fmt"
	"io"
	"math"
	"path/filepath"

	"github.com/soypat/levelset"
	"github.com/soypat/levelset/objfile"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

// VoxelizeFromFile parses the polygon file at path, scales every vertex by
// scale and converts the mesh to a level set with voxelSize world units per
// voxel.
func (b *Bridge) VoxelizeFromFile(path string, voxelSize, scale float64) (*Grid, error) {
	if err := checkVoxelize(voxelSize, scale); err != nil {
		b.log.Debug("voxelize rejected", zap.String("path", path), zap.Float64("voxel_size", voxelSize), zap.Error(err))
		return nil, err
	}
	m, err := objfile.ParseFile(path, scale)
	if err != nil {
		b.log.Debug("parse failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	b.logParse(path, m)
	g, err := b.fromMesh(m.Vertices, m.Triangles, voxelSize)
	if err != nil {
		b.log.Debug("voxelize failed", zap.String("path", path), zap.Float64("voxel_size", voxelSize), zap.Error(err))
		return nil, err
	}
	if lvl, _ := g.level(); lvl != nil {
		lvl.SetName(filepath.Base(path))
	}
	return g, nil
}

// Voxelize is like VoxelizeFromFile but parses polygon text from r.
func (b *Bridge) Voxelize(r io.Reader, voxelSize, scale float64) (*Grid, error) {
	if err := checkVoxelize(voxelSize, scale); err != nil {
		return nil, err
	}
	m, err := objfile.Parse(r, scale)
	if err != nil {
		b.log.Debug("parse failed", zap.Error(err))
		return nil, err
	}
	b.logParse("", m)
	return b.fromMesh(m.Vertices, m.Triangles, voxelSize)
}

// FromMesh converts a world space triangle mesh to a level set grid.
func (b *Bridge) FromMesh(points []r3.Vec, triangles [][3]int, voxelSize float64) (*Grid, error) {
	if err := checkVoxelize(voxelSize, 1); err != nil {
		return nil, err
	}
	if len(points) == 0 || len(triangles) == 0 {
		return nil, ErrEmptyGeometry
	}
	return b.fromMesh(points, triangles, voxelSize)
}

func (b *Bridge) fromMesh(points []r3.Vec, triangles [][3]int, voxelSize float64) (*Grid, error) {
	levelset.Init()
	xform, err := levelset.NewLinearTransform(voxelSize)
	if err != nil {
		return nil, err
	}
	lvl, err := levelset.MeshToLevelSet(context.Background(), xform, points, triangles, b.exterior, levelset.DefaultBandWidth)
	if err != nil {
		return nil, fmt.Errorf("mesh to level set: %w", err)
	}
	b.log.Debug("voxelized",
		zap.Float64("voxel_size", voxelSize),
		zap.Int("triangles", len(triangles)),
		zap.Uint64("count", lvl.ActiveVoxelCount()),
		zap.Int("leaves", lvl.LeafCount()),
	)
	return newGrid(b, lvl), nil
}

func (b *Bridge) logParse(path string, m objfile.Mesh) {
	b.log.Debug("parsed polygon source",
		zap.String("path", path),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("triangles", len(m.Triangles)),
		zap.Int("skipped_vertices", m.Stats.SkippedVertices),
		zap.Int("dropped_corners", m.Stats.DroppedCorners),
		zap.Int("dropped_faces", m.Stats.DroppedFaces),
	)
}

func checkVoxelize(voxelSize, scale float64) error {
	if !(voxelSize > 0) || math.IsInf(voxelSize, 0) {
		return ErrInvalidVoxelSize
	}
	if scale == 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return ErrInvalidScale
	}
	return nil
}
