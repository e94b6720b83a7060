package main

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/soypat/levelset/bridge"
	"github.com/soypat/levelset/internal/config"
	"github.com/soypat/levelset/internal/logger"
	"github.com/soypat/levelset/internal/primitive"
	"github.com/soypat/levelset/objfile"
	"github.com/soypat/levelset/render"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

func run(cfg *config.Config) error {
	b := bridge.New(
		bridge.WithLogger(logger.Named("bridge")),
		bridge.WithExteriorBand(cfg.Voxel.ExteriorBand),
	)
	if cfg.Output.Config != "" {
		if err := cfg.SaveTo(cfg.Output.Config); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		logger.Debug("saved configuration", zap.String("path", cfg.Output.Config))
	}
	start := time.Now()
	g, ref, err := voxelize(b, cfg)
	if err != nil {
		return err
	}
	defer g.Destroy()
	lvl, err := g.Level()
	if err != nil {
		return err
	}
	logger.Info("voxelized",
		zap.String("name", lvl.Name()),
		zap.Float32("voxel_size", g.VoxelSize()),
		zap.Uint64("active_voxels", g.ActiveVoxelCount()),
		zap.Int("leaves", lvl.LeafCount()),
		zap.Duration("elapsed", time.Since(start)),
	)

	if cfg.Output.STL != "" {
		if err := writeSurface(g, cfg, ref); err != nil {
			return err
		}
	}
	if cfg.Output.Centers != "" {
		if err := writeCenters(cfg.Output.Centers, g); err != nil {
			return err
		}
	}
	return nil
}

// voxelize builds the grid from the configured source. ref holds the source
// vertices when they are known, for measuring surface deviation.
func voxelize(b *bridge.Bridge, cfg *config.Config) (g *bridge.Grid, ref []r3.Vec, err error) {
	if cfg.Primitive.Shape == "" {
		g, err = b.VoxelizeFromFile(cfg.Input, cfg.Voxel.Size, cfg.Voxel.Scale)
		if err != nil {
			return nil, nil, fmt.Errorf("voxelize %s: %w", cfg.Input, err)
		}
		return g, nil, nil
	}
	m, err := primitive.Mesh(cfg.Primitive.Shape, cfg.Primitive.Size, cfg.Primitive.Cells)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("generated primitive",
		zap.String("shape", cfg.Primitive.Shape),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("triangles", len(m.Triangles)),
	)
	if cfg.Output.OBJ != "" {
		if err := writeOBJ(cfg.Output.OBJ, m); err != nil {
			return nil, nil, err
		}
	}
	g, err = b.FromMesh(m.Vertices, m.Triangles, cfg.Voxel.Size)
	if err != nil {
		return nil, nil, fmt.Errorf("voxelize %s: %w", cfg.Primitive.Shape, err)
	}
	return g, m.Vertices, nil
}

func writeSurface(g *bridge.Grid, cfg *config.Config, ref []r3.Vec) error {
	bm, err := g.ToMesh(cfg.Mesh.Isovalue, cfg.Mesh.Adaptivity)
	if err != nil {
		return fmt.Errorf("extract surface: %w", err)
	}
	m := renderMesh(bm)
	fields := []zap.Field{
		zap.Int("vertices", len(m.Points)),
		zap.Int("triangles", m.TriangleCount()),
	}
	if ref != nil {
		fields = append(fields, zap.Float64("deviation", render.Deviation(ref, m)))
	}
	logger.Info("extracted surface", fields...)
	if err := render.CreateSTL(cfg.Output.STL, render.NewMeshRenderer(m)); err != nil {
		return fmt.Errorf("write %s: %w", cfg.Output.STL, err)
	}
	return nil
}

func renderMesh(bm bridge.Mesh) render.Mesh {
	m := render.Mesh{
		Points:    make([]r3.Vec, len(bm.Positions)),
		Triangles: make([][3]int, len(bm.Indices)/3),
	}
	for i, p := range bm.Positions {
		m.Points[i] = r3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
	}
	for i := range m.Triangles {
		m.Triangles[i] = [3]int{int(bm.Indices[3*i]), int(bm.Indices[3*i+1]), int(bm.Indices[3*i+2])}
	}
	return m
}

func writeOBJ(path string, m objfile.Mesh) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := objfile.Encode(fp, m); err != nil {
		fp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return fp.Close()
}

// writeCenters writes one line per active voxel: its index coordinate
// followed by its world space center.
func writeCenters(path string, g *bridge.Grid) error {
	centers, err := bridge.ExportActiveCenters(g)
	if err != nil {
		return err
	}
	defer centers.Release()
	coords, err := bridge.ExportActiveCoords(g)
	if err != nil {
		return err
	}
	defer coords.Release()

	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fp.Close()
	w := bufio.NewWriter(fp)
	c, ijk := centers.Data(), coords.Data()
	for i := 0; i < centers.Count(); i++ {
		fmt.Fprintf(w, "%d %d %d %g %g %g\n", ijk[3*i], ijk[3*i+1], ijk[3*i+2], c[3*i], c[3*i+1], c[3*i+2])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	logger.Info("wrote active voxel centers", zap.String("path", path), zap.Int("count", centers.Count()))
	return fp.Close()
}
