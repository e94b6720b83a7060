// Package config handles vdbtool configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// Config holds all tool settings.
type Config struct {
	// Input is the polygon file to voxelize. Ignored when a primitive is set.
	Input     string          `yaml:"input"`
	Primitive PrimitiveConfig `yaml:"primitive"`
	Voxel     VoxelConfig     `yaml:"voxel"`
	Mesh      MeshConfig      `yaml:"mesh"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// PrimitiveConfig selects a generated solid instead of an input file.
type PrimitiveConfig struct {
	Shape string  `yaml:"shape"` // box, sphere or cylinder
	Size  float64 `yaml:"size"`  // extent along every axis
	Cells int     `yaml:"cells"` // marching cubes cells along the longest axis
}

// VoxelConfig holds voxelization settings.
type VoxelConfig struct {
	Size         float64 `yaml:"size"`
	Scale        float64 `yaml:"scale"`
	ExteriorBand float64 `yaml:"exterior_band"`
}

// MeshConfig holds surface extraction settings.
type MeshConfig struct {
	Isovalue   float64 `yaml:"isovalue"`
	Adaptivity float64 `yaml:"adaptivity"`
}

// OutputConfig holds output file paths. Empty paths are not written.
type OutputConfig struct {
	STL     string `yaml:"stl"`
	OBJ     string `yaml:"obj"`
	Centers string `yaml:"centers"`
	// Config receives the resolved settings of the run.
	Config string `yaml:"config"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Shapes lists the primitive shapes Validate accepts.
var Shapes = []string{"box", "sphere", "cylinder"}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Primitive: PrimitiveConfig{
			Size:  1,
			Cells: 64,
		},
		Voxel: VoxelConfig{
			Size:         0.05,
			Scale:        1,
			ExteriorBand: 3,
		},
		Mesh: MeshConfig{
			Isovalue:   0,
			Adaptivity: 0,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Input == "" && c.Primitive.Shape == "" {
		errs = append(errs, errors.New("no input file or primitive shape"))
	}
	if c.Primitive.Shape != "" {
		if !slices.Contains(Shapes, c.Primitive.Shape) {
			errs = append(errs, fmt.Errorf("unknown primitive shape %q", c.Primitive.Shape))
		}
		if !positive(c.Primitive.Size) {
			errs = append(errs, fmt.Errorf("primitive size must be positive, got %g", c.Primitive.Size))
		}
		if c.Primitive.Cells < 8 {
			errs = append(errs, fmt.Errorf("primitive cells must be at least 8, got %d", c.Primitive.Cells))
		}
	}
	if !positive(c.Voxel.Size) {
		errs = append(errs, fmt.Errorf("voxel size must be positive, got %g", c.Voxel.Size))
	}
	if c.Voxel.Scale == 0 || math.IsNaN(c.Voxel.Scale) || math.IsInf(c.Voxel.Scale, 0) {
		errs = append(errs, fmt.Errorf("scale must be finite and non-zero, got %g", c.Voxel.Scale))
	}
	if !positive(c.Voxel.ExteriorBand) {
		errs = append(errs, fmt.Errorf("exterior band must be positive, got %g", c.Voxel.ExteriorBand))
	}
	if !(c.Mesh.Adaptivity >= 0 && c.Mesh.Adaptivity <= 1) {
		errs = append(errs, fmt.Errorf("adaptivity must be within [0, 1], got %g", c.Mesh.Adaptivity))
	}
	if math.IsNaN(c.Mesh.Isovalue) || math.IsInf(c.Mesh.Isovalue, 0) {
		errs = append(errs, fmt.Errorf("isovalue must be finite, got %g", c.Mesh.Isovalue))
	}
	return errors.Join(errs...)
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
