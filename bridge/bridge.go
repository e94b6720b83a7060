// Package bridge converts triangle meshes into narrow band level set grids
// and back, handing results out as owned flat buffers suitable for a
// foreign caller.
//
// Every buffer returned by a Bridge is owned by the caller and must be
// released exactly once with its Release method. Releasing a nil or
// released buffer is a no-op. Grids are never mutated after construction
// and may be read from many goroutines at once.
package bridge

import (
	"errors"
	"io"
	"math"
	"sync/atomic"

	"github.com/soypat/levelset"
	"github.com/soypat/levelset/objfile"
	"go.uber.org/zap"
)

// ExteriorBandWidth is the half width in voxels of the narrow band outside
// the surface used when voxelizing.
const ExteriorBandWidth = 3.0

var (
	ErrNilGrid          = errors.New("bridge: nil grid")
	ErrReleasedGrid     = errors.New("bridge: grid already destroyed")
	ErrEmptyMesh        = errors.New("bridge: extraction yielded no vertices or no triangles")
	ErrNoActiveVoxels   = errors.New("bridge: grid has no active voxels")
	ErrCapacity         = errors.New("bridge: element count exceeds buffer count range")
	ErrAlloc            = errors.New("bridge: buffer allocation failed")
	ErrInvalidScale     = errors.New("bridge: scale must be finite and non-zero")
	ErrNegativeIndex    = errors.New("bridge: negative vertex index")
	ErrNonFinite        = errors.New("bridge: value not representable as finite float32")
	ErrInvalidVoxelSize = levelset.ErrInvalidVoxelSize
	ErrEmptyGeometry    = objfile.ErrEmptyGeometry
	ErrUnreadable       = objfile.ErrUnreadable
)

// Bridge performs conversions and allocates output buffers through its
// Allocator. The zero value is not usable, use New.
type Bridge struct {
	alloc Allocator
	log   *zap.Logger
	// exterior is the exterior band half width in voxels.
	exterior float64
	// maxCount is the largest element count a single buffer may describe.
	maxCount int
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithAllocator sets the allocator used for output buffers.
func WithAllocator(a Allocator) Option {
	return func(b *Bridge) { b.alloc = a }
}

// WithLogger sets the logger failures are reported to at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(b *Bridge) { b.log = l }
}

// WithExteriorBand sets the exterior band half width in voxels. Values that
// are not positive and finite keep ExteriorBandWidth.
func WithExteriorBand(voxels float64) Option {
	return func(b *Bridge) {
		if voxels > 0 && !math.IsInf(voxels, 0) {
			b.exterior = voxels
		}
	}
}

// New returns a Bridge allocating from the Go heap and logging nothing
// unless configured otherwise.
func New(opts ...Option) *Bridge {
	b := &Bridge{
		alloc:    HeapAllocator{},
		log:      zap.NewNop(),
		exterior: ExteriorBandWidth,
		maxCount: math.MaxInt32,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.alloc == nil {
		b.alloc = HeapAllocator{}
	}
	if b.log == nil {
		b.log = zap.NewNop()
	}
	return b
}

// std is the Bridge behind the package level functions.
var std atomic.Pointer[Bridge]

func init() { std.Store(New()) }

// SetDefault replaces the Bridge used by the package level functions.
// Calls already running keep the Bridge they started with.
func SetDefault(b *Bridge) {
	if b != nil {
		std.Store(b)
	}
}

// VoxelizeFromFile voxelizes the polygon file at path with the default Bridge.
func VoxelizeFromFile(path string, voxelSize, scale float64) (*Grid, error) {
	return std.Load().VoxelizeFromFile(path, voxelSize, scale)
}

// Voxelize voxelizes polygon text read from r with the default Bridge.
func Voxelize(r io.Reader, voxelSize, scale float64) (*Grid, error) {
	return std.Load().Voxelize(r, voxelSize, scale)
}

// ExtractSurface extracts the isovalue surface of g with the default Bridge.
func ExtractSurface(g *Grid, isovalue, adaptivity float64) (*MeshBuffers, error) {
	return std.Load().ExtractSurface(g, isovalue, adaptivity)
}

// ExportActiveCenters exports world space voxel centers with the default Bridge.
func ExportActiveCenters(g *Grid) (*FloatBuffer, error) {
	return std.Load().ExportActiveCenters(g)
}

// ExportActiveCoords exports voxel index coordinates with the default Bridge.
func ExportActiveCoords(g *Grid) (*IntBuffer, error) {
	return std.Load().ExportActiveCoords(g)
}

// VoxelSize returns the voxel size of g or 0 if g is nil or destroyed.
func VoxelSize(g *Grid) float32 {
	lvl, err := g.level()
	if err != nil {
		return 0
	}
	return float32(lvl.VoxelSize())
}

// ReleaseMeshBuffers releases both buffers of m.
func ReleaseMeshBuffers(m *MeshBuffers) { m.Release() }

// ReleasePositionBuffer releases a buffer of voxel centers.
func ReleasePositionBuffer(b *FloatBuffer) { b.Release() }

// ReleaseCoordBuffer releases a buffer of voxel coordinates.
func ReleaseCoordBuffer(b *IntBuffer) { b.Release() }
