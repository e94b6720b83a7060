// Command vdbridge builds the C shared library exposing level set
// conversion to foreign hosts:
//
//	go build -buildmode=c-shared -o libvdbridge.so ./cmd/vdbridge
//
// Grids are returned as non-zero uintptr_t handles and released with
// vdb_grid_free. Buffers are allocated with malloc and must be released
// with the matching _free function. Functions returning int report 1 on
// success and 0 on failure leaving out parameters untouched.
//
// Logging goes to stderr at the level in VDBRIDGE_LOG_LEVEL, or nowhere if
// it is unset. VDBRIDGE_LOG_FILE additionally writes a rotating JSON log.
package main

/*
#include <stdint.h>
*/
import "C"

import (
	"os"
	"sync"
	"unsafe"

	"github.com/soypat/levelset"
	"github.com/soypat/levelset/bridge"
	"github.com/soypat/levelset/internal/cheap"
	"github.com/soypat/levelset/internal/logger"
)

var (
	grids    = newHandleTable()
	initOnce sync.Once
)

func init() {
	// Buffers crossing the boundary must live outside the Go heap even if
	// the host never calls vdb_init.
	bridge.SetDefault(bridge.New(bridge.WithAllocator(cheap.Default)))
}

func setup() {
	level, file := os.Getenv("VDBRIDGE_LOG_LEVEL"), os.Getenv("VDBRIDGE_LOG_FILE")
	if level != "" || file != "" {
		if err := logger.Init(level, file); err != nil {
			os.Stderr.WriteString("vdbridge: " + err.Error() + "\n")
		}
	}
	levelset.Init()
	bridge.SetDefault(bridge.New(
		bridge.WithAllocator(cheap.Default),
		bridge.WithLogger(logger.Named("bridge")),
	))
}

//export vdb_init
func vdb_init() {
	defer catch("vdb_init", func() {})
	initOnce.Do(setup)
}

//export create_from_obj
func create_from_obj(path *C.char, voxelSize, scale C.float) (h C.uintptr_t) {
	defer catch("create_from_obj", func() { h = 0 })
	if path == nil {
		return 0
	}
	g, err := bridge.VoxelizeFromFile(C.GoString(path), float64(voxelSize), float64(scale))
	if err != nil {
		logFailure("create_from_obj", err)
		return 0
	}
	return C.uintptr_t(grids.add(g))
}

//export vdb_grid_free
func vdb_grid_free(h C.uintptr_t) {
	defer catch("vdb_grid_free", func() {})
	grids.remove(uintptr(h))
}

//export vdb_mesh_from_grid
func vdb_mesh_from_grid(h C.uintptr_t, isovalue, adaptivity C.float,
	outVertices **C.float, outVertexCount *C.int,
	outIndices **C.int, outIndexCount *C.int) (ok C.int) {
	defer catch("vdb_mesh_from_grid", func() { ok = 0 })
	if outVertices == nil || outVertexCount == nil || outIndices == nil || outIndexCount == nil {
		return 0
	}
	g := grids.get(uintptr(h))
	if g == nil {
		return 0
	}
	mb, err := bridge.ExtractSurface(g, float64(isovalue), float64(adaptivity))
	if err != nil {
		logFailure("vdb_mesh_from_grid", err)
		return 0
	}
	nv, ni := mb.VertexCount(), mb.IndexCount()
	verts, idx := mb.Vertices.Detach(), mb.Indices.Detach()
	*outVertices = (*C.float)(unsafe.Pointer(unsafe.SliceData(verts)))
	*outVertexCount = C.int(nv)
	*outIndices = (*C.int)(unsafe.Pointer(unsafe.SliceData(idx)))
	*outIndexCount = C.int(ni)
	return 1
}

//export vdb_mesh_free
func vdb_mesh_free(vertices *C.float, indices *C.int) {
	defer catch("vdb_mesh_free", func() {})
	cheap.Default.Free(unsafe.Pointer(vertices))
	cheap.Default.Free(unsafe.Pointer(indices))
}

//export vdb_voxel_size
func vdb_voxel_size(h C.uintptr_t) (vs C.float) {
	defer catch("vdb_voxel_size", func() { vs = 0 })
	return C.float(bridge.VoxelSize(grids.get(uintptr(h))))
}

//export vdb_active_voxel_centers
func vdb_active_voxel_centers(h C.uintptr_t, outPositions **C.float, outCount *C.int) (ok C.int) {
	defer catch("vdb_active_voxel_centers", func() { ok = 0 })
	if outPositions == nil || outCount == nil {
		return 0
	}
	g := grids.get(uintptr(h))
	if g == nil {
		return 0
	}
	buf, err := bridge.ExportActiveCenters(g)
	if err != nil {
		logFailure("vdb_active_voxel_centers", err)
		return 0
	}
	n := buf.Count()
	*outPositions = (*C.float)(unsafe.Pointer(unsafe.SliceData(buf.Detach())))
	*outCount = C.int(n)
	return 1
}

//export vdb_active_voxel_centers_free
func vdb_active_voxel_centers_free(positions *C.float) {
	defer catch("vdb_active_voxel_centers_free", func() {})
	cheap.Default.Free(unsafe.Pointer(positions))
}

//export vdb_active_voxel_coords
func vdb_active_voxel_coords(h C.uintptr_t, outCoords **C.int, outCount *C.int) (ok C.int) {
	defer catch("vdb_active_voxel_coords", func() { ok = 0 })
	if outCoords == nil || outCount == nil {
		return 0
	}
	g := grids.get(uintptr(h))
	if g == nil {
		return 0
	}
	buf, err := bridge.ExportActiveCoords(g)
	if err != nil {
		logFailure("vdb_active_voxel_coords", err)
		return 0
	}
	n := buf.Count()
	*outCoords = (*C.int)(unsafe.Pointer(unsafe.SliceData(buf.Detach())))
	*outCount = C.int(n)
	return 1
}

//export vdb_active_voxel_coords_free
func vdb_active_voxel_coords_free(coords *C.int) {
	defer catch("vdb_active_voxel_coords_free", func() {})
	cheap.Default.Free(unsafe.Pointer(coords))
}

func main() {}
