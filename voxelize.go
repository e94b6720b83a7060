package levelset

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/soypat/levelset/internal/d3"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultBandWidth is the default half width of the narrow band in voxels.
const DefaultBandWidth = 3.0

var (
	// ErrNoTriangles is returned when a mesh has no usable triangles.
	ErrNoTriangles = errors.New("mesh has no non-degenerate triangles")
	// ErrBandWidth is returned for non-positive or non-finite band widths.
	ErrBandWidth = errors.New("band width must be positive and finite")
)

// closest records the nearest triangle found so far for a voxel.
type closest struct {
	dist2   float64
	tri     int
	feature d3.Feature
	point   r3.Vec // closest point on the triangle, index space.
}

func (c closest) better(o closest) bool {
	return c.dist2 < o.dist2 || (c.dist2 == o.dist2 && c.tri < o.tri)
}

// pseudoNormals holds the angle weighted pseudo normals used to sign
// distances. See Baerentzen and Aanaes, "Signed distance computation using
// the angle weighted pseudonormal".
type pseudoNormals struct {
	face   []r3.Vec
	vertex []r3.Vec
	edge   map[[2]int]r3.Vec
}

func edgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// MeshToLevelSet converts a triangle mesh with world space points into a
// narrow band signed distance grid. Band widths are in voxels: voxels closer
// than exteriorBand voxels outside the surface or interiorBand voxels inside it
// are active and hold the signed distance in world units.
// Degenerate triangles are skipped. Triangle winding decides the sign:
// counter clockwise faces point outward.
func MeshToLevelSet(ctx context.Context, xform Transform, points []r3.Vec, triangles [][3]int, exteriorBand, interiorBand float64) (*Grid, error) {
	if xform.VoxelSize() <= 0 {
		return nil, ErrInvalidVoxelSize
	}
	for _, b := range [2]float64{exteriorBand, interiorBand} {
		if !(b > 0) || math.IsInf(b, 0) {
			return nil, ErrBandWidth
		}
	}
	// Work in index space where one voxel is one unit.
	pts := make([]r3.Vec, len(points))
	for i, p := range points {
		if !d3.IsFinite(p) {
			return nil, fmt.Errorf("point %d is not finite: %v", i, p)
		}
		pts[i] = xform.WorldToIndex(p)
		if !coordInRange(pts[i].X) || !coordInRange(pts[i].Y) || !coordInRange(pts[i].Z) {
			return nil, fmt.Errorf("point %d outside index range at voxel size %g", i, xform.VoxelSize())
		}
	}
	tris := make([]int, 0, len(triangles))
	for i, t := range triangles {
		for _, v := range t {
			if v < 0 || v >= len(pts) {
				return nil, fmt.Errorf("triangle %d references vertex %d out of %d", i, v, len(pts))
			}
		}
		if (r3.Triangle{pts[t[0]], pts[t[1]], pts[t[2]]}).Normal() != (r3.Vec{}) {
			tris = append(tris, i)
		}
	}
	if len(tris) == 0 {
		return nil, ErrNoTriangles
	}
	normals := computePseudoNormals(pts, triangles, tris)

	band := math.Max(exteriorBand, interiorBand)
	nearest, err := scanBand(ctx, pts, triangles, tris, band)
	if err != nil {
		return nil, err
	}

	vs := xform.VoxelSize()
	exterior := exteriorBand * vs
	interior := interiorBand * vs
	g := NewGrid(xform, float32(exterior))
	g.SetClass(GridClassLevelSet)
	for c, near := range nearest {
		dist := math.Sqrt(near.dist2)
		if dist > 0 && normals.sign(near, triangles[near.tri], c.ToV3()) < 0 {
			dist = -dist
		}
		dist *= vs
		if dist < exterior && dist > -interior {
			g.SetValueOn(c, float32(dist))
		}
	}
	return g, nil
}

func computePseudoNormals(pts []r3.Vec, triangles [][3]int, tris []int) pseudoNormals {
	pn := pseudoNormals{
		face:   make([]r3.Vec, len(triangles)),
		vertex: make([]r3.Vec, len(pts)),
		edge:   make(map[[2]int]r3.Vec),
	}
	for _, i := range tris {
		t := triangles[i]
		tri := r3.Triangle{pts[t[0]], pts[t[1]], pts[t[2]]}
		n := d3.UnitNormal(tri)
		pn.face[i] = n
		for j := range t {
			pn.vertex[t[j]] = r3.Add(pn.vertex[t[j]], r3.Scale(d3.Angle(tri, j), n))
			key := edgeKey(t[j], t[(j+1)%3])
			pn.edge[key] = r3.Add(pn.edge[key], n)
		}
	}
	return pn
}

// sign returns the sign of the distance from p to its closest feature.
func (pn pseudoNormals) sign(near closest, t [3]int, p r3.Vec) float64 {
	var n r3.Vec
	switch {
	case near.feature.IsVertex():
		n = pn.vertex[t[near.feature-d3.FeatureV0]]
	case near.feature.IsEdge():
		j := int(near.feature - d3.FeatureE0)
		n = pn.edge[edgeKey(t[j], t[(j+1)%3])]
	default:
		n = pn.face[near.tri]
	}
	return r3.Dot(n, r3.Sub(p, near.point))
}

// scanBand finds the nearest triangle for every voxel within band voxels of
// the mesh. Triangles are split between workers and the partial results are
// merged keeping the closest triangle, so the result does not depend on
// scheduling.
func scanBand(ctx context.Context, pts []r3.Vec, triangles [][3]int, tris []int, band float64) (map[Coord]closest, error) {
	workers := runtime.GOMAXPROCS(0)
	if workers > len(tris) {
		workers = len(tris)
	}
	partial := make([]map[Coord]closest, workers)
	grp, ctx := errgroup.WithContext(ctx)
	chunk := (len(tris) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > len(tris) {
			end = len(tris)
		}
		grp.Go(func() error {
			local := make(map[Coord]closest)
			for n, i := range tris[start:end] {
				if n%64 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				t := triangles[i]
				rasterizeTriangle(local, r3.Triangle{pts[t[0]], pts[t[1]], pts[t[2]]}, i, band)
			}
			partial[w] = local
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	merged := partial[0]
	for _, p := range partial[1:] {
		for c, near := range p {
			if got, ok := merged[c]; !ok || near.better(got) {
				merged[c] = near
			}
		}
	}
	return merged, nil
}

// rasterizeTriangle visits every voxel of the triangle's band padded bounds
// and records the triangle where it is the closest seen so far.
func rasterizeTriangle(dst map[Coord]closest, tri r3.Triangle, idx int, band float64) {
	bb := d3.TriangleBounds(tri).Pad(band)
	lo := d3.CeilElem(bb.Min)
	hi := d3.FloorElem(bb.Max)
	band2 := band * band
	for x := lo.X; x <= hi.X; x++ {
		for y := lo.Y; y <= hi.Y; y++ {
			for z := lo.Z; z <= hi.Z; z++ {
				p := r3.Vec{X: x, Y: y, Z: z}
				q, feat := d3.Closest(tri, p)
				d2 := r3.Norm2(r3.Sub(p, q))
				if d2 >= band2 {
					continue
				}
				c := Coord{int32(x), int32(y), int32(z)}
				near := closest{dist2: d2, tri: idx, feature: feat, point: q}
				if got, ok := dst[c]; !ok || near.better(got) {
					dst[c] = near
				}
			}
		}
	}
}
