package levelset

import (
	"context"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// unitCube returns a closed, outward wound cube spanning [0,size]³.
func unitCube(size float64) ([]r3.Vec, [][3]int) {
	var pts []r3.Vec
	for i := 0; i < 8; i++ {
		pts = append(pts, r3.Vec{
			X: size * float64(i&1),
			Y: size * float64((i>>1)&1),
			Z: size * float64((i>>2)&1),
		})
	}
	quads := [][4]int{
		{0, 2, 3, 1}, {4, 5, 7, 6}, // -z, +z
		{0, 1, 5, 4}, {2, 6, 7, 3}, // -y, +y
		{0, 4, 6, 2}, {1, 3, 7, 5}, // -x, +x
	}
	var tris [][3]int
	for _, q := range quads {
		tris = append(tris, [3]int{q[0], q[1], q[2]}, [3]int{q[0], q[2], q[3]})
	}
	return pts, tris
}

func TestMeshToLevelSetCube(t *testing.T) {
	const vs = 0.1
	xform, _ := NewLinearTransform(vs)
	pts, tris := unitCube(1)
	g, err := MeshToLevelSet(context.Background(), xform, pts, tris, DefaultBandWidth, DefaultBandWidth)
	if err != nil {
		t.Fatal(err)
	}
	if g.Class() != GridClassLevelSet {
		t.Errorf("grid class got %v", g.Class())
	}
	if g.Background() != float32(3*vs) {
		t.Errorf("background got %v", g.Background())
	}
	for _, test := range []struct {
		c    Coord
		want float64
	}{
		{c: Coord{5, 5, 1}, want: -0.1},  // just inside the bottom face.
		{c: Coord{5, 5, -1}, want: 0.1},  // just outside the bottom face.
		{c: Coord{5, 12, 5}, want: 0.2},  // outside +y.
		{c: Coord{9, 5, 5}, want: -0.1},  // inside +x.
		{c: Coord{-1, -1, 5}, want: math.Sqrt2 * 0.1}, // outside an edge.
		{c: Coord{5, 5, 0}, want: 0},
	} {
		v, on := g.Value(test.c)
		if !on {
			t.Errorf("voxel %v not active", test.c)
			continue
		}
		if math.Abs(float64(v)-test.want) > 1e-6 {
			t.Errorf("voxel %v got %g, want %g", test.c, v, test.want)
		}
	}
	// Deep inside and far outside the band.
	for _, c := range []Coord{{5, 5, 5}, {5, 5, -3}, {5, 5, 14}} {
		if g.IsActive(c) {
			t.Errorf("voxel %v should be outside the narrow band", c)
		}
	}
	g.ForEachActive(func(c Coord, v float32) bool {
		if v >= float32(3*vs) || v <= float32(-3*vs) {
			t.Fatalf("voxel %v value %g outside band", c, v)
		}
		return true
	})
}

func TestMeshToLevelSetDeterministic(t *testing.T) {
	xform, _ := NewLinearTransform(0.05)
	pts, tris := unitCube(0.6)
	a, err := MeshToLevelSet(context.Background(), xform, pts, tris, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	b, err := MeshToLevelSet(context.Background(), xform, pts, tris, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if a.ActiveVoxelCount() != b.ActiveVoxelCount() {
		t.Fatalf("active counts differ: %d vs %d", a.ActiveVoxelCount(), b.ActiveVoxelCount())
	}
	a.ForEachActive(func(c Coord, v float32) bool {
		if got, on := b.Value(c); !on || got != v {
			t.Fatalf("voxel %v differs: %v vs %v", c, v, got)
		}
		return true
	})
}

func TestMeshToLevelSetErrors(t *testing.T) {
	xform, _ := NewLinearTransform(0.1)
	pts, tris := unitCube(1)
	ctx := context.Background()
	if _, err := MeshToLevelSet(ctx, Transform{}, pts, tris, 3, 3); !errors.Is(err, ErrInvalidVoxelSize) {
		t.Errorf("zero transform: got %v", err)
	}
	if _, err := MeshToLevelSet(ctx, xform, pts, tris, 0, 3); !errors.Is(err, ErrBandWidth) {
		t.Errorf("zero band: got %v", err)
	}
	if _, err := MeshToLevelSet(ctx, xform, pts, [][3]int{{0, 1, 8}}, 3, 3); err == nil {
		t.Error("expected out of range vertex error")
	}
	if _, err := MeshToLevelSet(ctx, xform, pts, [][3]int{{0, 0, 1}}, 3, 3); !errors.Is(err, ErrNoTriangles) {
		t.Errorf("degenerate triangle: got %v", err)
	}
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := MeshToLevelSet(cancelled, xform, pts, tris, 3, 3); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled context: got %v", err)
	}
}
