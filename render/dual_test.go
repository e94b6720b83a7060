package render_test

import (
	"errors"
	"math"
	"testing"

	"github.com/soypat/levelset"
	"github.com/soypat/levelset/internal/d3"
	"github.com/soypat/levelset/render"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestVolumeToMeshSphere(t *testing.T) {
	const (
		radius = 1.0
		vs     = 0.1
	)
	g := sphereGrid(t, radius, vs)
	for _, test := range []struct {
		iso   float64
		wantR float64
	}{
		{iso: 0, wantR: radius},
		{iso: 0.1, wantR: radius + 0.1},
		{iso: -0.1, wantR: radius - 0.1},
	} {
		m, err := render.VolumeToMesh(g, test.iso, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(m.Quads) == 0 || len(m.Triangles) != 0 {
			t.Fatalf("iso %g: want quads only, got %d quads %d triangles", test.iso, len(m.Quads), len(m.Triangles))
		}
		if err := m.Validate(); err != nil {
			t.Fatal(err)
		}
		for i, p := range m.Points {
			if d := math.Abs(r3.Norm(p) - test.wantR); d > vs/2 {
				t.Fatalf("iso %g: point %d at %v is %g off the level set", test.iso, i, p, d)
			}
		}
		tris := m.Triangulate()
		for i, tri := range tris {
			t3 := r3.Triangle{m.Points[tri[0]], m.Points[tri[1]], m.Points[tri[2]]}
			centroid := r3.Scale(1./3, r3.Add(t3[0], r3.Add(t3[1], t3[2])))
			if r3.Dot(t3.Normal(), centroid) < 0 {
				t.Fatalf("iso %g: triangle %d faces inward", test.iso, i)
			}
		}
		// Closed and consistently oriented: every directed edge has a reverse.
		edges := make(map[[2]int]int)
		for _, tri := range tris {
			for j := range tri {
				edges[[2]int{tri[j], tri[(j+1)%3]}]++
			}
		}
		for e, n := range edges {
			if edges[[2]int{e[1], e[0]}] != n {
				t.Fatalf("iso %g: edge %v has %d uses and %d reverse uses", test.iso, e, n, edges[[2]int{e[1], e[0]}])
			}
		}
	}
}

func TestVolumeToMeshDeterministic(t *testing.T) {
	g := sphereGrid(t, 0.7, 0.1)
	a, err := render.VolumeToMesh(g, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	b, err := render.VolumeToMesh(g.Clone(), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Points) != len(b.Points) || len(a.Quads) != len(b.Quads) {
		t.Fatal("extraction not deterministic")
	}
	for i := range a.Quads {
		if a.Quads[i] != b.Quads[i] {
			t.Fatalf("quad %d differs", i)
		}
	}
	for i := range a.Points {
		if a.Points[i] != b.Points[i] {
			t.Fatalf("point %d differs", i)
		}
	}
}

func TestVolumeToMeshAdaptivity(t *testing.T) {
	const vs = 0.1
	g := sphereGrid(t, 1, vs)
	full, err := render.VolumeToMesh(g, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	reduced, err := render.VolumeToMesh(g, 0, 0.6)
	if err != nil {
		t.Fatal(err)
	}
	if len(reduced.Quads) != 0 {
		t.Error("simplified mesh should be triangles only")
	}
	if reduced.Empty() || reduced.TriangleCount() >= full.TriangleCount() {
		t.Fatalf("adaptivity did not reduce mesh: %d >= %d", reduced.TriangleCount(), full.TriangleCount())
	}
	if err := reduced.Validate(); err != nil {
		t.Fatal(err)
	}
	bb := d3.Box(full.Bounds()).Pad(2 * vs)
	for _, p := range reduced.Points {
		if !bb.Contains(p) {
			t.Fatalf("simplified point %v outside of %v", p, bb)
		}
	}
}

func TestVolumeToMeshErrors(t *testing.T) {
	if _, err := render.VolumeToMesh(nil, 0, 0); !errors.Is(err, render.ErrNilGrid) {
		t.Errorf("want ErrNilGrid, got %v", err)
	}
	g := sphereGrid(t, 0.5, 0.1)
	for _, a := range []float64{-0.1, 1.5, math.NaN()} {
		if _, err := render.VolumeToMesh(g, 0, a); !errors.Is(err, render.ErrAdaptivity) {
			t.Errorf("adaptivity %g: want ErrAdaptivity, got %v", a, err)
		}
	}
	if _, err := render.VolumeToMesh(g, math.Inf(1), 0); err == nil {
		t.Error("expected error for infinite isovalue")
	}
	m, err := render.VolumeToMesh(g, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !m.Empty() {
		t.Error("isovalue outside the band should yield an empty mesh")
	}
}

func TestDeviation(t *testing.T) {
	m := render.Mesh{Points: []r3.Vec{{}, {X: 1}, {Y: 1}}}
	got := render.Deviation([]r3.Vec{{X: 0.1}, {X: 1, Y: 0.5}}, m)
	want := 0.5
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("want deviation %g, got %g", want, got)
	}
	if !math.IsInf(render.Deviation([]r3.Vec{{}}, render.Mesh{}), 1) {
		t.Error("deviation to empty mesh should be infinite")
	}
}

func sphereGrid(t testing.TB, radius, voxelSize float64) *levelset.Grid {
	xf, err := levelset.NewLinearTransform(voxelSize)
	if err != nil {
		t.Fatal(err)
	}
	band := 3 * voxelSize
	g := levelset.NewGrid(xf, float32(band))
	n := int32(math.Ceil(radius/voxelSize)) + 4
	for x := -n; x <= n; x++ {
		for y := -n; y <= n; y++ {
			for z := -n; z <= n; z++ {
				c := levelset.Coord{x, y, z}
				d := r3.Norm(g.IndexToWorld(c)) - radius
				if math.Abs(d) < band {
					g.SetValueOn(c, float32(d))
				}
			}
		}
	}
	return g
}
