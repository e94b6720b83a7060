package primitive

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestMeshShapes(t *testing.T) {
	for _, shape := range []string{"box", "sphere", "cylinder"} {
		m, err := Mesh(shape, 2, 24)
		if err != nil {
			t.Fatal(shape, err)
		}
		if len(m.Triangles) == 0 {
			t.Fatalf("%s: no triangles", shape)
		}
		if len(m.Vertices) >= len(m.Triangles) {
			t.Errorf("%s: %d vertices for %d triangles, expected welded mesh", shape, len(m.Vertices), len(m.Triangles))
		}
		for i, tri := range m.Triangles {
			for _, v := range tri {
				if v < 0 || v >= len(m.Vertices) {
					t.Fatalf("%s: triangle %d index %d out of range", shape, i, v)
				}
			}
		}
		for _, v := range m.Vertices {
			if math.Abs(v.X) > 1.1 || math.Abs(v.Y) > 1.1 || math.Abs(v.Z) > 1.1 {
				t.Fatalf("%s: vertex %v outside bounds", shape, v)
			}
		}
	}
}

func TestMeshSphereRadius(t *testing.T) {
	m, err := Mesh("sphere", 2, 32)
	if err != nil {
		t.Fatal(err)
	}
	tol := 2.0 / 32
	for _, v := range m.Vertices {
		if d := math.Abs(r3.Norm(v) - 1); d > tol {
			t.Fatalf("vertex %v off sphere by %g", v, d)
		}
	}
}

func TestMeshErrors(t *testing.T) {
	if _, err := Mesh("torus", 1, 16); err == nil {
		t.Error("expected unknown shape error")
	}
	if _, err := Mesh("box", 0, 16); err == nil {
		t.Error("expected size error")
	}
	if _, err := Mesh("box", math.NaN(), 16); err == nil {
		t.Error("expected size error for NaN")
	}
	if _, err := Mesh("box", 1, 1); err == nil {
		t.Error("expected cells error")
	}
}

func TestWelderDropsCollapsed(t *testing.T) {
	w := newWelder(1e-6)
	a := v3.Vec{X: 0}
	b := v3.Vec{X: 1}
	c := v3.Vec{Y: 1}
	w.add(a, b, c)
	w.add(b, a, v3.Vec{X: 1e-9})
	w.add(c, b, v3.Vec{Z: 1})
	if len(w.mesh.Vertices) != 4 {
		t.Errorf("got %d vertices, want 4", len(w.mesh.Vertices))
	}
	if len(w.mesh.Triangles) != 2 {
		t.Errorf("got %d triangles, want 2", len(w.mesh.Triangles))
	}
}
