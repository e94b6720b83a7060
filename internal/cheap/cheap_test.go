package cheap

import (
	"testing"
	"unsafe"

	"github.com/soypat/levelset/bridge"
	"gonum.org/v1/gonum/spatial/r3"
)

var _ bridge.Allocator = (*Allocator)(nil)

func TestAllocFree(t *testing.T) {
	a := &Allocator{}
	f, err := a.AllocFloat32(9)
	if err != nil {
		t.Fatal(err)
	}
	for i := range f {
		f[i] = float32(i)
	}
	ix, err := a.AllocInt32(3)
	if err != nil {
		t.Fatal(err)
	}
	ix[2] = -1
	if a.Live() != 2 || a.LiveBytes() != 48 {
		t.Fatalf("live=%d bytes=%d, want 2 and 48", a.Live(), a.LiveBytes())
	}
	if f[8] != 8 || ix[2] != -1 {
		t.Error("buffer contents lost")
	}
	a.FreeFloat32(f)
	a.FreeFloat32(f)
	a.FreeInt32(ix)
	if a.Live() != 0 {
		t.Fatalf("live=%d after free", a.Live())
	}
}

func TestFreeUnknown(t *testing.T) {
	a := &Allocator{}
	var x float32
	if a.Free(unsafe.Pointer(&x)) {
		t.Error("freed pointer not owned by allocator")
	}
	if a.Free(nil) {
		t.Error("freed nil")
	}
	a.FreeInt32(nil)
}

func TestAllocZeroAndLimit(t *testing.T) {
	a := &Allocator{MaxBytes: 16}
	z, err := a.AllocFloat32(0)
	if err != nil || len(z) != 0 {
		t.Fatal("zero alloc", err)
	}
	a.FreeFloat32(z)
	if _, err := a.AllocInt32(5); err == nil {
		t.Error("expected limit error")
	}
	if _, err := a.AllocInt32(-1); err == nil {
		t.Error("expected negative size error")
	}
	if a.Live() != 0 {
		t.Errorf("live=%d", a.Live())
	}
}

func TestBridgeExtractOnCHeap(t *testing.T) {
	a := &Allocator{}
	b := bridge.New(bridge.WithAllocator(a))
	pts := []r3.Vec{{X: 0}, {X: 1}, {Y: 1}, {Z: 1}}
	tris := [][3]int{{0, 2, 1}, {0, 1, 3}, {0, 3, 2}, {1, 2, 3}}
	g, err := b.FromMesh(pts, tris, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	defer g.Destroy()
	mb, err := b.ExtractSurface(g, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if a.Live() != 2 {
		t.Fatalf("live=%d, want 2", a.Live())
	}
	mb.Release()
	mb.Release()
	if a.Live() != 0 {
		t.Fatalf("live=%d after release", a.Live())
	}
}
