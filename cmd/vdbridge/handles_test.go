package main

import (
	"testing"

	"github.com/soypat/levelset/bridge"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestHandleTable(t *testing.T) {
	tbl := newHandleTable()
	pts := []r3.Vec{{}, {X: 1}, {Y: 1}}
	g, err := bridge.New().FromMesh(pts, [][3]int{{0, 1, 2}}, 0.25)
	if err != nil {
		t.Fatal(err)
	}
	h := tbl.add(g)
	if h == 0 {
		t.Fatal("zero handle")
	}
	if tbl.get(h) != g || tbl.get(0) != nil || tbl.get(h+1) != nil {
		t.Fatal("lookup mismatch")
	}
	h2 := tbl.add(g)
	if h2 == h {
		t.Fatal("handle reused")
	}
	if !tbl.remove(h) {
		t.Fatal("remove of live handle failed")
	}
	if tbl.remove(h) {
		t.Error("second remove reported live")
	}
	if tbl.get(h) != nil || tbl.len() != 1 {
		t.Errorf("table has %d entries after remove", tbl.len())
	}
	if g.VoxelSize() != 0 {
		t.Error("grid not destroyed by remove")
	}
	if tbl.remove(0) {
		t.Error("removed zero handle")
	}
}

func TestCatch(t *testing.T) {
	ok := 1
	func() {
		defer catch("test", func() { ok = 0 })
		panic("boom")
	}()
	if ok != 0 {
		t.Error("panic not converted to failure")
	}
	ok = 1
	func() {
		defer catch("test", func() { ok = 0 })
	}()
	if ok != 1 {
		t.Error("fail called without panic")
	}
}
