package render

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	_ kdtree.Interface  = kdPoints{}
	_ kdtree.Comparable = kdPoint{}
)

// PointIndex answers nearest point queries over a fixed point set.
type PointIndex struct {
	tree *kdtree.Tree
}

// NewPointIndex builds a k-d tree over a copy of pts.
func NewPointIndex(pts []r3.Vec) *PointIndex {
	kd := make(kdPoints, len(pts))
	for i := range kd {
		kd[i] = kdPoint(pts[i])
	}
	return &PointIndex{tree: kdtree.New(kd, false)}
}

// Nearest returns the indexed point closest to v and its distance to v.
// ok is false if the index is empty.
func (pi *PointIndex) Nearest(v r3.Vec) (nearest r3.Vec, dist float64, ok bool) {
	if pi.tree == nil || pi.tree.Root == nil {
		return r3.Vec{}, math.Inf(1), false
	}
	got, d2 := pi.tree.Nearest(kdPoint(v))
	return r3.Vec(got.(kdPoint)), math.Sqrt(d2), true
}

// Deviation returns the largest distance from a point of ref to its nearest
// point of m. It is infinite if m has no points.
func Deviation(ref []r3.Vec, m Mesh) float64 {
	pi := NewPointIndex(m.Points)
	worst := 0.0
	for _, v := range ref {
		_, d, ok := pi.Nearest(v)
		if !ok {
			return math.Inf(1)
		}
		worst = math.Max(worst, d)
	}
	return worst
}

type kdPoints []kdPoint

type kdPoint r3.Vec

func (k kdPoints) Index(i int) kdtree.Comparable { return k[i] }

// Len returns the length of the list.
func (k kdPoints) Len() int { return len(k) }

// Pivot partitions the list based on the dimension specified.
func (k kdPoints) Pivot(d kdtree.Dim) int {
	p := kdPlane{dim: int(d), points: k}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Slice returns a slice of the list using zero-based half
// open indexing equivalent to built-in slice indexing.
func (k kdPoints) Slice(start, end int) kdtree.Interface { return k[start:end] }

// Compare returns the signed distance of a from the plane passing through
// b and perpendicular to the dimension d.
func (a kdPoint) Compare(b kdtree.Comparable, d kdtree.Dim) float64 {
	return kdComp(a, b.(kdPoint), int(d))
}

// Dims returns the number of dimensions described in the Comparable.
func (a kdPoint) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between the receiver and
// the parameter.
func (a kdPoint) Distance(b kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(r3.Vec(a), r3.Vec(b.(kdPoint))))
}

// c = a.dim - b.dim
func kdComp(a, b kdPoint, dim int) float64 {
	switch dim {
	case 0:
		return a.X - b.X
	case 1:
		return a.Y - b.Y
	}
	return a.Z - b.Z
}

type kdPlane struct {
	dim    int
	points kdPoints
}

func (p kdPlane) Less(i, j int) bool {
	return kdComp(p.points[i], p.points[j], p.dim) < 0
}
func (p kdPlane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}
func (p kdPlane) Len() int {
	return len(p.points)
}
func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}
