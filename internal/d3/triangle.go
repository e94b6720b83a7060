package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Feature identifies the part of a triangle closest to a query point.
type Feature int

const (
	FeatureV0 Feature = iota
	FeatureV1
	FeatureV2
	FeatureE0 // edge V0-V1
	FeatureE1 // edge V1-V2
	FeatureE2 // edge V2-V0
	FeatureFace
)

// IsVertex reports whether f is one of the triangle corners.
func (f Feature) IsVertex() bool { return f <= FeatureV2 }

// IsEdge reports whether f is one of the triangle edges.
func (f Feature) IsEdge() bool { return f >= FeatureE0 && f <= FeatureE2 }

// UnitNormal returns the unit normal of t following right hand winding.
// Degenerate triangles return the zero vector.
func UnitNormal(t r3.Triangle) r3.Vec {
	n := t.Normal()
	if n == (r3.Vec{}) {
		return n
	}
	return r3.Unit(n)
}

// TriangleBounds returns the bounding box of t.
func TriangleBounds(t r3.Triangle) Box {
	return Set(t[:]).Bounds()
}

// Angle returns the interior angle of t at corner i in radians.
func Angle(t r3.Triangle, i int) float64 {
	a := r3.Sub(t[(i+1)%3], t[i])
	b := r3.Sub(t[(i+2)%3], t[i])
	c := r3.Cos(a, b)
	return math.Acos(math.Max(-1, math.Min(1, c)))
}

// Closest returns closest point on triangle t to argument point p
// and the feature of the triangle it lies on.
// See Ericson, Real-Time Collision Detection, section 5.1.5.
func Closest(t r3.Triangle, p r3.Vec) (r3.Vec, Feature) {
	a, b, c := t[0], t[1], t[2]
	ab := r3.Sub(b, a)
	ac := r3.Sub(c, a)
	ap := r3.Sub(p, a)
	d1 := r3.Dot(ab, ap)
	d2 := r3.Dot(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return a, FeatureV0
	}

	bp := r3.Sub(p, b)
	d3 := r3.Dot(ab, bp)
	d4 := r3.Dot(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return b, FeatureV1
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return r3.Add(a, r3.Scale(v, ab)), FeatureE0
	}

	cp := r3.Sub(p, c)
	d5 := r3.Dot(ab, cp)
	d6 := r3.Dot(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return c, FeatureV2
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return r3.Add(a, r3.Scale(w, ac)), FeatureE2
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return r3.Add(b, r3.Scale(w, r3.Sub(c, b))), FeatureE1
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return r3.Add(a, r3.Add(r3.Scale(v, ab), r3.Scale(w, ac))), FeatureFace
}
