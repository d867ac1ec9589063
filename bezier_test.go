package ecopath

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestBezierEndPoints(t *testing.T) {
	p0, p1, p2, p3 := NewPoint3(0.1, 0.2, 0.3), NewPoint3(333.3, -40, 250), NewPoint3(666.6, 70.7, 250), NewPoint3(1000, 0.7, 200.9)
	for _, n := range []int{2, 3, 10, 101} {
		path := GenerateBezier(p0, p1, p2, p3, n)
		if len(path) != n {
			t.Fatalf("got %d samples instead of %d", len(path), n)
		}
		if path[0] != p0 || path[n-1] != p3 {
			t.Fatalf("end points not exact for n=%d: %v %v", n, path[0], path[n-1])
		}
	}
}

func TestBezierDeterministic(t *testing.T) {
	p0, p1, p2, p3 := NewPoint3(0, 0, 0), NewPoint3(10, 50, 20), NewPoint3(80, -20, 40), NewPoint3(100, 0, 10)
	a := GenerateBezier(p0, p1, p2, p3, 17)
	b := GenerateBezier(p0, p1, p2, p3, 17)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample #%d differs: %v != %v", i, a[i], b[i])
		}
	}
}

func TestBezierMidpoint(t *testing.T) {
	// B(1/2) = (p0 + 3p1 + 3p2 + p3)/8
	p0, p1, p2, p3 := NewPoint3(0, 0, 0), NewPoint3(0, 80, 0), NewPoint3(80, 80, 0), NewPoint3(80, 0, 8)
	path := GenerateBezier(p0, p1, p2, p3, 3)
	if !pointsEqual(path[1], NewPoint3(40, 60, 1), 1e-12) {
		t.Fatalf("incorrect midpoint %v", path[1])
	}
}

func TestBezierStraight(t *testing.T) {
	start, end := NewPoint3(0, 0, 0), NewPoint3(1000, 0, 200)
	path := GenerateBezier(start, lerp(start, end, 1/3.), lerp(start, end, 2/3.), end, 11)
	// Evenly spaced control points give evenly spaced samples on the segment.
	for k, p := range path {
		exp := lerp(start, end, float64(k)/10)
		if !pointsEqual(p, exp, 1e-9) {
			t.Fatalf("sample #%d: %v != %v", k, p, exp)
		}
		if !scalar.EqualWithinAbs(p.Y, 0, 1e-12) {
			t.Fatalf("sample #%d left the plane: %v", k, p)
		}
	}
}

func TestBezierPanic(t *testing.T) {
	assertPanic(t, func() {
		GenerateBezier(Point3{}, Point3{}, Point3{}, Point3{}, 1)
	})
}
