package solver

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestTransformRoundTrip(t *testing.T) {
	inf := math.Inf(1)
	p := Problem{
		X0:     []float64{3, 5, -4, 7, 2},
		Bounds: []Bound{{0, 10}, {1, inf}, {-inf, 0}, {-inf, inf}, {2, 2}},
	}
	tr := newTransform(p)
	u := tr.toU(p.X0)
	x := make([]float64, len(u))
	tr.toX(x, u)
	for i := range x {
		if !scalar.EqualWithinAbs(x[i], p.X0[i], 1e-12) {
			t.Fatalf("variable #%d: %f != %f", i, x[i], p.X0[i])
		}
	}
}

func TestTransformInterior(t *testing.T) {
	p := Problem{X0: []float64{0, 10, 1}, Bounds: []Bound{{0, 10}, {0, 10}, {1, math.Inf(1)}}}
	tr := newTransform(p)
	x := make([]float64, 3)
	tr.toX(x, tr.toU(p.X0))
	exp := []float64{0.1, 9.9, 1.01}
	for i := range x {
		if !scalar.EqualWithinAbs(x[i], exp[i], 1e-9) {
			t.Fatalf("variable #%d should be nudged to %f, got %f", i, exp[i], x[i])
		}
	}
}

func TestTransformStaysInBounds(t *testing.T) {
	p := Problem{X0: []float64{0, 0}, Bounds: []Bound{{-3, 4}, {5, math.Inf(1)}}}
	tr := newTransform(p)
	x := make([]float64, 2)
	for _, v := range []float64{-1e6, -math.Pi / 2, 0, 1, math.Pi / 2, 42, 1e6} {
		tr.toX(x, []float64{v, v})
		if !p.Bounds[0].Contains(x[0]) || !p.Bounds[1].Contains(x[1]) {
			t.Fatalf("u=%f maps out of bounds: %v", v, x)
		}
	}
}
