package ecopath

import (
	"gonum.org/v1/gonum/mat"
)

// GenerateBezier samples n points of the cubic Bézier curve defined by the four
// control points. The samples are uniform in the curve parameter s_k = k/(n-1),
// not in arc length. The first and last samples are exactly p0 and p3.
func GenerateBezier(p0, p1, p2, p3 Point3, n int) []Point3 {
	if n < 2 {
		panic("at least two samples are needed to describe a path")
	}
	// Bernstein basis, one row per sample.
	basis := mat.NewDense(n, 4, nil)
	for k := 0; k < n; k++ {
		s := float64(k) / float64(n-1)
		u := 1 - s
		basis.SetRow(k, []float64{u * u * u, 3 * u * u * s, 3 * u * s * s, s * s * s})
	}
	ctrl := mat.NewDense(4, 3, []float64{
		p0.X, p0.Y, p0.Z,
		p1.X, p1.Y, p1.Z,
		p2.X, p2.Y, p2.Z,
		p3.X, p3.Y, p3.Z,
	})
	var samples mat.Dense
	samples.Mul(basis, ctrl)

	points := make([]Point3, n)
	for k := range points {
		points[k] = Point3{X: samples.At(k, 0), Y: samples.At(k, 1), Z: samples.At(k, 2)}
	}
	// End points are exact.
	points[0] = p0
	points[n-1] = p3
	return points
}
