package solver

import "math"

// interiorFraction is how far inside a bound a starting point is moved.
// The transforms below are stationary on the bounds.
const interiorFraction = 1e-2

// transform maps an unbounded internal vector u onto the bounded vector x.
// Doubly bounded variables use x = lo + (hi-lo)(1+sin u)/2, singly bounded
// ones use x = lo - 1 + sqrt(u²+1) (resp. hi + 1 - sqrt(u²+1)).
type transform struct {
	bounds []Bound
}

func newTransform(p Problem) transform {
	b := make([]Bound, len(p.X0))
	for i := range b {
		b[i] = p.bound(i)
	}
	return transform{b}
}

// toX writes the external vector of u into x.
func (t transform) toX(x, u []float64) {
	for i, b := range t.bounds {
		lo, hi := !math.IsInf(b.Min, -1), !math.IsInf(b.Max, 1)
		switch {
		case lo && hi:
			if b.Min == b.Max {
				x[i] = b.Min
				continue
			}
			x[i] = b.Min + (b.Max-b.Min)*(1+math.Sin(u[i]))/2
		case lo:
			x[i] = b.Min - 1 + math.Sqrt(u[i]*u[i]+1)
		case hi:
			x[i] = b.Max + 1 - math.Sqrt(u[i]*u[i]+1)
		default:
			x[i] = u[i]
		}
		// Rounding must never leave the box.
		x[i] = b.Clamp(x[i])
	}
}

// toU returns the internal vector of x, after moving x strictly inside its bounds.
func (t transform) toU(x []float64) []float64 {
	u := make([]float64, len(x))
	for i, b := range t.bounds {
		lo, hi := !math.IsInf(b.Min, -1), !math.IsInf(b.Max, 1)
		switch {
		case lo && hi:
			if b.Min == b.Max {
				continue
			}
			margin := interiorFraction * (b.Max - b.Min)
			v := math.Min(math.Max(x[i], b.Min+margin), b.Max-margin)
			r := 2*(v-b.Min)/(b.Max-b.Min) - 1
			u[i] = math.Asin(math.Min(math.Max(r, -1), 1))
		case lo:
			v := math.Max(x[i], b.Min+interiorFraction)
			d := v - b.Min + 1
			u[i] = math.Sqrt(d*d - 1)
		case hi:
			v := math.Min(x[i], b.Max-interiorFraction)
			d := b.Max - v + 1
			u[i] = math.Sqrt(d*d - 1)
		default:
			u[i] = x[i]
		}
	}
	return u
}
