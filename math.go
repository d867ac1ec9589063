package ecopath

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	deg2rad = math.Pi / 180
	// g is the standard gravity in m/s^2.
	g = 9.81
)

// Point3 is a position in meters (x, y, z), z being the altitude.
type Point3 = r3.Vec

// Velocity3 is a velocity in m/s, in the ground frame unless stated otherwise.
type Velocity3 = r3.Vec

// NewPoint3 returns a point from its coordinates.
func NewPoint3(x, y, z float64) Point3 {
	return Point3{X: x, Y: y, Z: z}
}

// distance returns the Euclidean distance between two points.
func distance(a, b Point3) float64 {
	return r3.Norm(r3.Sub(b, a))
}

// horizontal returns the norm of the horizontal components of v.
func horizontal(v Velocity3) float64 {
	return math.Hypot(v.X, v.Y)
}

// unit returns the unit vector of a given vector, or the zero vector.
func unit(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if scalar.EqualWithinAbs(n, 0, 1e-12) {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}

// lerp linearly interpolates between a and b.
func lerp(a, b Point3, s float64) Point3 {
	return r3.Add(a, r3.Scale(s, r3.Sub(b, a)))
}

// Deg2rad converts degrees to radians, and enforced only positive numbers.
func Deg2rad(a float64) float64 {
	if a < 0 {
		a += 360
	}
	return math.Mod(a*deg2rad, 2*math.Pi)
}
