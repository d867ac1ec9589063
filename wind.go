package ecopath

import (
	"fmt"
	"math"
)

// WindField defines a wind model. Implementations must be pure: the wind at a
// given point only depends on the point and the field's own fixed parameters.
type WindField interface {
	// WindAt returns the wind velocity (m/s) at the provided position.
	WindAt(p Point3) Velocity3
	// Direction returns the unit vector of the wind, or the zero vector if calm.
	Direction() Velocity3
	// MaxWindAltitude returns the altitude (m) at which the reference wind is defined.
	MaxWindAltitude() float64
}

/* Available wind fields */

// CalmWind has no wind anywhere.
type CalmWind struct{}

// WindAt implements the WindField interface.
func (w CalmWind) WindAt(p Point3) Velocity3 {
	return Velocity3{}
}

// Direction implements the WindField interface.
func (w CalmWind) Direction() Velocity3 {
	return Velocity3{}
}

// MaxWindAltitude implements the WindField interface.
func (w CalmWind) MaxWindAltitude() float64 {
	return 0
}

func (w CalmWind) String() string {
	return "calm"
}

// UniformWind blows with the same velocity everywhere.
type UniformWind struct {
	Velocity Velocity3
}

// NewWindFromSpeedAndDir returns a horizontal uniform wind of the provided speed (m/s)
// blowing towards the provided direction, in degrees counter-clockwise from +x.
func NewWindFromSpeedAndDir(speed, directionDeg float64) UniformWind {
	s, c := math.Sincos(Deg2rad(directionDeg))
	return UniformWind{Velocity3{X: snap(speed * c), Y: snap(speed * s)}}
}

// WindAt implements the WindField interface.
func (w UniformWind) WindAt(p Point3) Velocity3 {
	return w.Velocity
}

// Direction implements the WindField interface.
func (w UniformWind) Direction() Velocity3 {
	return unit(w.Velocity)
}

// MaxWindAltitude implements the WindField interface.
func (w UniformWind) MaxWindAltitude() float64 {
	return 0
}

func (w UniformWind) String() string {
	return fmt.Sprintf("uniform wind (%.2f, %.2f, %.2f) m/s", w.Velocity.X, w.Velocity.Y, w.Velocity.Z)
}

// PowerLawWind is a horizontal wind whose magnitude follows the 1/5 power law
// profile of the atmospheric boundary layer: zero at ground level and
// RefSpeed at RefAltitude.
type PowerLawWind struct {
	RefAltitude  float64 // z_c (m)
	DirectionDeg float64 // direction the wind blows towards, counter-clockwise from +x
	RefSpeed     float64 // m/s at RefAltitude
}

// NewPowerLawWind returns a new power law wind profile.
func NewPowerLawWind(refAltitude, directionDeg, refSpeed float64) PowerLawWind {
	if refAltitude <= 0 {
		panic("reference altitude must be strictly positive")
	}
	return PowerLawWind{refAltitude, directionDeg, refSpeed}
}

// DefaultPowerLawWind returns a 20 m/s wind at 200 m blowing along +x.
func DefaultPowerLawWind() PowerLawWind {
	return NewPowerLawWind(200, 0, 20)
}

// WindAt implements the WindField interface.
// Points below ground level are treated as being on the ground.
func (w PowerLawWind) WindAt(p Point3) Velocity3 {
	z := math.Max(p.Z, 0)
	mag := w.RefSpeed * math.Pow(z/w.RefAltitude, 0.2)
	s, c := math.Sincos(w.DirectionDeg * deg2rad)
	return Velocity3{X: snap(mag * c), Y: snap(mag * s)}
}

// Direction implements the WindField interface.
func (w PowerLawWind) Direction() Velocity3 {
	return unit(w.WindAt(Point3{Z: w.RefAltitude}))
}

// MaxWindAltitude implements the WindField interface.
func (w PowerLawWind) MaxWindAltitude() float64 {
	return w.RefAltitude
}

func (w PowerLawWind) String() string {
	return fmt.Sprintf("power law wind %.1f m/s @ %.0fm towards %.0f°", w.RefSpeed, w.RefAltitude, w.DirectionDeg)
}

// snap zeroes wind components below a millimeter per second.
func snap(v float64) float64 {
	if v < 1e-3 && v > -1e-3 {
		return 0
	}
	return v
}
