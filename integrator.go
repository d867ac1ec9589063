package ecopath

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// minSpeed is the floor of the local target speed in m/s.
	minSpeed = 1e-3
	// zeroLength is the length below which a segment is not flown (m).
	zeroLength = 1e-9
)

// DesignVectorLen is the number of decision variables.
const DesignVectorLen = 8

// DesignVector stores the decision variables of the optimization:
// [v_start, v_end, cp1.x, cp1.y, cp1.z, cp2.x, cp2.y, cp2.z].
type DesignVector [DesignVectorLen]float64

// NewDesignVector returns a design vector from its speeds and interior control points.
func NewDesignVector(vStart, vEnd float64, cp1, cp2 Point3) DesignVector {
	return DesignVector{vStart, vEnd, cp1.X, cp1.Y, cp1.Z, cp2.X, cp2.Y, cp2.Z}
}

// DesignVectorFromSlice copies a solver vector. It panics if the length is not DesignVectorLen.
func DesignVectorFromSlice(x []float64) (d DesignVector) {
	if len(x) != DesignVectorLen {
		panic(fmt.Errorf("design vector must have %d elements (got %d)", DesignVectorLen, len(x)))
	}
	copy(d[:], x)
	return
}

// StartSpeed returns the speed at the start of the path.
func (d DesignVector) StartSpeed() float64 { return d[0] }

// EndSpeed returns the speed at the end of the path.
func (d DesignVector) EndSpeed() float64 { return d[1] }

// ControlPoint1 returns the first free control point.
func (d DesignVector) ControlPoint1() Point3 { return Point3{X: d[2], Y: d[3], Z: d[4]} }

// ControlPoint2 returns the second free control point.
func (d DesignVector) ControlPoint2() Point3 { return Point3{X: d[5], Y: d[6], Z: d[7]} }

// Slice returns a copy of the vector as a slice, as consumed by a solver.
func (d DesignVector) Slice() []float64 {
	s := make([]float64, DesignVectorLen)
	copy(s, d[:])
	return s
}

func (d DesignVector) String() string {
	cp1, cp2 := d.ControlPoint1(), d.ControlPoint2()
	return fmt.Sprintf("v=[%.2f -> %.2f]m/s cp1=(%.1f, %.1f, %.1f) cp2=(%.1f, %.1f, %.1f)",
		d[0], d[1], cp1.X, cp1.Y, cp1.Z, cp2.X, cp2.Y, cp2.Z)
}

// PathEvaluation is the outcome of flying one design vector.
type PathEvaluation struct {
	EnergyJ    float64  // total energy drawn from the battery
	TimeS      float64  // total flight time
	PeakPowerW float64  // highest power drawn on any segment
	Path       []Point3 // sampled points, start and end included
}

// EnergyWh returns the total energy in Watt hours.
func (e PathEvaluation) EnergyWh() float64 {
	return e.EnergyJ / 3600
}

// Length returns the length of the sampled path in meters.
func (e PathEvaluation) Length() (l float64) {
	for k := 1; k < len(e.Path); k++ {
		l += distance(e.Path[k-1], e.Path[k])
	}
	return
}

// PathIntegrator flies design vectors through the power model.
// It holds no evaluation state and is safe for concurrent use.
type PathIntegrator struct {
	Power   PowerModel
	Mission MissionSpec
}

// NewPathIntegrator returns a new integrator for the provided mission.
func NewPathIntegrator(pm PowerModel, m MissionSpec) PathIntegrator {
	return PathIntegrator{pm, m}
}

// ControlPolygon returns the four control points of the path of design vector x.
func (pi PathIntegrator) ControlPolygon(x DesignVector) [4]Point3 {
	return [4]Point3{pi.Mission.Start, x.ControlPoint1(), x.ControlPoint2(), pi.Mission.End}
}

// Evaluate integrates the energy, time and peak power along the path of x.
// The speed is interpolated linearly between the start and end speeds
// across segments, and each segment is flown at constant ground velocity
// with the power evaluated at its first point.
func (pi PathIntegrator) Evaluate(x DesignVector) (e PathEvaluation) {
	ctrl := pi.ControlPolygon(x)
	e.Path = GenerateBezier(ctrl[0], ctrl[1], ctrl[2], ctrl[3], pi.Mission.Samples)
	vStart, vEnd := x.StartSpeed(), x.EndSpeed()
	n := len(e.Path)
	for k := 0; k < n-1; k++ {
		p0, p1 := e.Path[k], e.Path[k+1]
		dist := distance(p0, p1)
		if dist < zeroLength {
			continue
		}
		s := float64(k) / float64(max(n-2, 1))
		speed := math.Max(minSpeed, vStart+(vEnd-vStart)*s)
		dt := dist / speed
		v := r3.Scale(1/dt, r3.Sub(p1, p0))
		power := pi.Power.Power(v, p0)
		e.PeakPowerW = math.Max(e.PeakPowerW, power)
		e.EnergyJ += power * dt
		e.TimeS += dt
	}
	return
}

// StraightLine returns the design vector whose interior control points sit on
// the start and end points, i.e. the direct path flown with the given speeds.
func (pi PathIntegrator) StraightLine(vStart, vEnd float64) DesignVector {
	return NewDesignVector(vStart, vEnd, pi.Mission.Start, pi.Mission.End)
}
