package ecopath

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// advanceRatioε avoids a division by zero in the advance ratio.
	advanceRatioε = 1e-6
	// profileCoeff is the empirical blade drag coefficient relative to W·v_i.
	profileCoeff = 0.15
)

// PowerBreakdown stores each term of the power draw, in Watts.
type PowerBreakdown struct {
	Induced, Profile, Parasitic, Climb float64 // mechanical, before any efficiency
	Mechanical                         float64 // sum of the above over the figure of merit
	Electrical                         float64 // drawn from the battery, >= 0
	Thrust, InducedVelocity            float64 // N and m/s
	AdvanceRatio                       float64
	Airspeed                           Velocity3
}

func (p PowerBreakdown) String() string {
	return fmt.Sprintf("P=%.2fW (ind=%.2f prof=%.2f para=%.2f climb=%.2f) T=%.3fN vi=%.3fm/s μ=%.3f",
		p.Electrical, p.Induced, p.Profile, p.Parasitic, p.Climb, p.Thrust, p.InducedVelocity, p.AdvanceRatio)
}

// PowerModel computes the electrical power a multi-rotor draws to fly at a
// given ground velocity through a wind field.
type PowerModel struct {
	Drone DroneConfig
	Wind  WindField
}

// NewPowerModel returns a new power model. A nil wind is calm.
func NewPowerModel(d DroneConfig, w WindField) PowerModel {
	if w == nil {
		w = CalmWind{}
	}
	return PowerModel{d, w}
}

// Power returns the electrical power (W) drawn from the battery when flying
// at velocity v (ground frame) at position p.
func (m PowerModel) Power(v Velocity3, p Point3) float64 {
	return m.Breakdown(v, p).Electrical
}

// Breakdown returns every term of the power draw at velocity v (ground frame) and position p.
func (m PowerModel) Breakdown(v Velocity3, p Point3) (b PowerBreakdown) {
	d := m.Drone
	b.Airspeed = r3.Sub(v, m.Wind.WindAt(p))
	vh := horizontal(b.Airspeed)

	// The drone tilts to overcome drag when flying forward.
	W := d.Weight()
	D := 0.5 * d.AirDensity * vh * vh * d.DragCoeff * d.WingArea
	b.Thrust = math.Sqrt(W*W + D*D)

	// Momentum theory in hover, corrected by the advance ratio.
	b.InducedVelocity = math.Sqrt(b.Thrust / (2 * d.AirDensity * d.RotorDiskArea()))
	b.AdvanceRatio = vh / (b.InducedVelocity + advanceRatioε)
	b.Induced = b.Thrust * b.InducedVelocity / math.Sqrt(1+b.AdvanceRatio*b.AdvanceRatio)

	b.Profile = profileCoeff * W * b.InducedVelocity
	b.Parasitic = D * vh
	// No energy is recovered when descending.
	if b.Airspeed.Z > 0 {
		b.Climb = W * b.Airspeed.Z
	}

	b.Mechanical = (b.Induced + b.Profile + b.Parasitic + b.Climb) / d.FigureOfMerit
	b.Electrical = math.Max(b.Mechanical/d.MotorEfficiency, 0)
	return
}

// HoverPower returns the electrical power needed to hover in still air.
func (m PowerModel) HoverPower() float64 {
	return PowerModel{m.Drone, CalmWind{}}.Power(Velocity3{}, Point3{})
}
