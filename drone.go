package ecopath

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is returned when a drone or a mission cannot be flown as configured.
var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultMaxTime is the default maximum mission time in seconds.
const DefaultMaxTime = 120.0

// DefaultSamples is the default number of points sampled along the path.
const DefaultSamples = 10

// DroneConfig defines the airframe, rotors and battery of a multi-rotor.
// It is a value: once built it is never altered.
type DroneConfig struct {
	AirDensity        float64 // ρ (kg/m^3)
	WingArea          float64 // S, drag reference area (m^2)
	DragCoeff         float64 // CD0
	Mass              float64 // kg
	BatteryCapacityWh float64 // Wh
	MotorPowerLimitW  float64 // W
	MotorEfficiency   float64 // electrical to mechanical
	// BatteryEfficiency is the discharge efficiency. It is accepted and
	// reported but does not enter any energy computation.
	BatteryEfficiency float64
	FigureOfMerit     float64 // rotor efficiency, 0.6-0.75 typical
	PropDiameter      float64 // m
	RotorCount        int
}

// DefaultDroneConfig returns a 1.6 kg quad-rotor.
func DefaultDroneConfig() DroneConfig {
	return DroneConfig{
		AirDensity:        1.225,
		WingArea:          0.02,
		DragCoeff:         1.1,
		Mass:              1.6,
		BatteryCapacityWh: 200,
		MotorPowerLimitW:  1500,
		MotorEfficiency:   0.85,
		BatteryEfficiency: 0.9,
		FigureOfMerit:     0.7,
		PropDiameter:      0.2,
		RotorCount:        4,
	}
}

// RotorDiskArea returns the total disk area of all rotors in m^2.
func (d DroneConfig) RotorDiskArea() float64 {
	r := d.PropDiameter / 2
	return float64(d.RotorCount) * math.Pi * r * r
}

// Weight returns the weight in Newtons.
func (d DroneConfig) Weight() float64 {
	return d.Mass * g
}

// Validate returns an error wrapping ErrInvalidConfig if any parameter is not strictly positive.
func (d DroneConfig) Validate() error {
	if d.RotorCount < 1 {
		return fmt.Errorf("%w: rotor count must be at least 1 (got %d)", ErrInvalidConfig, d.RotorCount)
	}
	for _, p := range []struct {
		name string
		val  float64
	}{
		{"air density", d.AirDensity},
		{"wing area", d.WingArea},
		{"drag coefficient", d.DragCoeff},
		{"mass", d.Mass},
		{"battery capacity", d.BatteryCapacityWh},
		{"motor power limit", d.MotorPowerLimitW},
		{"motor efficiency", d.MotorEfficiency},
		{"battery efficiency", d.BatteryEfficiency},
		{"figure of merit", d.FigureOfMerit},
		{"propeller diameter", d.PropDiameter},
	} {
		if !(p.val > 0) || math.IsInf(p.val, 0) {
			return fmt.Errorf("%w: %s must be strictly positive (got %v)", ErrInvalidConfig, p.name, p.val)
		}
	}
	return nil
}

func (d DroneConfig) String() string {
	return fmt.Sprintf("m=%.2fkg ρ=%.3f S=%.3f CD0=%.2f battery=%.0fWh Pmax=%.0fW rotors=%dx%.2fm",
		d.Mass, d.AirDensity, d.WingArea, d.DragCoeff, d.BatteryCapacityWh, d.MotorPowerLimitW, d.RotorCount, d.PropDiameter)
}

// MissionSpec defines a point to point flight.
type MissionSpec struct {
	Start, End Point3
	MaxTime    float64 // s
	Samples    int     // number of points sampled along the path, N >= 2
	Verbose    bool    // log the final report
}

// NewMissionSpec returns a mission between two points with the default time limit and sampling.
func NewMissionSpec(start, end Point3) MissionSpec {
	return MissionSpec{Start: start, End: end, MaxTime: DefaultMaxTime, Samples: DefaultSamples}
}

// Validate returns an error wrapping ErrInvalidConfig if the mission cannot be integrated.
func (m MissionSpec) Validate() error {
	if m.Samples < 2 {
		return fmt.Errorf("%w: at least 2 path samples are required (got %d)", ErrInvalidConfig, m.Samples)
	}
	if !(m.MaxTime > 0) {
		return fmt.Errorf("%w: max time must be strictly positive (got %v)", ErrInvalidConfig, m.MaxTime)
	}
	for _, v := range []float64{m.Start.X, m.Start.Y, m.Start.Z, m.End.X, m.End.Y, m.End.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: mission end points must be finite", ErrInvalidConfig)
		}
	}
	return nil
}

// Degenerate returns whether the start and end points coincide.
func (m MissionSpec) Degenerate() bool {
	return m.Start == m.End
}

func (m MissionSpec) String() string {
	return fmt.Sprintf("(%.1f, %.1f, %.1f) -> (%.1f, %.1f, %.1f) in %.0fs (N=%d)",
		m.Start.X, m.Start.Y, m.Start.Z, m.End.X, m.End.Y, m.End.Z, m.MaxTime, m.Samples)
}
