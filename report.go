package ecopath

import (
	"fmt"
	"strings"

	kitlog "github.com/go-kit/kit/log"
	"gonum.org/v1/gonum/floats"
)

// AltitudeProfile summarizes the altitudes of a path.
type AltitudeProfile struct {
	Max, Min, Start, End float64
}

// NewAltitudeProfile returns the altitude profile of a sampled path.
func NewAltitudeProfile(path []Point3) (a AltitudeProfile) {
	if len(path) == 0 {
		return
	}
	z := make([]float64, len(path))
	for i, p := range path {
		z[i] = p.Z
	}
	return AltitudeProfile{Max: floats.Max(z), Min: floats.Min(z), Start: z[0], End: z[len(z)-1]}
}

// Report is the final summary of an optimized mission.
type Report struct {
	Success            bool
	StartSpeed         float64
	EndSpeed           float64
	TimeS              float64
	EnergyWh           float64
	BatteryUsedPct     float64
	ControlPoint1      Point3
	ControlPoint2      Point3
	BatteryMarginWh    float64
	PowerMarginW       float64
	TimeMarginS        float64
	PeakPowerW         float64
	Altitude           AltitudeProfile
	BatteryEfficiency  float64 // as configured, not applied
	LengthM            float64
	StraightLineLength float64
}

func (o *MissionOptimizer) report(x DesignVector, e PathEvaluation) *Report {
	return &Report{
		Success:            true,
		StartSpeed:         x.StartSpeed(),
		EndSpeed:           x.EndSpeed(),
		TimeS:              e.TimeS,
		EnergyWh:           e.EnergyWh(),
		BatteryUsedPct:     e.EnergyWh() / o.Drone.BatteryCapacityWh * 100,
		ControlPoint1:      x.ControlPoint1(),
		ControlPoint2:      x.ControlPoint2(),
		BatteryMarginWh:    o.batteryMargin(e),
		PowerMarginW:       o.powerMargin(e),
		TimeMarginS:        o.timeMargin(e),
		PeakPowerW:         e.PeakPowerW,
		Altitude:           NewAltitudeProfile(e.Path),
		BatteryEfficiency:  o.Drone.BatteryEfficiency,
		LengthM:            e.Length(),
		StraightLineLength: distance(o.Mission.Start, o.Mission.End),
	}
}

func (r *Report) String() string {
	var b strings.Builder
	b.WriteString(strings.Repeat("=", 50) + "\nOPTIMIZATION RESULTS\n" + strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&b, "Start Speed:     %.2f m/s\n", r.StartSpeed)
	fmt.Fprintf(&b, "End Speed:       %.2f m/s\n", r.EndSpeed)
	fmt.Fprintf(&b, "Total Time:      %.2f s\n", r.TimeS)
	fmt.Fprintf(&b, "Total Energy:    %.2f Wh\n", r.EnergyWh)
	fmt.Fprintf(&b, "Battery Used:    %.1f%%\n", r.BatteryUsedPct)
	fmt.Fprintf(&b, "\nControl Point 1: (%.1f, %.1f, %.1f)\n", r.ControlPoint1.X, r.ControlPoint1.Y, r.ControlPoint1.Z)
	fmt.Fprintf(&b, "Control Point 2: (%.1f, %.1f, %.1f)\n", r.ControlPoint2.X, r.ControlPoint2.Y, r.ControlPoint2.Z)
	b.WriteString("\nConstraint Margins:\n")
	fmt.Fprintf(&b, "  Battery:  %.2f Wh remaining\n", r.BatteryMarginWh)
	fmt.Fprintf(&b, "  Power:    %.2f W margin\n", r.PowerMarginW)
	fmt.Fprintf(&b, "  Time:     %.2f s remaining\n", r.TimeMarginS)
	b.WriteString("\nPath Altitude Profile:\n")
	fmt.Fprintf(&b, "  Max altitude: %.1f m\n", r.Altitude.Max)
	fmt.Fprintf(&b, "  Min altitude: %.1f m\n", r.Altitude.Min)
	fmt.Fprintf(&b, "  Start:        %.1f m\n", r.Altitude.Start)
	fmt.Fprintf(&b, "  End:          %.1f m\n", r.Altitude.End)
	return b.String()
}

// Log writes the report as a single key/value record.
func (r *Report) Log(logger kitlog.Logger) {
	logger.Log("level", "info", "subsys", "opti",
		"vStart(m/s)", fmt.Sprintf("%.2f", r.StartSpeed), "vEnd(m/s)", fmt.Sprintf("%.2f", r.EndSpeed),
		"time(s)", fmt.Sprintf("%.2f", r.TimeS), "energy(Wh)", fmt.Sprintf("%.2f", r.EnergyWh),
		"battery(%)", fmt.Sprintf("%.1f", r.BatteryUsedPct),
		"cp1", fmt.Sprintf("(%.1f,%.1f,%.1f)", r.ControlPoint1.X, r.ControlPoint1.Y, r.ControlPoint1.Z),
		"cp2", fmt.Sprintf("(%.1f,%.1f,%.1f)", r.ControlPoint2.X, r.ControlPoint2.Y, r.ControlPoint2.Z),
		"marginBattery(Wh)", fmt.Sprintf("%.2f", r.BatteryMarginWh), "marginPower(W)", fmt.Sprintf("%.2f", r.PowerMarginW),
		"marginTime(s)", fmt.Sprintf("%.2f", r.TimeMarginS), "peak(W)", fmt.Sprintf("%.1f", r.PeakPowerW),
		"altMax(m)", fmt.Sprintf("%.1f", r.Altitude.Max), "altMin(m)", fmt.Sprintf("%.1f", r.Altitude.Min))
}
