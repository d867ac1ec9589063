package ecopath

import (
	"fmt"
	"strings"

	"github.com/HenrH7/ecopath/solver"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// SweepConfig is the wind grid of a scenario.
type SweepConfig struct {
	Speeds     []float64 // m/s
	Directions []float64 // degrees
	Wind       string    // "powerlaw" or "uniform"
	Workers    int
}

// Cases returns the cases of this sweep.
func (s SweepConfig) Cases() []SweepCase {
	return GridCases(s.Speeds, s.Directions)
}

// Scenario is a drone mission read from a TOML file.
type Scenario struct {
	Name          string
	Drone         DroneConfig
	Mission       MissionSpec // start and end are the first and last waypoints
	Wind          WindField
	Route         Route
	Solver        solver.Options
	MaxIterations int
	Export        ExportConfig
	Sweep         SweepConfig
	RefAltitude   float64 // of power law winds
}

// Options returns the optimizer options of this scenario.
func (s Scenario) Options() []Option {
	return []Option{WithSolver(solver.NewAugmentedLagrangian(s.Solver)), WithMaxIterations(s.MaxIterations)}
}

// WindFactory returns the factory of the sweep winds.
func (s Scenario) WindFactory() WindFactory {
	if s.Sweep.Wind == "uniform" {
		return UniformFactory()
	}
	return PowerLawFactory(s.RefAltitude)
}

func (s Scenario) String() string {
	return fmt.Sprintf("%s: %s (%d waypoints) wind=%s", s.Name, s.Mission, len(s.Route.Waypoints), s.Wind)
}

func setDefaults(v *viper.Viper) {
	d := DefaultDroneConfig()
	v.SetDefault("drone.air_density", d.AirDensity)
	v.SetDefault("drone.wing_area", d.WingArea)
	v.SetDefault("drone.drag_coeff", d.DragCoeff)
	v.SetDefault("drone.mass", d.Mass)
	v.SetDefault("drone.battery_capacity", d.BatteryCapacityWh)
	v.SetDefault("drone.motor_power_limit", d.MotorPowerLimitW)
	v.SetDefault("drone.motor_efficiency", d.MotorEfficiency)
	v.SetDefault("drone.battery_efficiency", d.BatteryEfficiency)
	v.SetDefault("drone.figure_of_merit", d.FigureOfMerit)
	v.SetDefault("drone.prop_diameter", d.PropDiameter)
	v.SetDefault("drone.rotor_count", d.RotorCount)

	v.SetDefault("mission.max_time", DefaultMaxTime)
	v.SetDefault("mission.samples", DefaultSamples)
	v.SetDefault("mission.verbose", false)

	pl := DefaultPowerLawWind()
	v.SetDefault("wind.type", "calm")
	v.SetDefault("wind.speed", pl.RefSpeed)
	v.SetDefault("wind.direction", pl.DirectionDeg)
	v.SetDefault("wind.ref_altitude", pl.RefAltitude)

	o := solver.DefaultOptions()
	v.SetDefault("solver.method", o.Method.String())
	v.SetDefault("solver.feasibility_tol", o.FeasibilityTol)
	v.SetDefault("solver.function_tol", o.FunctionTol)
	v.SetDefault("solver.outer_iterations", o.OuterIterations)
	v.SetDefault("solver.initial_penalty", o.InitialPenalty)
	v.SetDefault("solver.max_iterations", DefaultMaxIterations)

	v.SetDefault("export.enabled", false)
	v.SetDefault("export.dir", ".")
	v.SetDefault("export.timestamp", false)

	v.SetDefault("sweep.speeds", []float64{0, 5, 10, 15, 20})
	v.SetDefault("sweep.directions", []float64{0})
	v.SetDefault("sweep.wind", "powerlaw")
	v.SetDefault("sweep.workers", 0)
}

// LoadScenario reads <dir>/<name>.toml. Errors on the scenario content wrap ErrInvalidConfig.
func LoadScenario(dir, name string) (*Scenario, error) {
	name = strings.TrimSuffix(name, ".toml")
	v := viper.New()
	v.SetConfigType("toml")
	v.SetConfigName(name)
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%s/%s.toml: %s", dir, name, err)
	}
	return scenarioFrom(v, name)
}

func scenarioFrom(v *viper.Viper, name string) (*Scenario, error) {
	setDefaults(v)
	s := &Scenario{Name: name}
	s.Drone = DroneConfig{
		AirDensity:        v.GetFloat64("drone.air_density"),
		WingArea:          v.GetFloat64("drone.wing_area"),
		DragCoeff:         v.GetFloat64("drone.drag_coeff"),
		Mass:              v.GetFloat64("drone.mass"),
		BatteryCapacityWh: v.GetFloat64("drone.battery_capacity"),
		MotorPowerLimitW:  v.GetFloat64("drone.motor_power_limit"),
		MotorEfficiency:   v.GetFloat64("drone.motor_efficiency"),
		BatteryEfficiency: v.GetFloat64("drone.battery_efficiency"),
		FigureOfMerit:     v.GetFloat64("drone.figure_of_merit"),
		PropDiameter:      v.GetFloat64("drone.prop_diameter"),
		RotorCount:        v.GetInt("drone.rotor_count"),
	}
	if err := s.Drone.Validate(); err != nil {
		return nil, err
	}

	// Waypoints
	var waypoints []Point3
	if v.IsSet("mission.waypoints") {
		raw, err := cast.ToSliceE(v.Get("mission.waypoints"))
		if err != nil {
			return nil, fmt.Errorf("%w: mission.waypoints: %s", ErrInvalidConfig, err)
		}
		for i, r := range raw {
			p, err := readPoint(r)
			if err != nil {
				return nil, fmt.Errorf("%w: mission.waypoints[%d]: %s", ErrInvalidConfig, i, err)
			}
			waypoints = append(waypoints, p)
		}
	} else {
		start, err := readPoint(v.Get("mission.start"))
		if err != nil {
			return nil, fmt.Errorf("%w: mission.start: %s", ErrInvalidConfig, err)
		}
		end, err := readPoint(v.Get("mission.end"))
		if err != nil {
			return nil, fmt.Errorf("%w: mission.end: %s", ErrInvalidConfig, err)
		}
		waypoints = []Point3{start, end}
	}
	if len(waypoints) < 2 {
		return nil, fmt.Errorf("%w: at least two waypoints are required (got %d)", ErrInvalidConfig, len(waypoints))
	}
	s.Route = NewRoute(waypoints...)
	s.Mission = NewMissionSpec(waypoints[0], waypoints[len(waypoints)-1])
	s.Mission.MaxTime = v.GetFloat64("mission.max_time")
	s.Mission.Samples = v.GetInt("mission.samples")
	s.Mission.Verbose = v.GetBool("mission.verbose")
	if err := s.Mission.Validate(); err != nil {
		return nil, err
	}

	// Wind
	s.RefAltitude = v.GetFloat64("wind.ref_altitude")
	if s.RefAltitude <= 0 {
		return nil, fmt.Errorf("%w: wind.ref_altitude must be positive (got %f)", ErrInvalidConfig, s.RefAltitude)
	}
	speed, dir := v.GetFloat64("wind.speed"), v.GetFloat64("wind.direction")
	switch wt := strings.ToLower(v.GetString("wind.type")); wt {
	case "calm", "none":
		s.Wind = CalmWind{}
	case "uniform":
		s.Wind = NewWindFromSpeedAndDir(speed, dir)
	case "powerlaw", "power_law":
		s.Wind = NewPowerLawWind(s.RefAltitude, dir, speed)
	default:
		return nil, fmt.Errorf("%w: unknown wind type `%s`", ErrInvalidConfig, wt)
	}

	// Solver
	method, err := solver.MethodFromString(v.GetString("solver.method"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}
	s.Solver = solver.Options{
		Method:          method,
		FeasibilityTol:  v.GetFloat64("solver.feasibility_tol"),
		FunctionTol:     v.GetFloat64("solver.function_tol"),
		OuterIterations: v.GetInt("solver.outer_iterations"),
		InitialPenalty:  v.GetFloat64("solver.initial_penalty"),
	}
	if s.Solver.FeasibilityTol <= 0 || s.Solver.FunctionTol <= 0 || s.Solver.OuterIterations < 1 || s.Solver.InitialPenalty <= 0 {
		return nil, fmt.Errorf("%w: invalid solver options %+v", ErrInvalidConfig, s.Solver)
	}
	s.MaxIterations = v.GetInt("solver.max_iterations")
	if s.MaxIterations < 1 {
		return nil, fmt.Errorf("%w: solver.max_iterations must be positive (got %d)", ErrInvalidConfig, s.MaxIterations)
	}

	s.Export = ExportConfig{
		Enabled:   v.GetBool("export.enabled"),
		Dir:       v.GetString("export.dir"),
		Prefix:    v.GetString("export.prefix"),
		Timestamp: v.GetBool("export.timestamp"),
	}
	if s.Export.Prefix == "" {
		s.Export.Prefix = name
	}

	// Sweep
	if s.Sweep.Speeds, err = readFloats(v.Get("sweep.speeds")); err != nil {
		return nil, fmt.Errorf("%w: sweep.speeds: %s", ErrInvalidConfig, err)
	}
	if s.Sweep.Directions, err = readFloats(v.Get("sweep.directions")); err != nil {
		return nil, fmt.Errorf("%w: sweep.directions: %s", ErrInvalidConfig, err)
	}
	s.Sweep.Wind = strings.ToLower(v.GetString("sweep.wind"))
	if s.Sweep.Wind != "powerlaw" && s.Sweep.Wind != "uniform" {
		return nil, fmt.Errorf("%w: unknown sweep wind `%s`", ErrInvalidConfig, s.Sweep.Wind)
	}
	s.Sweep.Workers = v.GetInt("sweep.workers")
	return s, nil
}

func readFloats(raw interface{}) ([]float64, error) {
	if vals, ok := raw.([]float64); ok {
		return vals, nil
	}
	items, err := cast.ToSliceE(raw)
	if err != nil {
		return nil, err
	}
	vals := make([]float64, len(items))
	for i, item := range items {
		if vals[i], err = cast.ToFloat64E(item); err != nil {
			return nil, err
		}
	}
	return vals, nil
}

func readPoint(raw interface{}) (Point3, error) {
	if raw == nil {
		return Point3{}, fmt.Errorf("missing point")
	}
	vals, err := readFloats(raw)
	if err != nil {
		return Point3{}, err
	}
	if len(vals) != 3 {
		return Point3{}, fmt.Errorf("expected [x, y, z], got %d values", len(vals))
	}
	return NewPoint3(vals[0], vals[1], vals[2]), nil
}
