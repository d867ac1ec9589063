package ecopath

import (
	"errors"
	"fmt"
	"math"

	"github.com/HenrH7/ecopath/solver"
	kitlog "github.com/go-kit/kit/log"
)

const (
	// BatteryReserve is the fraction of the battery which may be used.
	BatteryReserve = 0.80
	// MinSpeed and MaxSpeed bound the start and end speeds (m/s).
	MinSpeed = 15.0
	MaxSpeed = 30.0
	// BoxMargin expands the mission bounding box for the free control points (m).
	BoxMargin = 40.0
	// InitialClimb is the altitude gained by the initial control points (m).
	InitialClimb = 20.0
	// DefaultMaxIterations caps the solver iterations.
	DefaultMaxIterations = 500
)

// ErrNonConvergent is wrapped by the error of a failed OptimizationResult.
var ErrNonConvergent = errors.New("optimization did not converge")

// MissionOptimizer searches the speed profile and interior control points
// which minimize the energy of a mission.
type MissionOptimizer struct {
	Drone      DroneConfig
	Mission    MissionSpec
	Wind       WindField
	integrator PathIntegrator
	solver     solver.Solver
	maxIter    int
	logger     kitlog.Logger
}

// Option configures a MissionOptimizer.
type Option func(*MissionOptimizer)

// WithSolver sets the NLP solver (defaults to solver.Default()).
func WithSolver(s solver.Solver) Option {
	return func(o *MissionOptimizer) { o.solver = s }
}

// WithLogger sets the logger used for verbose reports.
func WithLogger(l kitlog.Logger) Option {
	return func(o *MissionOptimizer) { o.logger = l }
}

// WithMaxIterations sets the solver iteration cap.
func WithMaxIterations(n int) Option {
	return func(o *MissionOptimizer) { o.maxIter = n }
}

// NewMissionOptimizer returns a new optimizer, or an error wrapping ErrInvalidConfig.
func NewMissionOptimizer(d DroneConfig, m MissionSpec, w WindField, opts ...Option) (*MissionOptimizer, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("%w: a wind field is required", ErrInvalidConfig)
	}
	o := &MissionOptimizer{
		Drone:      d,
		Mission:    m,
		Wind:       w,
		integrator: NewPathIntegrator(NewPowerModel(d, w), m),
		maxIter:    DefaultMaxIterations,
		logger:     kitlog.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.solver == nil {
		o.solver = solver.Default()
	}
	if o.maxIter < 1 {
		return nil, fmt.Errorf("%w: iteration cap must be positive (got %d)", ErrInvalidConfig, o.maxIter)
	}
	return o, nil
}

// Integrator returns the path integrator of this mission.
func (o *MissionOptimizer) Integrator() PathIntegrator {
	return o.integrator
}

// Evaluate flies the provided design vector.
func (o *MissionOptimizer) Evaluate(x DesignVector) PathEvaluation {
	return o.integrator.Evaluate(x)
}

// Objective returns the energy in Joules of design vector x.
func (o *MissionOptimizer) Objective(x DesignVector) float64 {
	return o.Evaluate(x).EnergyJ
}

// BatteryMargin returns the usable battery energy (Wh) left after flying x. Negative is infeasible.
func (o *MissionOptimizer) BatteryMargin(x DesignVector) float64 {
	return o.batteryMargin(o.Evaluate(x))
}

// PowerMargin returns the motor power margin (W) of the peak power of x. Negative is infeasible.
func (o *MissionOptimizer) PowerMargin(x DesignVector) float64 {
	return o.powerMargin(o.Evaluate(x))
}

// TimeMargin returns the time (s) left when x reaches the end point. Negative is infeasible.
func (o *MissionOptimizer) TimeMargin(x DesignVector) float64 {
	return o.timeMargin(o.Evaluate(x))
}

func (o *MissionOptimizer) batteryMargin(e PathEvaluation) float64 {
	return o.Drone.BatteryCapacityWh*BatteryReserve - e.EnergyWh()
}

func (o *MissionOptimizer) powerMargin(e PathEvaluation) float64 {
	return o.Drone.MotorPowerLimitW - e.PeakPowerW
}

func (o *MissionOptimizer) timeMargin(e PathEvaluation) float64 {
	return o.Mission.MaxTime - e.TimeS
}

// Bounds returns the bounds of each element of the design vector.
func (o *MissionOptimizer) Bounds() []solver.Bound {
	s, e := o.Mission.Start, o.Mission.End
	xb := solver.Bound{Min: math.Min(s.X, e.X) - BoxMargin, Max: math.Max(s.X, e.X) + BoxMargin}
	yb := solver.Bound{Min: math.Min(s.Y, e.Y) - BoxMargin, Max: math.Max(s.Y, e.Y) + BoxMargin}
	zb := solver.Bound{Min: math.Max(0, math.Min(s.Z, e.Z)-BoxMargin), Max: math.Max(s.Z, e.Z) + BoxMargin}
	speed := solver.Bound{Min: MinSpeed, Max: MaxSpeed}
	return []solver.Bound{speed, speed, xb, yb, zb, xb, yb, zb}
}

// InitialGuess places the control points at a third and two thirds of the
// direct path, raised above the highest end point, flown at the minimum speed.
func (o *MissionOptimizer) InitialGuess() DesignVector {
	s, e := o.Mission.Start, o.Mission.End
	z := math.Max(s.Z, e.Z) + InitialClimb
	cp1 := lerp(s, e, 1/3.)
	cp2 := lerp(s, e, 2/3.)
	cp1.Z, cp2.Z = z, z
	return NewDesignVector(MinSpeed, MinSpeed, cp1, cp2)
}

// Problem returns the NLP of this mission.
func (o *MissionOptimizer) Problem() solver.Problem {
	return solver.Problem{
		Objective: func(x []float64) float64 {
			return o.Objective(DesignVectorFromSlice(x))
		},
		Constraints: []solver.Constraint{
			{Kind: solver.Inequality, Name: "battery", Fn: func(x []float64) float64 {
				return o.BatteryMargin(DesignVectorFromSlice(x))
			}},
			{Kind: solver.Inequality, Name: "power", Fn: func(x []float64) float64 {
				return o.PowerMargin(DesignVectorFromSlice(x))
			}},
			{Kind: solver.Inequality, Name: "time", Fn: func(x []float64) float64 {
				return o.TimeMargin(DesignVectorFromSlice(x))
			}},
		},
		Bounds:        o.Bounds(),
		X0:            o.InitialGuess().Slice(),
		MaxIterations: o.maxIter,
	}
}

// OptimizationResult is the outcome of Optimize.
type OptimizationResult struct {
	Success  bool
	Design   DesignVector
	TimeS    float64
	EnergyWh float64
	Path     []Point3
	Message  string  // solver message
	Report   *Report // only on success
}

// Err returns nil on success, and an error wrapping ErrNonConvergent otherwise.
func (r *OptimizationResult) Err() error {
	if r.Success {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNonConvergent, r.Message)
}

// Optimize solves the mission. A mission which cannot be solved returns an
// unsuccessful result carrying the solver message. The error is only
// returned when the solver rejected the problem.
func (o *MissionOptimizer) Optimize() (*OptimizationResult, error) {
	if o.Mission.Degenerate() {
		return o.degenerate(), nil
	}
	sol, err := o.solver.Solve(o.Problem())
	if err != nil {
		return nil, err
	}
	if !sol.Success {
		o.logger.Log("level", "warning", "subsys", "opti", "mission", o.Mission, "status", "failed", "message", sol.Message)
		rslt := &OptimizationResult{Message: sol.Message}
		if len(sol.X) == DesignVectorLen {
			rslt.Design = DesignVectorFromSlice(sol.X)
		}
		return rslt, nil
	}
	x := DesignVectorFromSlice(sol.X)
	eval := o.Evaluate(x)
	rslt := &OptimizationResult{
		Success:  true,
		Design:   x,
		TimeS:    eval.TimeS,
		EnergyWh: eval.EnergyWh(),
		Path:     eval.Path,
		Message:  sol.Message,
	}
	rslt.Report = o.report(x, eval)
	if o.Mission.Verbose {
		rslt.Report.Log(o.logger)
	}
	o.logger.Log("level", "debug", "subsys", "opti", "iterations", sol.Iterations, "evaluations", sol.Evaluations)
	return rslt, nil
}

// degenerate returns the zero length mission.
func (o *MissionOptimizer) degenerate() *OptimizationResult {
	x := NewDesignVector(MinSpeed, MinSpeed, o.Mission.Start, o.Mission.End)
	path := make([]Point3, o.Mission.Samples)
	for i := range path {
		path[i] = o.Mission.Start
	}
	eval := PathEvaluation{Path: path}
	rslt := &OptimizationResult{Success: true, Design: x, Path: path, Message: "start and end points coincide"}
	rslt.Report = o.report(x, eval)
	return rslt
}
