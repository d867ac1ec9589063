package ecopath

import (
	"fmt"
	"runtime"

	kitlog "github.com/go-kit/kit/log"
	"golang.org/x/sync/errgroup"
)

// Route is an ordered list of waypoints, flown segment by segment.
type Route struct {
	Waypoints []Point3
}

// NewRoute returns a new route through the provided waypoints.
func NewRoute(waypoints ...Point3) Route {
	return Route{waypoints}
}

// Segments returns the missions of each leg, using the time limit and sampling of tmpl.
func (r Route) Segments(tmpl MissionSpec) []MissionSpec {
	if len(r.Waypoints) < 2 {
		return nil
	}
	legs := make([]MissionSpec, len(r.Waypoints)-1)
	for i := range legs {
		legs[i] = tmpl
		legs[i].Start, legs[i].End = r.Waypoints[i], r.Waypoints[i+1]
	}
	return legs
}

// SegmentResult is the outcome of one leg of a route.
type SegmentResult struct {
	Index            int
	Mission          MissionSpec
	Result           *OptimizationResult
	StraightEnergyWh float64 // direct path flown at the optimized speeds
	StraightTimeS    float64
}

// RouteResult is the outcome of SolveRoute.
type RouteResult struct {
	Segments         []SegmentResult
	TotalTimeS       float64
	TotalEnergyWh    float64
	StraightEnergyWh float64
	SavedWh          float64
	SavedPct         float64
	Path             []Point3 // every segment path, joints included once
}

// RouteOptions configures SolveRoute.
type RouteOptions struct {
	Workers int // concurrent segments, defaults to the number of CPUs
	Logger  kitlog.Logger
	Options []Option // forwarded to each MissionOptimizer
}

// SolveRoute optimizes every leg of the route. Legs share no state and are
// solved concurrently. A leg which fails fails the route.
func SolveRoute(d DroneConfig, r Route, tmpl MissionSpec, w WindField, ro RouteOptions) (*RouteResult, error) {
	legs := r.Segments(tmpl)
	if len(legs) == 0 {
		return nil, fmt.Errorf("%w: a route needs at least two waypoints", ErrInvalidConfig)
	}
	logger := ro.Logger
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	workers := ro.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	optimizers := make([]*MissionOptimizer, len(legs))
	for i, leg := range legs {
		opts := append([]Option{WithLogger(kitlog.With(logger, "segment", i+1))}, ro.Options...)
		o, err := NewMissionOptimizer(d, leg, w, opts...)
		if err != nil {
			return nil, &SegmentError{i + 1, leg, err}
		}
		optimizers[i] = o
	}

	segments := make([]SegmentResult, len(legs))
	var grp errgroup.Group
	grp.SetLimit(workers)
	for i, o := range optimizers {
		i, o := i, o
		grp.Go(func() error {
			rslt, err := o.Optimize()
			if err != nil {
				return &SegmentError{i + 1, o.Mission, err}
			}
			if !rslt.Success {
				return &SegmentError{i + 1, o.Mission, rslt.Err()}
			}
			straight := o.Evaluate(o.Integrator().StraightLine(rslt.Design.StartSpeed(), rslt.Design.EndSpeed()))
			segments[i] = SegmentResult{Index: i, Mission: o.Mission, Result: rslt, StraightEnergyWh: straight.EnergyWh(), StraightTimeS: straight.TimeS}
			logger.Log("level", "info", "subsys", "route", "segment", i+1, "mission", o.Mission, "energy(Wh)", rslt.EnergyWh, "straight(Wh)", straight.EnergyWh(), "time(s)", rslt.TimeS)
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	rr := &RouteResult{Segments: segments}
	for i, seg := range segments {
		rr.TotalTimeS += seg.Result.TimeS
		rr.TotalEnergyWh += seg.Result.EnergyWh
		rr.StraightEnergyWh += seg.StraightEnergyWh
		path := seg.Result.Path
		if i > 0 && len(path) > 0 {
			path = path[1:]
		}
		rr.Path = append(rr.Path, path...)
	}
	rr.SavedWh = rr.StraightEnergyWh - rr.TotalEnergyWh
	if rr.StraightEnergyWh > 0 {
		rr.SavedPct = rr.SavedWh / rr.StraightEnergyWh * 100
	}
	return rr, nil
}

// SegmentError is returned by SolveRoute when a leg cannot be solved.
type SegmentError struct {
	Index   int // starting at 1
	Mission MissionSpec
	Err     error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment #%d %s: %s", e.Index, e.Mission, e.Err)
}

// Unwrap returns the underlying error.
func (e *SegmentError) Unwrap() error {
	return e.Err
}
